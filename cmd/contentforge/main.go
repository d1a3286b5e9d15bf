package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/contentforge/internal/ai"
	"github.com/TobiSchelling/contentforge/internal/config"
	"github.com/TobiSchelling/contentforge/internal/database"
	"github.com/TobiSchelling/contentforge/internal/ingest"
	"github.com/TobiSchelling/contentforge/internal/models"
	"github.com/TobiSchelling/contentforge/internal/pipeline"
	"github.com/TobiSchelling/contentforge/internal/sanitize"
	"github.com/TobiSchelling/contentforge/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "contentforge",
	Short:   "Turn raw ideas into platform-ready social media content",
	Long:    "contentforge curates your rough ideas into topics, develops them into full drafts, and optimizes them into LinkedIn posts and Twitter threads.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// API keys can live in a local .env file.
		_ = godotenv.Load()

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(ideasCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("contentforge", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/contentforge/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure AI providers and feeds, then run 'contentforge sample' to try it out.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and provider status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		settings, err := db.GetSettings()
		if err != nil {
			return err
		}

		ideas, _ := db.ListIdeas(false)
		profiles, _ := db.ListProfiles()
		gens, _ := db.ListGenerations(1000)

		fmt.Println("AI services:")
		fmt.Printf("  Primary: %s\n", settings.AIServicePrimary)
		if settings.AIServiceFallback != "" {
			fmt.Printf("  Fallback: %s\n", settings.AIServiceFallback)
		} else {
			fmt.Println("  Fallback: (none)")
		}

		fmt.Println("\nContent:")
		fmt.Printf("  Unused ideas: %d\n", len(ideas))
		fmt.Printf("  Profiles: %d\n", len(profiles))
		fmt.Printf("  Generation runs: %d\n", len(gens))

		factory := newFactory()
		canMinute, wait := factory.GeminiLimiter().CanMakeRequest()
		fmt.Println("\nGemini rate limiter:")
		if canMinute {
			fmt.Println("  Ready")
		} else {
			fmt.Printf("  Throttled, next request in %s\n", wait.Round(100*time.Millisecond))
		}
		return nil
	},
}

// --- ideas commands ---

var ideasCmd = &cobra.Command{
	Use:   "ideas",
	Short: "Manage the idea queue",
}

var ideaCategory string

var ideasAddCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Add an idea to the queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		text, err := sanitize.UserInput(args[0], "idea")
		if err != nil {
			return err
		}
		if text == "" {
			return fmt.Errorf("idea text is empty")
		}

		idea := models.NewIdea(text, ideaCategory, "manual")
		if err := db.InsertIdea(idea); err != nil {
			return err
		}
		fmt.Printf("Added idea %s (%s)\n", idea.ID, idea.Category)
		return nil
	},
}

var listAll bool

var ideasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ideas in the queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ideas, err := db.ListIdeas(listAll)
		if err != nil {
			return err
		}

		if len(ideas) == 0 {
			fmt.Println("No ideas in the queue. Add one with: contentforge ideas add \"...\"")
			return nil
		}

		for _, idea := range ideas {
			marker := " "
			if idea.Used {
				marker = "x"
			}
			text := idea.Text
			if len(text) > 70 {
				text = text[:70] + "..."
			}
			fmt.Printf("  [%s] %s  (%s, %s)\n      %s\n", marker, idea.ID, idea.Category, idea.CreatedAt.Format("2006-01-02"), text)
		}
		return nil
	},
}

var ideasImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import ideas from configured feeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.Ingest.Feeds) == 0 {
			return fmt.Errorf("no feeds configured; add some under 'ingest.feeds' in the config")
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		importer := ingest.New(db, cfg.Ingest)
		result := importer.ImportAll()

		fmt.Println("Import complete:")
		fmt.Printf("  Imported: %d\n", result.Imported)
		fmt.Printf("  Skipped: %d\n", result.Skipped)
		fmt.Printf("  Failed: %d\n", result.Failed)
		return nil
	},
}

var ideasRefineCmd = &cobra.Command{
	Use:   "refine [id]",
	Short: "Use the AI service to sharpen a rough idea",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		idea, err := db.GetIdea(args[0])
		if err != nil {
			return err
		}

		orch := pipeline.New(db, newFactory())
		refined, err := orch.RefineIdea(context.Background(), idea.Text)
		if err != nil {
			return err
		}

		if err := db.SetIdeaRefinement(idea.ID, refined); err != nil {
			return err
		}
		fmt.Printf("Refined %s:\n\n%s\n", idea.ID, refined)
		return nil
	},
}

func init() {
	ideasAddCmd.Flags().StringVar(&ideaCategory, "category", "General", "Idea category")
	ideasListCmd.Flags().BoolVar(&listAll, "all", false, "Include used ideas")

	ideasCmd.AddCommand(ideasAddCmd)
	ideasCmd.AddCommand(ideasListCmd)
	ideasCmd.AddCommand(ideasImportCmd)
	ideasCmd.AddCommand(ideasRefineCmd)
}

// --- profile commands ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage brand profiles",
}

var (
	profileAudience string
	profileTone     string
	profileTopics   []string
	profilePriority string
	profileBio      string
)

var profileAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a brand profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		name, err := sanitize.UserInput(args[0], "profile_name")
		if err != nil {
			return err
		}
		bio, err := sanitize.UserInput(profileBio, "profile_description")
		if err != nil {
			return err
		}

		priority := models.PriorityBoth
		switch strings.ToLower(profilePriority) {
		case "linkedin":
			priority = models.PriorityLinkedIn
		case "twitter":
			priority = models.PriorityTwitter
		case "", "both":
		default:
			return fmt.Errorf("unknown platform priority %q (linkedin, twitter, or both)", profilePriority)
		}

		profile := models.BrandProfile{
			ID:               strings.ToLower(strings.ReplaceAll(name, " ", "-")),
			Name:             name,
			Type:             "personal",
			TargetAudience:   profileAudience,
			Tone:             profileTone,
			KeyTopics:        profileTopics,
			PlatformPriority: priority,
			Bio:              bio,
		}
		if err := db.InsertProfile(profile); err != nil {
			return err
		}

		// First profile becomes active automatically.
		profiles, _ := db.ListProfiles()
		if len(profiles) == 1 {
			if err := db.SetActiveProfile(profile.ID); err != nil {
				return err
			}
			fmt.Printf("Added profile %s (now active)\n", profile.ID)
			return nil
		}

		fmt.Printf("Added profile %s. Activate it with: contentforge profile use %s\n", profile.ID, profile.ID)
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List brand profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		profiles, err := db.ListProfiles()
		if err != nil {
			return err
		}
		if len(profiles) == 0 {
			fmt.Println("No profiles yet. Add one with: contentforge profile add")
			return nil
		}

		for _, p := range profiles {
			marker := " "
			if p.IsActive {
				marker = "*"
			}
			fmt.Printf("  %s %s — %s (%s)\n", marker, p.ID, p.Name, p.PlatformPriority)
		}
		return nil
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use [id]",
	Short: "Set the active profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.SetActiveProfile(args[0]); err != nil {
			return err
		}
		fmt.Printf("Active profile: %s\n", args[0])
		return nil
	},
}

func init() {
	profileAddCmd.Flags().StringVar(&profileAudience, "audience", "", "Target audience")
	profileAddCmd.Flags().StringVar(&profileTone, "tone", "", "Tone of voice")
	profileAddCmd.Flags().StringSliceVar(&profileTopics, "topics", nil, "Key themes (comma-separated)")
	profileAddCmd.Flags().StringVar(&profilePriority, "priority", "both", "Platform priority: linkedin, twitter, or both")
	profileAddCmd.Flags().StringVar(&profileBio, "bio", "", "Short bio used in prompts")

	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileUseCmd)
}

// --- run command ---

var (
	runProfileID   string
	runIdeaIDs     []string
	runNumIdeas    int
	runNumTopics   int
	runVersions    []string
	runPlatforms   []string
	runWords       int
	runProgressive bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the generation pipeline: curate -> develop -> optimize",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		opts, err := buildRunOptions()
		if err != nil {
			return err
		}

		orch := pipeline.New(db, newFactory())
		ctx := context.Background()

		if runProgressive {
			return runProgressively(ctx, orch, opts)
		}

		opts.Progress = func(percent int, message string) {
			fmt.Printf("[%3d%%] %s\n", percent, message)
		}

		gen, err := orch.RunFull(ctx, opts)
		if err != nil {
			return err
		}

		printRunSummary(gen)
		return nil
	},
}

func buildRunOptions() (pipeline.Options, error) {
	opts := pipeline.Options{
		ProfileID:       runProfileID,
		IdeaIDs:         runIdeaIDs,
		NumIdeas:        runNumIdeas,
		NumTopics:       runNumTopics,
		Platforms:       runPlatforms,
		TargetWordCount: runWords,
	}

	for _, v := range runVersions {
		version, err := models.ParseVersion(v)
		if err != nil {
			return opts, err
		}
		opts.Versions = append(opts.Versions, version)
	}
	return opts, nil
}

func runProgressively(ctx context.Context, orch *pipeline.Orchestrator, opts pipeline.Options) error {
	for event := range orch.RunProgressive(ctx, opts) {
		switch event.Type {
		case pipeline.EventTopics:
			fmt.Printf("Curated %d topics:\n", len(event.Topics))
			for i, topic := range event.Topics {
				fmt.Printf("  %d. %s\n", i+1, topic.CoreInsight)
			}
		case pipeline.EventContent:
			fmt.Printf("\n--- %s (%s, %d words) ---\n", event.Content.Title, event.Content.Version, event.Content.WordCount)
			for _, post := range event.Posts {
				fmt.Printf("  %s: variation %d, %d chars\n", post.Platform, post.VariationNumber, post.CharacterCount)
			}
		case pipeline.EventComplete:
			fmt.Println()
			printRunSummary(event.Generation)
		case pipeline.EventError:
			return event.Err
		}
	}
	return nil
}

func printRunSummary(gen *models.GeneratedContent) {
	fmt.Printf("Run %s complete:\n", gen.ID)
	fmt.Printf("  Topics: %d\n", len(gen.TopicBriefs))
	fmt.Printf("  Content pieces: %d\n", len(gen.DevelopedContent))
	fmt.Printf("  Platform posts: %d\n", len(gen.PlatformPosts))
	fmt.Printf("  Provider: %s\n", gen.AIProvider)
	fmt.Printf("  Stage timings: %.1fs / %.1fs / %.1fs\n", gen.Stage1Seconds, gen.Stage2Seconds, gen.Stage3Seconds)
	fmt.Println("\nReview it with: contentforge serve")
}

func init() {
	runCmd.Flags().StringVar(&runProfileID, "profile", "", "Profile to generate for (default: active profile)")
	runCmd.Flags().StringSliceVar(&runIdeaIDs, "ideas", nil, "Specific idea ids to use")
	runCmd.Flags().IntVar(&runNumIdeas, "num-ideas", 0, "How many unused ideas to pull (default 10)")
	runCmd.Flags().IntVar(&runNumTopics, "num-topics", 0, "How many topics to curate (default 5)")
	runCmd.Flags().StringSliceVar(&runVersions, "versions", nil, "Content versions: bridge, aspirational, current (default bridge)")
	runCmd.Flags().StringSliceVar(&runPlatforms, "platforms", nil, "Platforms: linkedin, twitter (default: profile priority)")
	runCmd.Flags().IntVar(&runWords, "words", 0, "Target word count per piece (default 500)")
	runCmd.Flags().BoolVar(&runProgressive, "progressive", false, "Stream results as each piece finishes")
}

// --- estimate command ---

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate how long a run would take",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		opts, err := buildRunOptions()
		if err != nil {
			return err
		}

		orch := pipeline.New(db, newFactory())
		est := orch.EstimateRuntime(opts)

		fmt.Printf("Estimated runtime: %s (confidence: %s", est.Duration.Round(time.Second), est.Confidence)
		if est.SampleSize > 0 {
			fmt.Printf(", based on %d previous runs", est.SampleSize)
		}
		fmt.Println(")")
		return nil
	},
}

func init() {
	estimateCmd.Flags().IntVar(&runNumTopics, "num-topics", 0, "How many topics would be curated (default 5)")
	estimateCmd.Flags().StringSliceVar(&runVersions, "versions", nil, "Content versions that would be developed")
}

// --- sample command ---

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Seed sample ideas and a profile for trying the tool",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		sampleIdeas := []struct{ text, category string }{
			{"Shipped a migration with zero downtime by running old and new schemas side by side for a week", "Technical"},
			{"Most career advice ignores that growth is lumpy: nothing for months, then everything at once", "Personal"},
			{"Small teams keep beating big ones because coordination cost grows faster than headcount value", "Industry"},
			{"Code review works better as a teaching channel than as a gatekeeping step", "Technical"},
			{"The habit that changed my writing: draft fast in the morning, edit slow in the evening", "Personal"},
		}
		for _, s := range sampleIdeas {
			if err := db.InsertIdea(models.NewIdea(s.text, s.category, "sample")); err != nil {
				return err
			}
		}

		profile := models.BrandProfile{
			ID:               "sample-engineer",
			Name:             "Sample Engineer",
			Type:             "personal",
			TargetAudience:   "software engineers moving into technical leadership",
			Tone:             "direct and practical with occasional humor",
			KeyTopics:        []string{"engineering leadership", "developer productivity", "career growth"},
			PlatformPriority: models.PriorityBoth,
			Bio:              "Staff engineer writing about pragmatic software delivery and growing engineering teams.",
		}
		if err := db.InsertProfile(profile); err != nil {
			return err
		}
		if err := db.SetActiveProfile(profile.ID); err != nil {
			return err
		}

		fmt.Println("Seeded 5 sample ideas and an active sample profile.")
		fmt.Println("Try: contentforge run --progressive")
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local review server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- helpers ---

func newFactory() *ai.Factory {
	return ai.NewFactory(ai.Options{
		OllamaHost:   cfg.AI.Ollama.Host,
		OllamaModel:  cfg.AI.Ollama.Model,
		GeminiAPIKey: cfg.GeminiAPIKey(),
		GeminiModel:  cfg.AI.Gemini.Model,
	})
}

// openDB opens the database and makes sure the settings singleton exists,
// seeded from the config file on first run.
func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "contentforge.db")
	db, err := database.Open(dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.GetSettings(); err != nil {
		settings := database.DefaultSettings()
		settings.AIServicePrimary = cfg.AI.Primary
		settings.AIServiceFallback = cfg.AI.Fallback
		if err := db.SaveSettings(settings); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}
