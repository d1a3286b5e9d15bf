package database

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/TobiSchelling/contentforge/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSettingsRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.GetSettings(); err == nil {
		t.Error("expected error before settings are initialized")
	}

	s := DefaultSettings()
	s.ActiveProfileID = "p1"
	if err := db.SaveSettings(s); err != nil {
		t.Fatalf("saving settings: %v", err)
	}

	got, err := db.GetSettings()
	if err != nil {
		t.Fatalf("getting settings: %v", err)
	}
	if got.AIServicePrimary != "mock" || got.EmojiUsage != models.EmojiMinimal {
		t.Errorf("unexpected settings: %+v", got)
	}
	if got.MaxHashtags != 3 {
		t.Errorf("unexpected max hashtags: %d", got.MaxHashtags)
	}
	if len(got.IdeaCategories) != 4 {
		t.Errorf("unexpected categories: %v", got.IdeaCategories)
	}
	if got.ActiveProfileID != "p1" {
		t.Errorf("unexpected active profile: %q", got.ActiveProfileID)
	}

	// A second save must update the singleton in place.
	s.AIServicePrimary = "ollama"
	s.AIServiceFallback = "gemini"
	if err := db.SaveSettings(s); err != nil {
		t.Fatalf("updating settings: %v", err)
	}
	got, err = db.GetSettings()
	if err != nil {
		t.Fatalf("getting updated settings: %v", err)
	}
	if got.AIServicePrimary != "ollama" || got.AIServiceFallback != "gemini" {
		t.Errorf("settings update not applied: %+v", got)
	}
}

func TestIdeasLifecycle(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ideas := []models.Idea{
		{ID: "idea-old", Text: "oldest note", Category: "General", Source: "manual", CreatedAt: base},
		{ID: "idea-mid", Text: "middle note", Category: "Technical", Source: "manual", CreatedAt: base.Add(time.Hour)},
		{ID: "idea-new", Text: "newest note", Category: "Personal", Source: "web", CreatedAt: base.Add(2 * time.Hour)},
	}
	for _, idea := range ideas {
		if err := db.InsertIdea(idea); err != nil {
			t.Fatalf("inserting %s: %v", idea.ID, err)
		}
	}

	// Unused ideas come back oldest first so queued ideas are not starved.
	unused, err := db.GetUnusedIdeas(2)
	if err != nil {
		t.Fatalf("getting unused ideas: %v", err)
	}
	if len(unused) != 2 || unused[0].ID != "idea-old" || unused[1].ID != "idea-mid" {
		t.Errorf("unexpected unused ideas: %+v", unused)
	}

	if err := db.MarkIdeasUsed([]string{"idea-old", "idea-mid"}); err != nil {
		t.Fatalf("marking ideas used: %v", err)
	}

	unused, err = db.GetUnusedIdeas(10)
	if err != nil {
		t.Fatalf("getting unused ideas after marking: %v", err)
	}
	if len(unused) != 1 || unused[0].ID != "idea-new" {
		t.Errorf("used ideas should be excluded, got %+v", unused)
	}

	used, err := db.GetIdea("idea-old")
	if err != nil {
		t.Fatalf("getting used idea: %v", err)
	}
	if !used.Used || used.UsedDate == nil {
		t.Errorf("used flag and date should be set, got %+v", used)
	}

	// Listing is newest first; the flag filters used ideas.
	all, err := db.ListIdeas(true)
	if err != nil {
		t.Fatalf("listing all ideas: %v", err)
	}
	if len(all) != 3 || all[0].ID != "idea-new" {
		t.Errorf("unexpected full listing: %+v", all)
	}
	fresh, err := db.ListIdeas(false)
	if err != nil {
		t.Fatalf("listing fresh ideas: %v", err)
	}
	if len(fresh) != 1 {
		t.Errorf("expected 1 fresh idea, got %d", len(fresh))
	}

	if err := db.SetIdeaRefinement("idea-new", "A sharper version of the note."); err != nil {
		t.Fatalf("setting refinement: %v", err)
	}
	refined, err := db.GetIdea("idea-new")
	if err != nil {
		t.Fatalf("getting refined idea: %v", err)
	}
	if refined.RefinedText != "A sharper version of the note." {
		t.Errorf("refinement not stored: %q", refined.RefinedText)
	}

	if err := db.DeleteIdea("idea-new"); err != nil {
		t.Fatalf("deleting idea: %v", err)
	}
	if _, err := db.GetIdea("idea-new"); err == nil {
		t.Error("expected error for deleted idea")
	}
	if _, err := db.GetIdea("never-existed"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestProfiles(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveSettings(DefaultSettings()); err != nil {
		t.Fatalf("saving settings: %v", err)
	}

	alpha := models.BrandProfile{
		ID:               "alpha",
		Name:             "Alpha",
		Type:             "personal",
		TargetAudience:   "engineers",
		Tone:             "direct",
		KeyTopics:        []string{"systems", "remote work"},
		PlatformPriority: models.PriorityBoth,
		IsActive:         true,
	}
	beta := models.BrandProfile{ID: "beta", Name: "Beta", Type: "company", PlatformPriority: models.PriorityLinkedIn}

	if err := db.InsertProfile(alpha); err != nil {
		t.Fatalf("inserting alpha: %v", err)
	}
	if err := db.InsertProfile(beta); err != nil {
		t.Fatalf("inserting beta: %v", err)
	}

	got, err := db.GetProfile("alpha")
	if err != nil {
		t.Fatalf("getting profile: %v", err)
	}
	if got.Name != "Alpha" || len(got.KeyTopics) != 2 || got.PlatformPriority != models.PriorityBoth {
		t.Errorf("profile fields lost in round trip: %+v", got)
	}

	profiles, err := db.ListProfiles()
	if err != nil {
		t.Fatalf("listing profiles: %v", err)
	}
	if len(profiles) != 2 || profiles[0].ID != "alpha" {
		t.Errorf("active profile should list first: %+v", profiles)
	}

	if err := db.SetActiveProfile("beta"); err != nil {
		t.Fatalf("activating beta: %v", err)
	}
	alphaAfter, _ := db.GetProfile("alpha")
	betaAfter, _ := db.GetProfile("beta")
	if alphaAfter.IsActive || !betaAfter.IsActive {
		t.Error("activation should be exclusive")
	}
	settings, err := db.GetSettings()
	if err != nil {
		t.Fatalf("getting settings: %v", err)
	}
	if settings.ActiveProfileID != "beta" {
		t.Errorf("settings should track the active profile, got %q", settings.ActiveProfileID)
	}

	if err := db.SetActiveProfile("ghost"); err == nil {
		t.Error("activating a missing profile should fail")
	}

	alpha.Tone = "warm"
	alpha.IsActive = false
	if err := db.UpdateProfile(alpha); err != nil {
		t.Fatalf("updating profile: %v", err)
	}
	updated, _ := db.GetProfile("alpha")
	if updated.Tone != "warm" {
		t.Errorf("profile update not applied: %+v", updated)
	}
}

func TestGenerations(t *testing.T) {
	db := openTestDB(t)

	gen := models.NewGeneratedContent("p1", []string{"idea-1", "idea-2"})
	gen.GeneratedAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	gen.TopicBriefs = []models.TopicBrief{{ID: "topic-1", CoreInsight: "Meetings crowd out deep work."}}
	content := models.DevelopedContent{ID: "content-1", TopicID: "topic-1", Version: models.VersionBridge, Title: "Async"}
	content.SetBody("Some body text.")
	gen.DevelopedContent = []models.DevelopedContent{content}
	gen.PlatformPosts = []models.PlatformPost{{
		ID: "linkedin-1", ContentID: "content-1", Platform: "linkedin",
		Text: "Post text", Hashtags: []string{"#AsyncFirst"}, VariationNumber: 1,
	}}
	gen.Stage1Seconds = 1.5
	gen.AIProvider = "mock"

	if err := db.CreateGeneration(gen); err != nil {
		t.Fatalf("creating generation: %v", err)
	}

	got, err := db.GetGeneration(gen.ID)
	if err != nil {
		t.Fatalf("getting generation: %v", err)
	}
	if got.ProfileID != "p1" || len(got.SourceIdeaIDs) != 2 {
		t.Errorf("aggregate fields lost: %+v", got)
	}
	if len(got.TopicBriefs) != 1 || got.TopicBriefs[0].CoreInsight != "Meetings crowd out deep work." {
		t.Errorf("topic briefs lost in JSON round trip: %+v", got.TopicBriefs)
	}
	if len(got.DevelopedContent) != 1 || got.DevelopedContent[0].WordCount == 0 {
		t.Errorf("developed content lost in JSON round trip: %+v", got.DevelopedContent)
	}
	if len(got.PlatformPosts) != 1 || got.PlatformPosts[0].Hashtags[0] != "#AsyncFirst" {
		t.Errorf("platform posts lost in JSON round trip: %+v", got.PlatformPosts)
	}
	if got.Status != models.StatusDraft || got.Stage1Seconds != 1.5 || got.AIProvider != "mock" {
		t.Errorf("run metadata lost: %+v", got)
	}

	later := models.NewGeneratedContent("p1", nil)
	later.GeneratedAt = gen.GeneratedAt.Add(time.Hour)
	if err := db.CreateGeneration(later); err != nil {
		t.Fatalf("creating second generation: %v", err)
	}
	gens, err := db.ListGenerations(10)
	if err != nil {
		t.Fatalf("listing generations: %v", err)
	}
	if len(gens) != 2 || gens[0].ID != later.ID {
		t.Errorf("listing should be newest first: %+v", gens)
	}

	if err := db.SetGenerationStatus(gen.ID, models.StatusApproved); err != nil {
		t.Fatalf("setting status: %v", err)
	}
	approved, _ := db.GetGeneration(gen.ID)
	if approved.Status != models.StatusApproved {
		t.Errorf("status not updated: %q", approved.Status)
	}
	if err := db.SetGenerationStatus("missing", models.StatusApproved); err == nil {
		t.Error("setting status on a missing run should fail")
	}

	gen.Status = models.StatusPublished
	if err := db.UpdateGeneration(gen); err != nil {
		t.Fatalf("updating generation: %v", err)
	}
	missing := models.NewGeneratedContent("p1", nil)
	if err := db.UpdateGeneration(missing); err == nil {
		t.Error("updating a missing run should fail")
	}
}
