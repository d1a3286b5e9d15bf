// Package pipeline orchestrates the 3-stage generation pipeline: idea
// curation, content development, and platform optimization. It owns the run
// lifecycle (idea selection, persistence, marking ideas used) while the stage
// packages own the AI calls and parsing.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/TobiSchelling/contentforge/internal/ai"
	"github.com/TobiSchelling/contentforge/internal/curate"
	"github.com/TobiSchelling/contentforge/internal/develop"
	"github.com/TobiSchelling/contentforge/internal/models"
	"github.com/TobiSchelling/contentforge/internal/optimize"
	"github.com/TobiSchelling/contentforge/internal/prompts"
)

var (
	// ErrNoIdeas means there are no unused ideas to generate from.
	ErrNoIdeas = errors.New("no unused ideas available")
	// ErrNoMatchingIdeas means none of the requested idea ids exist.
	ErrNoMatchingIdeas = errors.New("no matching ideas found")
	// ErrProfileNotFound means the run has no usable brand profile.
	ErrProfileNotFound = errors.New("brand profile not found")
	// ErrSettingsNotConfigured means user settings have not been initialized.
	ErrSettingsNotConfigured = errors.New("user settings not configured")
)

// Storage is the persistence surface the orchestrator needs. The database
// package implements it; tests substitute an in-memory fake.
type Storage interface {
	GetUnusedIdeas(limit int) ([]models.Idea, error)
	GetIdea(id string) (*models.Idea, error)
	MarkIdeasUsed(ids []string) error
	GetProfile(id string) (*models.BrandProfile, error)
	GetSettings() (*models.UserSettings, error)
	CreateGeneration(gen *models.GeneratedContent) error
	UpdateGeneration(gen *models.GeneratedContent) error
	ListGenerations(limit int) ([]models.GeneratedContent, error)
}

// Options configures a single pipeline run. Zero values select defaults.
type Options struct {
	// ProfileID overrides the active profile from settings.
	ProfileID string
	// IdeaIDs selects specific ideas; empty means the oldest unused ideas.
	IdeaIDs []string
	// NumIdeas caps how many unused ideas feed curation (default 10).
	NumIdeas int
	// NumTopics is how many topic briefs to request (default 5).
	NumTopics int
	// Versions to develop per topic (default bridge only).
	Versions []models.ContentVersion
	// Platforms to optimize for (default follows the profile's priority).
	Platforms []string
	// TargetWordCount for developed pieces (default 500).
	TargetWordCount int
	// ReuseTopics skips stage 1 and develops these briefs instead.
	ReuseTopics []models.TopicBrief
	// Progress, if set, receives percentage milestones during RunFull.
	Progress func(percent int, message string)
}

func (o *Options) applyDefaults() {
	if o.NumIdeas <= 0 {
		o.NumIdeas = 10
	}
	if o.NumTopics <= 0 {
		o.NumTopics = 5
	}
	if len(o.Versions) == 0 {
		o.Versions = []models.ContentVersion{models.VersionBridge}
	}
	if o.TargetWordCount <= 0 {
		o.TargetWordCount = develop.DefaultTargetWordCount
	}
}

// Orchestrator wires storage, the AI client factory, and the three stages.
type Orchestrator struct {
	store   Storage
	factory *ai.Factory
	prompts *prompts.Manager
}

// New creates a pipeline orchestrator.
func New(store Storage, factory *ai.Factory) *Orchestrator {
	return &Orchestrator{
		store:   store,
		factory: factory,
		prompts: prompts.NewManager(),
	}
}

// runContext is the resolved state shared by batch and progressive runs.
type runContext struct {
	settings *models.UserSettings
	profile  *models.BrandProfile
	ideas    []models.Idea
	client   *ai.FallbackClient

	curator   *curate.Curator
	developer *develop.Developer
	optimizer *optimize.Optimizer
}

func (o *Orchestrator) prepare(opts *Options) (*runContext, error) {
	opts.applyDefaults()

	settings, err := o.store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettingsNotConfigured, err)
	}

	profileID := opts.ProfileID
	if profileID == "" {
		profileID = settings.ActiveProfileID
	}
	profile, err := o.store.GetProfile(profileID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, profileID)
	}

	var ideas []models.Idea
	if len(opts.ReuseTopics) == 0 {
		ideas, err = o.selectIdeas(opts)
		if err != nil {
			return nil, err
		}
	}

	client := o.factory.Client(settings.AIServicePrimary, settings.AIServiceFallback)

	return &runContext{
		settings:  settings,
		profile:   profile,
		ideas:     ideas,
		client:    client,
		curator:   curate.New(client, o.prompts),
		developer: develop.New(client, o.prompts),
		optimizer: optimize.New(client, o.prompts),
	}, nil
}

// selectIdeas resolves explicit idea ids, or pulls the oldest unused ideas.
func (o *Orchestrator) selectIdeas(opts *Options) ([]models.Idea, error) {
	if len(opts.IdeaIDs) > 0 {
		var ideas []models.Idea
		for _, id := range opts.IdeaIDs {
			idea, err := o.store.GetIdea(id)
			if err != nil {
				log.Printf("requested idea %s not found: %v", id, err)
				continue
			}
			ideas = append(ideas, *idea)
		}
		if len(ideas) == 0 {
			return nil, ErrNoMatchingIdeas
		}
		return ideas, nil
	}

	ideas, err := o.store.GetUnusedIdeas(opts.NumIdeas)
	if err != nil {
		return nil, fmt.Errorf("loading unused ideas: %w", err)
	}
	if len(ideas) == 0 {
		return nil, ErrNoIdeas
	}
	return ideas, nil
}

// RunFull executes all three stages and persists the resulting aggregate.
// Stage 1 failure aborts the run; failed versions and platforms in stages 2
// and 3 shrink the output instead. Source ideas are marked used only after
// the aggregate is saved.
func (o *Orchestrator) RunFull(ctx context.Context, opts Options) (*models.GeneratedContent, error) {
	rc, err := o.prepare(&opts)
	if err != nil {
		return nil, err
	}

	progress := func(percent int, message string) {
		if opts.Progress == nil {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				log.Printf("progress callback panicked: %v", r)
			}
		}()
		opts.Progress(percent, message)
	}

	ideaIDs := make([]string, len(rc.ideas))
	for i, idea := range rc.ideas {
		ideaIDs[i] = idea.ID
	}

	gen := models.NewGeneratedContent(rc.profile.ID, ideaIDs)
	gen.AIProvider = rc.client.ActiveProvider()

	// Stage 1: topic curation.
	progress(0, "Starting generation")
	progress(5, "Curating topics from your ideas")

	var topics []models.TopicBrief
	stage1Start := time.Now()
	if len(opts.ReuseTopics) > 0 {
		topics = opts.ReuseTopics
		log.Printf("reusing %d existing topics, skipping curation", len(topics))
	} else {
		topics, err = rc.curator.CurateTopics(ctx, rc.ideas, *rc.profile, opts.NumTopics)
		if err != nil {
			return nil, fmt.Errorf("topic curation failed: %w", err)
		}
	}
	gen.Stage1Seconds = time.Since(stage1Start).Seconds()
	gen.TopicBriefs = topics
	progress(15, fmt.Sprintf("Curated %d topics", len(topics)))

	// Stage 2: content development.
	progress(35, "Developing content")
	stage2Start := time.Now()
	for i, topic := range topics {
		developed := rc.developer.DevelopContent(ctx, topic, *rc.profile, opts.Versions, opts.TargetWordCount)
		gen.DevelopedContent = append(gen.DevelopedContent, developed...)
		progress(35+(i+1)*40/len(topics), fmt.Sprintf("Developed topic %d of %d", i+1, len(topics)))
	}
	gen.Stage2Seconds = time.Since(stage2Start).Seconds()

	// Stage 3: platform optimization.
	progress(75, "Optimizing for platforms")
	stage3Start := time.Now()
	for i, content := range gen.DevelopedContent {
		posts := rc.optimizer.OptimizeForPlatforms(ctx, content, *rc.profile, *rc.settings, opts.Platforms)
		gen.PlatformPosts = append(gen.PlatformPosts, posts...)
		progress(75+(i+1)*20/len(gen.DevelopedContent), fmt.Sprintf("Optimized piece %d of %d", i+1, len(gen.DevelopedContent)))
	}
	gen.Stage3Seconds = time.Since(stage3Start).Seconds()

	progress(95, "Saving results")
	if err := o.store.CreateGeneration(gen); err != nil {
		return nil, fmt.Errorf("saving generation: %w", err)
	}
	if len(ideaIDs) > 0 {
		if err := o.store.MarkIdeasUsed(ideaIDs); err != nil {
			log.Printf("failed to mark ideas used: %v", err)
		}
	}

	progress(100, "Generation complete")
	log.Printf("run %s complete: %d topics, %d pieces, %d posts (provider %s)",
		gen.ID, len(gen.TopicBriefs), len(gen.DevelopedContent), len(gen.PlatformPosts), gen.AIProvider)
	return gen, nil
}
