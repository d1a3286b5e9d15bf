package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/TobiSchelling/contentforge/internal/models"
)

// EventType discriminates progressive run events.
type EventType string

const (
	// EventTopics is emitted once when stage 1 finishes.
	EventTopics EventType = "topics"
	// EventContent is emitted per developed piece, with its platform posts
	// already attached so the piece is reviewable the moment it arrives.
	EventContent EventType = "content"
	// EventComplete is emitted last on success with the persisted aggregate.
	EventComplete EventType = "complete"
	// EventError is emitted last on failure.
	EventError EventType = "error"
)

// Event is one progressive run update. Exactly one payload field is set,
// matching the Type.
type Event struct {
	Type       EventType
	Topics     []models.TopicBrief
	Content    *models.DevelopedContent
	Posts      []models.PlatformPost
	Generation *models.GeneratedContent
	Err        error
}

// RunProgressive executes the pipeline like RunFull but streams results as
// they become available: one EventTopics after curation, one EventContent per
// developed piece (optimized immediately, not in a final batch), then
// EventComplete with the saved aggregate. The channel is closed when the run
// ends; an EventError is always terminal.
func (o *Orchestrator) RunProgressive(ctx context.Context, opts Options) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)

		rc, err := o.prepare(&opts)
		if err != nil {
			events <- Event{Type: EventError, Err: err}
			return
		}

		ideaIDs := make([]string, len(rc.ideas))
		for i, idea := range rc.ideas {
			ideaIDs[i] = idea.ID
		}

		gen := models.NewGeneratedContent(rc.profile.ID, ideaIDs)
		gen.AIProvider = rc.client.ActiveProvider()

		var topics []models.TopicBrief
		stage1Start := time.Now()
		if len(opts.ReuseTopics) > 0 {
			topics = opts.ReuseTopics
			log.Printf("reusing %d existing topics, skipping curation", len(topics))
		} else {
			topics, err = rc.curator.CurateTopics(ctx, rc.ideas, *rc.profile, opts.NumTopics)
			if err != nil {
				events <- Event{Type: EventError, Err: fmt.Errorf("topic curation failed: %w", err)}
				return
			}
		}
		gen.Stage1Seconds = time.Since(stage1Start).Seconds()
		gen.TopicBriefs = topics

		select {
		case events <- Event{Type: EventTopics, Topics: topics}:
		case <-ctx.Done():
			return
		}

		// Stages 2 and 3 interleave: each developed piece is optimized and
		// emitted before the next one is generated.
		var stage2, stage3 time.Duration
		for _, topic := range topics {
			for _, version := range opts.Versions {
				stage2Start := time.Now()
				developed := rc.developer.DevelopContent(ctx, topic, *rc.profile, []models.ContentVersion{version}, opts.TargetWordCount)
				stage2 += time.Since(stage2Start)
				if len(developed) == 0 {
					continue
				}
				content := developed[0]
				gen.DevelopedContent = append(gen.DevelopedContent, content)

				stage3Start := time.Now()
				posts := rc.optimizer.OptimizeForPlatforms(ctx, content, *rc.profile, *rc.settings, opts.Platforms)
				stage3 += time.Since(stage3Start)
				gen.PlatformPosts = append(gen.PlatformPosts, posts...)

				select {
				case events <- Event{Type: EventContent, Content: &content, Posts: posts}:
				case <-ctx.Done():
					return
				}
			}
		}
		gen.Stage2Seconds = stage2.Seconds()
		gen.Stage3Seconds = stage3.Seconds()

		if err := o.store.CreateGeneration(gen); err != nil {
			events <- Event{Type: EventError, Err: fmt.Errorf("saving generation: %w", err)}
			return
		}
		if len(ideaIDs) > 0 {
			if err := o.store.MarkIdeasUsed(ideaIDs); err != nil {
				log.Printf("failed to mark ideas used: %v", err)
			}
		}

		log.Printf("progressive run %s complete: %d topics, %d pieces, %d posts",
			gen.ID, len(gen.TopicBriefs), len(gen.DevelopedContent), len(gen.PlatformPosts))
		events <- Event{Type: EventComplete, Generation: gen}
	}()

	return events
}
