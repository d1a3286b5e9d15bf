// Package curate implements stage 1 of the pipeline: turning raw ideas into
// audience-angled topic briefs.
package curate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/TobiSchelling/contentforge/internal/ai"
	"github.com/TobiSchelling/contentforge/internal/models"
	"github.com/TobiSchelling/contentforge/internal/prompts"
)

// ErrNoIdeas is returned when curation is asked to run on an empty idea set.
var ErrNoIdeas = errors.New("no ideas provided for curation")

// Curator curates topic briefs from user ideas.
type Curator struct {
	client  ai.Client
	prompts *prompts.Manager
}

// New creates a topic curator.
func New(client ai.Client, pm *prompts.Manager) *Curator {
	return &Curator{client: client, prompts: pm}
}

// CurateTopics asks the model for numTopics topic briefs built from the given
// ideas. Parsing is fail-soft: if the response yields no parseable topics, a
// single generic brief referencing every source idea is synthesized instead
// of failing the stage.
func (c *Curator) CurateTopics(ctx context.Context, ideas []models.Idea, profile models.BrandProfile, numTopics int) ([]models.TopicBrief, error) {
	if len(ideas) == 0 {
		return nil, ErrNoIdeas
	}

	log.Printf("curating %d topics from %d ideas", numTopics, len(ideas))

	prompt, err := c.prompts.RenderStage1(formatIdeas(ideas), profile, numTopics)
	if err != nil {
		return nil, err
	}

	response, err := c.client.Generate(ctx, prompt, 2000)
	if err != nil {
		return nil, err
	}

	ideaIDs := make([]string, len(ideas))
	for i, idea := range ideas {
		ideaIDs[i] = idea.ID
	}

	topics := ParseTopics(response, ideaIDs)
	if len(topics) == 0 {
		log.Println("failed to parse any topics, creating generic topic")
		topics = append(topics, genericTopic(ideaIDs))
	}

	log.Printf("curated %d topics", len(topics))
	return topics, nil
}

// formatIdeas numbers each idea with its category for the prompt body.
func formatIdeas(ideas []models.Idea) string {
	var b strings.Builder
	for i, idea := range ideas {
		fmt.Fprintf(&b, "**Idea %d** (Category: %s)\n%s\n\n", i+1, idea.Category, idea.Text)
	}
	return b.String()
}

// ParseTopics decodes the model's free-text response into topic briefs. Each
// brief references the full set of source idea ids. Sections without a core
// insight line are discarded.
func ParseTopics(response string, sourceIdeaIDs []string) []models.TopicBrief {
	var topics []models.TopicBrief

	sections := strings.Split(response, "**Topic ")
	for _, section := range sections[1:] {
		var brief models.TopicBrief
		for _, line := range strings.Split(section, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "**Core Insight:**"):
				brief.CoreInsight = strings.TrimSpace(strings.TrimPrefix(line, "**Core Insight:**"))
			case strings.HasPrefix(line, "**Audience Resonance:**"):
				brief.AudienceResonance = strings.TrimSpace(strings.TrimPrefix(line, "**Audience Resonance:**"))
			case strings.HasPrefix(line, "**Authentic Angle:**"):
				brief.AuthenticAngle = strings.TrimSpace(strings.TrimPrefix(line, "**Authentic Angle:**"))
			case strings.HasPrefix(line, "**Potential Hook:**"):
				brief.PotentialHook = strings.TrimSpace(strings.TrimPrefix(line, "**Potential Hook:**"))
			}
		}

		if brief.CoreInsight == "" {
			continue
		}

		brief.ID = models.NewTopicID()
		brief.SourceIdeaIDs = sourceIdeaIDs
		brief.CreatedAt = time.Now()
		topics = append(topics, brief)
	}

	return topics
}

func genericTopic(sourceIdeaIDs []string) models.TopicBrief {
	return models.TopicBrief{
		ID:                models.NewTopicID(),
		CoreInsight:       "Generated from your recent ideas",
		AudienceResonance: "Relevant to your target audience",
		AuthenticAngle:    "Based on your personal experiences",
		PotentialHook:     "Here's what I learned...",
		SourceIdeaIDs:     sourceIdeaIDs,
		CreatedAt:         time.Now(),
	}
}
