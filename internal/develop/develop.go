// Package develop implements stage 2 of the pipeline: expanding a topic brief
// into full-length content in one or more stylistic versions.
package develop

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/TobiSchelling/contentforge/internal/ai"
	"github.com/TobiSchelling/contentforge/internal/models"
	"github.com/TobiSchelling/contentforge/internal/prompts"
)

// DefaultTargetWordCount is used when the caller does not specify one.
const DefaultTargetWordCount = 500

// Developer develops topic briefs into full content pieces.
type Developer struct {
	client  ai.Client
	prompts *prompts.Manager
}

// New creates a content developer.
func New(client ai.Client, pm *prompts.Manager) *Developer {
	return &Developer{client: client, prompts: pm}
}

// DevelopContent generates one content piece per requested version. A failed
// version is logged and skipped rather than aborting the call, so the result
// may be shorter than the request. Nil versions means all three.
func (d *Developer) DevelopContent(ctx context.Context, brief models.TopicBrief, profile models.BrandProfile, versions []models.ContentVersion, targetWordCount int) []models.DevelopedContent {
	if versions == nil {
		versions = models.AllVersions
	}
	if targetWordCount <= 0 {
		targetWordCount = DefaultTargetWordCount
	}

	log.Printf("developing topic %s into %d versions", brief.ID, len(versions))

	topicText := formatBrief(brief)

	var developed []models.DevelopedContent
	for _, version := range versions {
		content, err := d.generateVersion(ctx, topicText, version, profile, targetWordCount)
		if err != nil {
			log.Printf("failed to generate %s version: %v", version, err)
			continue
		}
		content.TopicID = brief.ID
		developed = append(developed, *content)
	}

	log.Printf("developed %d content versions", len(developed))
	return developed
}

func (d *Developer) generateVersion(ctx context.Context, topicText string, version models.ContentVersion, profile models.BrandProfile, targetWordCount int) (*models.DevelopedContent, error) {
	prompt, err := d.prompts.RenderStage2(topicText, version, profile, targetWordCount)
	if err != nil {
		return nil, err
	}

	response, err := d.client.Generate(ctx, prompt, 3000)
	if err != nil {
		return nil, err
	}

	parsed := ParseContent(response)

	content := &models.DevelopedContent{
		ID:            models.NewContentID(),
		Version:       version,
		Title:         parsed.Title,
		KeyStatistics: parsed.Statistics,
		Sources:       parsed.Sources,
		Examples:      parsed.Examples,
		CreatedAt:     time.Now(),
	}
	content.SetBody(parsed.Body)
	return content, nil
}

// formatBrief renders the four brief fields for the prompt.
func formatBrief(brief models.TopicBrief) string {
	return fmt.Sprintf(
		"**Core Insight:** %s\n\n**Audience Resonance:** %s\n\n**Authentic Angle:** %s\n\n**Potential Hook:** %s",
		brief.CoreInsight, brief.AudienceResonance, brief.AuthenticAngle, brief.PotentialHook,
	)
}

// ParsedContent is the structured decoding of a stage-2 response.
type ParsedContent struct {
	Title      string
	Body       string
	Statistics []string
	Sources    []string
	Examples   []string
}

var urlPattern = regexp.MustCompile(`https?://\S+`)

// ParseContent decodes a stage-2 response: a title line, then body text until
// the statistics/examples sections. Fail-soft: with no recognizable structure,
// the whole response becomes the body.
func ParseContent(response string) ParsedContent {
	result := ParsedContent{Title: "Untitled"}
	lines := strings.Split(strings.TrimSpace(response), "\n")

	// A labeled title or a leading heading within the first few lines.
	for _, line := range lines[:min(5, len(lines))] {
		if strings.HasPrefix(line, "**Title:**") {
			result.Title = strings.TrimSpace(strings.TrimPrefix(line, "**Title:**"))
			break
		}
		if strings.HasPrefix(line, "#") {
			result.Title = strings.TrimSpace(strings.TrimLeft(line, "#"))
			break
		}
	}

	const (
		inBody = iota
		inStats
		inExamples
	)
	section := inBody

	var bodyLines []string
loop:
	for _, line := range lines {
		line = strings.TrimSpace(line)

		switch {
		// Containment, not prefix: models wrap the markers in bold or fold
		// them into a sentence, and both forms end the body.
		case strings.Contains(line, "Key Statistics:"):
			section = inStats
			continue
		case strings.Contains(line, "Examples:"):
			section = inExamples
			continue
		case strings.Contains(line, "**Word Count:**"):
			break loop
		}

		switch section {
		case inBody:
			if line != "" && !strings.HasPrefix(line, "**Title:**") {
				bodyLines = append(bodyLines, line)
			}
		case inStats:
			if stat := trimBullet(line); stat != "" {
				result.Statistics = append(result.Statistics, stat)
				result.Sources = append(result.Sources, urlPattern.FindAllString(stat, -1)...)
			}
		case inExamples:
			if example := trimBullet(line); example != "" {
				result.Examples = append(result.Examples, example)
			}
		}
	}

	result.Body = strings.TrimSpace(strings.Join(bodyLines, "\n"))
	if result.Body == "" {
		result.Body = strings.TrimSpace(response)
	}

	return result
}

// trimBullet strips a leading bullet marker; non-bullet lines return "".
func trimBullet(line string) string {
	if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "•") {
		return ""
	}
	return strings.TrimSpace(strings.TrimLeft(line, "-•"))
}
