// Package prompts loads and renders the stage prompt templates. Templates are
// plain text with {variable} placeholders; the section markers they instruct
// the model to emit are what the stage parsers split on, so template and
// parser must move together.
package prompts

import (
	"embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/TobiSchelling/contentforge/internal/models"
)

//go:embed templates/*.txt
var templateFS embed.FS

// Manager renders stage prompts with variable substitution.
type Manager struct{}

// NewManager creates a prompt manager.
func NewManager() *Manager { return &Manager{} }

func load(name string) (string, error) {
	data, err := templateFS.ReadFile("templates/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("loading prompt template %s: %w", name, err)
	}
	return string(data), nil
}

// render substitutes {key} placeholders with their values.
func render(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// RenderStage1 renders the topic curation prompt.
func (m *Manager) RenderStage1(ideasText string, profile models.BrandProfile, numTopics int) (string, error) {
	template, err := load("stage1_topic_curation")
	if err != nil {
		return "", err
	}

	return render(template, map[string]string{
		"ideas_text":        ideasText,
		"profile_info":      profile.Bio,
		"target_audience":   defaultStr(profile.TargetAudience, "professionals"),
		"key_topics":        strings.Join(profile.KeyTopics, ", "),
		"tone":              defaultStr(profile.Tone, "professional and friendly"),
		"platform_priority": string(profile.PlatformPriority),
		"num_topics":        strconv.Itoa(numTopics),
	}), nil
}

// RenderStage2 renders the content development prompt for one version.
func (m *Manager) RenderStage2(topicText string, version models.ContentVersion, profile models.BrandProfile, targetWordCount int) (string, error) {
	name := "stage2_content_" + string(version)
	template, err := load(name)
	if err != nil {
		// Unknown version falls back to the bridge template.
		template, err = load("stage2_content_bridge")
		if err != nil {
			return "", err
		}
	}

	return render(template, map[string]string{
		"topic_brief":       topicText,
		"profile_info":      profile.Bio,
		"target_audience":   defaultStr(profile.TargetAudience, "professionals"),
		"tone":              defaultStr(profile.Tone, "professional and friendly"),
		"target_word_count": strconv.Itoa(targetWordCount),
	}), nil
}

// RenderStage3LinkedIn renders the LinkedIn optimization prompt.
func (m *Manager) RenderStage3LinkedIn(developedContent string, profile models.BrandProfile, emojiUsage models.EmojiUsage, maxHashtags int) (string, error) {
	template, err := load("stage3_linkedin_optimize")
	if err != nil {
		return "", err
	}

	return render(template, map[string]string{
		"developed_content": developedContent,
		"profile_info":      profile.Bio,
		"emoji_usage":       string(emojiUsage),
		"max_hashtags":      strconv.Itoa(maxHashtags),
	}), nil
}

// RenderStage3Twitter renders the Twitter thread optimization prompt.
func (m *Manager) RenderStage3Twitter(developedContent string, profile models.BrandProfile, emojiUsage models.EmojiUsage, maxHashtags int) (string, error) {
	template, err := load("stage3_twitter_optimize")
	if err != nil {
		return "", err
	}

	return render(template, map[string]string{
		"developed_content": developedContent,
		"profile_info":      profile.Bio,
		"emoji_usage":       string(emojiUsage),
		"max_hashtags":      strconv.Itoa(maxHashtags),
	}), nil
}

// RenderRefineIdea renders the one-shot idea refinement prompt.
func (m *Manager) RenderRefineIdea(ideaText string) (string, error) {
	template, err := load("refine_idea")
	if err != nil {
		return "", err
	}
	return render(template, map[string]string{"idea_text": ideaText}), nil
}

func defaultStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
