// Package optimize implements stage 3 of the pipeline: reshaping developed
// content into platform-native posts for LinkedIn and Twitter.
package optimize

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

// PlatformLinkedIn and PlatformTwitter are the supported target platforms.
const (
	PlatformLinkedIn = "linkedin"
	PlatformTwitter  = "twitter"
)

// maxTwitterHashtags caps hashtags per thread regardless of user settings.
const maxTwitterHashtags = 3

// Optimizer formats developed content for specific platforms.
type Optimizer struct {
	client  ai.Client
	prompts *prompts.Manager
}

// New creates a platform optimizer.
func New(client ai.Client, pm *prompts.Manager) *Optimizer {
	return &Optimizer{client: client, prompts: pm}
}

// PlatformsFor maps a brand profile's platform priority to the platform list
// a run should target when the caller does not choose explicitly.
func PlatformsFor(profile models.BrandProfile) []string {
	switch profile.PlatformPriority {
	case models.PriorityLinkedIn:
		return []string{PlatformLinkedIn}
	case models.PriorityTwitter:
		return []string{PlatformTwitter}
	default:
		return []string{PlatformLinkedIn, PlatformTwitter}
	}
}

// OptimizeForPlatforms produces posts for each requested platform, one per
// variation the model returned. A failed platform is logged and skipped, so
// the result may cover fewer platforms than requested. Unknown platform names
// are skipped with a log line.
func (o *Optimizer) OptimizeForPlatforms(ctx context.Context, content models.DevelopedContent, profile models.BrandProfile, settings models.UserSettings, platforms []string) []models.PlatformPost {
	if platforms == nil {
		platforms = PlatformsFor(profile)
	}

	log.Printf("optimizing content %s for platforms %v", content.ID, platforms)

	var posts []models.PlatformPost
	for _, platform := range platforms {
		var (
			platformPosts []models.PlatformPost
			err           error
		)
		switch platform {
		case PlatformLinkedIn:
			platformPosts, err = o.optimizeLinkedIn(ctx, content, profile, settings)
		case PlatformTwitter:
			platformPosts, err = o.optimizeTwitter(ctx, content, profile, settings)
		default:
			log.Printf("unknown platform %q, skipping", platform)
			continue
		}
		if err != nil {
			log.Printf("failed to optimize for %s: %v", platform, err)
			continue
		}
		for i := range platformPosts {
			platformPosts[i].ContentID = content.ID
		}
		posts = append(posts, platformPosts...)
	}

	log.Printf("created %d platform posts", len(posts))
	return posts
}

func (o *Optimizer) optimizeLinkedIn(ctx context.Context, content models.DevelopedContent, profile models.BrandProfile, settings models.UserSettings) ([]models.PlatformPost, error) {
	prompt, err := o.prompts.RenderStage3LinkedIn(formatContent(content), profile, settings.EmojiUsage, settings.MaxHashtags)
	if err != nil {
		return nil, err
	}

	response, err := o.client.Generate(ctx, prompt, 2500)
	if err != nil {
		return nil, err
	}

	return ParseLinkedInPosts(response), nil
}

func (o *Optimizer) optimizeTwitter(ctx context.Context, content models.DevelopedContent, profile models.BrandProfile, settings models.UserSettings) ([]models.PlatformPost, error) {
	maxHashtags := settings.MaxHashtags
	if maxHashtags > maxTwitterHashtags {
		maxHashtags = maxTwitterHashtags
	}

	prompt, err := o.prompts.RenderStage3Twitter(formatContent(content), profile, settings.EmojiUsage, maxHashtags)
	if err != nil {
		return nil, err
	}

	response, err := o.client.Generate(ctx, prompt, 2500)
	if err != nil {
		return nil, err
	}

	return ParseTwitterThreads(response), nil
}

// formatContent renders the developed piece for a stage-3 prompt.
func formatContent(content models.DevelopedContent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n\n%s", content.Title, content.Body)
	if len(content.KeyStatistics) > 0 {
		b.WriteString("\n\nKey statistics:\n")
		for _, stat := range content.KeyStatistics {
			fmt.Fprintf(&b, "- %s\n", stat)
		}
	}
	return b.String()
}

var (
	variationHeader = regexp.MustCompile(`## Variation \d+:`)
	threadHeader    = regexp.MustCompile(`## Thread [A-Z]:`)
	tweetNumber     = regexp.MustCompile(`^\d+/`)
)

// ParseLinkedInPosts decodes a stage-3 LinkedIn response into one post per
// variation. Metadata lines (hashtags, hook style, character count) feed the
// post fields; everything else between headers is post text. With no
// recognizable headers the whole response becomes a single post.
func ParseLinkedInPosts(response string) []models.PlatformPost {
	var posts []models.PlatformPost

	sections := variationHeader.Split(response, -1)
	for _, section := range sections[1:] {
		post := models.PlatformPost{
			ID:        models.NewPostID(PlatformLinkedIn),
			Platform:  PlatformLinkedIn,
			CreatedAt: time.Now(),
		}

		var textLines []string
		for _, line := range strings.Split(section, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "**Hashtags:**"):
				post.Hashtags = extractHashtags(strings.TrimPrefix(line, "**Hashtags:**"))
			case strings.HasPrefix(line, "**Hook Style:**"):
				post.HookStyle = strings.TrimSpace(strings.TrimPrefix(line, "**Hook Style:**"))
			case strings.HasPrefix(line, "**Character Count:**"):
				// Recomputed below from the actual text.
			case strings.HasPrefix(line, "**") || strings.HasPrefix(line, "---"):
				// Stray markdown decoration, not post text.
			default:
				textLines = append(textLines, line)
			}
		}

		post.Text = strings.TrimSpace(strings.Join(textLines, "\n"))
		if post.Text == "" {
			continue
		}
		post.CharacterCount = len([]rune(post.Text))
		post.VariationNumber = len(posts) + 1
		posts = append(posts, post)
	}

	if len(posts) == 0 {
		text := strings.TrimSpace(response)
		posts = append(posts, models.PlatformPost{
			ID:              models.NewPostID(PlatformLinkedIn),
			Platform:        PlatformLinkedIn,
			Text:            text,
			CharacterCount:  len([]rune(text)),
			VariationNumber: 1,
			CreatedAt:       time.Now(),
		})
	}

	return posts
}

// ParseTwitterThreads decodes a stage-3 Twitter response into one post per
// thread. Tweets are the "N/" numbered lines within each thread section; they
// become the thread parts, joined with blank lines for the display text. With
// no recognizable headers the whole response becomes a single-part thread.
func ParseTwitterThreads(response string) []models.PlatformPost {
	var posts []models.PlatformPost

	sections := threadHeader.Split(response, -1)
	for _, section := range sections[1:] {
		post := models.PlatformPost{
			ID:        models.NewPostID(PlatformTwitter),
			Platform:  PlatformTwitter,
			IsThread:  true,
			CreatedAt: time.Now(),
		}

		// The format name trails the header on the same line.
		firstLine, _, _ := strings.Cut(section, "\n")
		switch {
		case strings.Contains(firstLine, "Rapid-Fire"):
			post.HookStyle = "rapid_fire"
		case strings.Contains(firstLine, "Standard"):
			post.HookStyle = "standard"
		}

		for _, line := range strings.Split(section, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case tweetNumber.MatchString(line):
				post.ThreadParts = append(post.ThreadParts, line)
			case strings.HasPrefix(line, "**Hashtags:**"):
				post.Hashtags = extractHashtags(strings.TrimPrefix(line, "**Hashtags:**"))
			case strings.HasPrefix(line, "**Thread Length:**"):
				// Derived from the actual tweet count instead.
			}
		}

		if len(post.ThreadParts) == 0 {
			continue
		}
		post.Text = strings.Join(post.ThreadParts, "\n\n")
		post.CharacterCount = len([]rune(post.Text))
		post.VariationNumber = len(posts) + 1
		posts = append(posts, post)
	}

	if len(posts) == 0 {
		text := strings.TrimSpace(response)
		posts = append(posts, models.PlatformPost{
			ID:              models.NewPostID(PlatformTwitter),
			Platform:        PlatformTwitter,
			Text:            text,
			ThreadParts:     []string{text},
			IsThread:        true,
			CharacterCount:  len([]rune(text)),
			VariationNumber: 1,
			CreatedAt:       time.Now(),
		})
	}

	return posts
}

// extractHashtags pulls #tag tokens from a hashtag line, tolerating comma or
// space separation and missing # prefixes.
func extractHashtags(s string) []string {
	var tags []string
	for _, field := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' }) {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if !strings.HasPrefix(field, "#") {
			field = "#" + field
		}
		tags = append(tags, field)
	}
	return tags
}
