// Package models defines the domain types shared by the pipeline, storage,
// and server layers.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlatformPriority controls which platforms a profile targets first.
type PlatformPriority string

const (
	PriorityLinkedIn PlatformPriority = "LinkedIn primary"
	PriorityTwitter  PlatformPriority = "Twitter primary"
	PriorityBoth     PlatformPriority = "Both equally"
)

// EmojiUsage is the configured emoji density for generated posts.
type EmojiUsage string

const (
	EmojiNone     EmojiUsage = "None"
	EmojiMinimal  EmojiUsage = "Minimal"
	EmojiModerate EmojiUsage = "Moderate"
	EmojiHeavy    EmojiUsage = "Heavy"
)

// ContentVersion is the stylistic flavor of a developed piece.
type ContentVersion string

const (
	// VersionBridge balances practical advice with personal experience.
	VersionBridge ContentVersion = "bridge"
	// VersionAspirational is framework-heavy, data-backed content.
	VersionAspirational ContentVersion = "aspirational"
	// VersionCurrent is personal, vulnerable, first-person content.
	VersionCurrent ContentVersion = "current"
)

// AllVersions lists every content version in generation order.
var AllVersions = []ContentVersion{VersionBridge, VersionAspirational, VersionCurrent}

// ParseVersion maps a user-supplied string to a ContentVersion.
func ParseVersion(s string) (ContentVersion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bridge":
		return VersionBridge, nil
	case "aspirational":
		return VersionAspirational, nil
	case "current":
		return VersionCurrent, nil
	}
	return "", fmt.Errorf("unknown content version: %q", s)
}

// ContentStatus is the review state of a generation run.
type ContentStatus string

const (
	StatusDraft     ContentStatus = "draft"
	StatusApproved  ContentStatus = "approved"
	StatusPublished ContentStatus = "published"
)

// Idea is a raw user-submitted text fragment that may become content.
type Idea struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Title       string     `json:"title,omitempty"`
	RefinedText string     `json:"refined_text,omitempty"`
	Category    string     `json:"category"`
	Source      string     `json:"source"`
	CreatedAt   time.Time  `json:"created_at"`
	Used        bool       `json:"used"`
	UsedDate    *time.Time `json:"used_date,omitempty"`
}

// NewIdea creates an idea with a fresh id and timestamp.
func NewIdea(text, category, source string) Idea {
	return Idea{
		ID:        newID("idea"),
		Text:      text,
		Category:  category,
		Source:    source,
		CreatedAt: time.Now(),
	}
}

// BrandProfile describes the voice and audience content is generated for.
type BrandProfile struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Type             string           `json:"type"` // "personal" or "company"
	TargetAudience   string           `json:"target_audience"`
	Tone             string           `json:"tone"`
	KeyTopics        []string         `json:"key_topics"`
	PlatformPriority PlatformPriority `json:"platform_priority"`
	Bio              string           `json:"bio"`
	IsActive         bool             `json:"is_active"`
}

// UserSettings is the per-installation configuration singleton.
type UserSettings struct {
	AIServicePrimary  string            `json:"ai_service_primary"`
	AIServiceFallback string            `json:"ai_service_fallback"`
	EmojiUsage        EmojiUsage        `json:"emoji_usage"`
	MaxHashtags       int               `json:"max_hashtags"`
	IdeaCategories    []string          `json:"idea_categories"`
	ActiveProfileID   string            `json:"active_profile_id"`
	VersionNames      map[string]string `json:"version_names,omitempty"`
}

// TopicBrief is a curated, audience-angled framing of one or more ideas.
type TopicBrief struct {
	ID                string    `json:"id"`
	CoreInsight       string    `json:"core_insight"`
	AudienceResonance string    `json:"audience_resonance"`
	AuthenticAngle    string    `json:"authentic_angle"`
	PotentialHook     string    `json:"potential_hook"`
	SourceIdeaIDs     []string  `json:"source_idea_ids"`
	CreatedAt         time.Time `json:"created_at"`
}

// DevelopedContent is a full-length draft in one stylistic version.
type DevelopedContent struct {
	ID                string         `json:"id"`
	TopicID           string         `json:"topic_id"`
	Version           ContentVersion `json:"version"`
	Title             string         `json:"title"`
	Body              string         `json:"body"`
	KeyStatistics     []string       `json:"key_statistics,omitempty"`
	Sources           []string       `json:"sources,omitempty"`
	Examples          []string       `json:"examples,omitempty"`
	WordCount         int            `json:"word_count"`
	EstimatedReadTime int            `json:"estimated_read_time"`
	CreatedAt         time.Time      `json:"created_at"`
}

// SetBody sets the body and recomputes the derived word count and read time.
func (c *DevelopedContent) SetBody(body string) {
	c.Body = body
	c.WordCount = len(strings.Fields(body))
	c.EstimatedReadTime = c.WordCount / 200
	if c.EstimatedReadTime < 1 {
		c.EstimatedReadTime = 1
	}
}

// PlatformPost is a per-platform rendering of developed content.
type PlatformPost struct {
	ID              string     `json:"id"`
	ContentID       string     `json:"content_id"`
	Platform        string     `json:"platform"`
	Text            string     `json:"text"`
	Hashtags        []string   `json:"hashtags,omitempty"`
	CharacterCount  int        `json:"character_count"`
	VariationNumber int        `json:"variation_number"`
	HookStyle       string     `json:"hook_style"`
	IsThread        bool       `json:"is_thread,omitempty"`
	ThreadParts     []string   `json:"thread_parts,omitempty"`
	PublishedURL    string     `json:"published_url,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// GeneratedContent is the aggregate produced by one pipeline run. It is the
// unit of persistence and review.
type GeneratedContent struct {
	ID               string             `json:"id"`
	GeneratedAt      time.Time          `json:"generated_at"`
	ProfileID        string             `json:"profile_id"`
	SourceIdeaIDs    []string           `json:"source_idea_ids"`
	TopicBriefs      []TopicBrief       `json:"topic_briefs"`
	DevelopedContent []DevelopedContent `json:"developed_content"`
	PlatformPosts    []PlatformPost     `json:"platform_posts"`
	Status           ContentStatus      `json:"status"`

	// Timing metadata recorded by progressive runs, used for runtime estimates.
	Stage1Seconds float64 `json:"stage1_seconds,omitempty"`
	Stage2Seconds float64 `json:"stage2_seconds,omitempty"`
	Stage3Seconds float64 `json:"stage3_seconds,omitempty"`
	AIProvider    string  `json:"ai_provider,omitempty"`
}

// NewGeneratedContent creates an empty draft aggregate for a run.
func NewGeneratedContent(profileID string, sourceIdeaIDs []string) *GeneratedContent {
	return &GeneratedContent{
		ID:            newID("gen"),
		GeneratedAt:   time.Now(),
		ProfileID:     profileID,
		SourceIdeaIDs: sourceIdeaIDs,
		Status:        StatusDraft,
	}
}

// NewTopicID returns a fresh topic brief id.
func NewTopicID() string { return newID("topic") }

// NewContentID returns a fresh developed content id.
func NewContentID() string { return newID("content") }

// NewPostID returns a fresh platform post id with a platform prefix.
func NewPostID(platform string) string { return newID(strings.ToLower(platform)) }

func newID(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
