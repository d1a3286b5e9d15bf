package database

import (
	"database/sql"
	"fmt"

	"github.com/TobiSchelling/contentforge/internal/models"
)

// DefaultSettings are the settings a fresh installation starts with.
func DefaultSettings() models.UserSettings {
	return models.UserSettings{
		AIServicePrimary:  "mock",
		AIServiceFallback: "",
		EmojiUsage:        models.EmojiMinimal,
		MaxHashtags:       3,
		IdeaCategories:    []string{"General", "Technical", "Personal", "Industry"},
	}
}

// GetSettings returns the settings singleton. A missing row is an error; call
// SaveSettings (or the init command) first.
func (db *DB) GetSettings() (*models.UserSettings, error) {
	row := db.conn.QueryRow(
		`SELECT ai_service_primary, ai_service_fallback, emoji_usage, max_hashtags,
		idea_categories, active_profile_id, version_names
		FROM settings WHERE id = 1`,
	)

	var s models.UserSettings
	var emoji, categories, versionNames string
	err := row.Scan(&s.AIServicePrimary, &s.AIServiceFallback, &emoji,
		&s.MaxHashtags, &categories, &s.ActiveProfileID, &versionNames)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("settings not initialized")
	}
	if err != nil {
		return nil, err
	}
	s.EmojiUsage = models.EmojiUsage(emoji)
	fromJSON(categories, &s.IdeaCategories)
	fromJSON(versionNames, &s.VersionNames)
	return &s, nil
}

// SaveSettings writes the settings singleton, creating it if absent.
func (db *DB) SaveSettings(s models.UserSettings) error {
	_, err := db.conn.Exec(
		`INSERT INTO settings (id, ai_service_primary, ai_service_fallback, emoji_usage,
		max_hashtags, idea_categories, active_profile_id, version_names)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ai_service_primary = excluded.ai_service_primary,
			ai_service_fallback = excluded.ai_service_fallback,
			emoji_usage = excluded.emoji_usage,
			max_hashtags = excluded.max_hashtags,
			idea_categories = excluded.idea_categories,
			active_profile_id = excluded.active_profile_id,
			version_names = excluded.version_names`,
		s.AIServicePrimary, s.AIServiceFallback, string(s.EmojiUsage),
		s.MaxHashtags, toJSON(s.IdeaCategories), s.ActiveProfileID, toJSON(s.VersionNames),
	)
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}
