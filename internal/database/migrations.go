package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS ideas (
    id TEXT PRIMARY KEY,
    text TEXT NOT NULL,
    title TEXT,
    refined_text TEXT,
    category TEXT NOT NULL DEFAULT 'General',
    source TEXT NOT NULL DEFAULT 'manual',
    created_at TEXT NOT NULL,
    used INTEGER DEFAULT 0,
    used_date TEXT
);

CREATE TABLE IF NOT EXISTS profiles (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT 'personal',
    target_audience TEXT,
    tone TEXT,
    key_topics TEXT,
    platform_priority TEXT,
    bio TEXT,
    is_active INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS settings (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    ai_service_primary TEXT NOT NULL DEFAULT 'mock',
    ai_service_fallback TEXT DEFAULT '',
    emoji_usage TEXT DEFAULT 'Minimal',
    max_hashtags INTEGER DEFAULT 3,
    idea_categories TEXT,
    active_profile_id TEXT DEFAULT '',
    version_names TEXT
);

CREATE TABLE IF NOT EXISTS generations (
    id TEXT PRIMARY KEY,
    generated_at TEXT NOT NULL,
    profile_id TEXT NOT NULL,
    source_idea_ids TEXT,
    topic_briefs TEXT,
    developed_content TEXT,
    platform_posts TEXT,
    status TEXT NOT NULL DEFAULT 'draft',
    stage1_seconds REAL DEFAULT 0,
    stage2_seconds REAL DEFAULT 0,
    stage3_seconds REAL DEFAULT 0,
    ai_provider TEXT DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_ideas_used ON ideas(used, created_at);
CREATE INDEX IF NOT EXISTS idx_ideas_category ON ideas(category);
CREATE INDEX IF NOT EXISTS idx_generations_generated_at ON generations(generated_at);
CREATE INDEX IF NOT EXISTS idx_generations_profile ON generations(profile_id);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
