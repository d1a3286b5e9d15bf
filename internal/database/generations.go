package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/TobiSchelling/contentforge/internal/models"
)

// CreateGeneration stores a new generation run. The nested topic, content,
// and post lists are serialized as JSON columns; they are only ever read and
// written as a unit, so relational decomposition buys nothing here.
func (db *DB) CreateGeneration(gen *models.GeneratedContent) error {
	_, err := db.conn.Exec(
		`INSERT INTO generations (id, generated_at, profile_id, source_idea_ids,
		topic_briefs, developed_content, platform_posts, status,
		stage1_seconds, stage2_seconds, stage3_seconds, ai_provider)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		gen.ID, gen.GeneratedAt.Format(time.RFC3339), gen.ProfileID,
		toJSON(gen.SourceIdeaIDs), toJSON(gen.TopicBriefs),
		toJSON(gen.DevelopedContent), toJSON(gen.PlatformPosts), string(gen.Status),
		gen.Stage1Seconds, gen.Stage2Seconds, gen.Stage3Seconds, gen.AIProvider,
	)
	if err != nil {
		return fmt.Errorf("inserting generation: %w", err)
	}
	return nil
}

// UpdateGeneration rewrites a stored generation, typically after a status
// change or post edit during review.
func (db *DB) UpdateGeneration(gen *models.GeneratedContent) error {
	result, err := db.conn.Exec(
		`UPDATE generations SET source_idea_ids = ?, topic_briefs = ?,
		developed_content = ?, platform_posts = ?, status = ?,
		stage1_seconds = ?, stage2_seconds = ?, stage3_seconds = ?, ai_provider = ?
		WHERE id = ?`,
		toJSON(gen.SourceIdeaIDs), toJSON(gen.TopicBriefs),
		toJSON(gen.DevelopedContent), toJSON(gen.PlatformPosts), string(gen.Status),
		gen.Stage1Seconds, gen.Stage2Seconds, gen.Stage3Seconds, gen.AIProvider,
		gen.ID,
	)
	if err != nil {
		return fmt.Errorf("updating generation: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("generation %s not found", gen.ID)
	}
	return nil
}

// GetGeneration returns one generation by id.
func (db *DB) GetGeneration(id string) (*models.GeneratedContent, error) {
	row := db.conn.QueryRow(
		`SELECT id, generated_at, profile_id, source_idea_ids, topic_briefs,
		developed_content, platform_posts, status,
		stage1_seconds, stage2_seconds, stage3_seconds, ai_provider
		FROM generations WHERE id = ?`, id,
	)
	gen, err := scanGenerationRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("generation %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return gen, nil
}

// ListGenerations returns the most recent runs, newest first.
func (db *DB) ListGenerations(limit int) ([]models.GeneratedContent, error) {
	rows, err := db.conn.Query(
		`SELECT id, generated_at, profile_id, source_idea_ids, topic_briefs,
		developed_content, platform_posts, status,
		stage1_seconds, stage2_seconds, stage3_seconds, ai_provider
		FROM generations ORDER BY generated_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gens []models.GeneratedContent
	for rows.Next() {
		gen, err := scanGenerationRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		gens = append(gens, *gen)
	}
	return gens, rows.Err()
}

// SetGenerationStatus updates just the review status of a run.
func (db *DB) SetGenerationStatus(id string, status models.ContentStatus) error {
	result, err := db.conn.Exec(
		"UPDATE generations SET status = ? WHERE id = ?", string(status), id,
	)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("generation %s not found", id)
	}
	return nil
}

func scanGenerationRow(scan func(...any) error) (*models.GeneratedContent, error) {
	var gen models.GeneratedContent
	var generatedAt, ideaIDs, topics, content, posts, status string
	if err := scan(&gen.ID, &generatedAt, &gen.ProfileID, &ideaIDs, &topics,
		&content, &posts, &status,
		&gen.Stage1Seconds, &gen.Stage2Seconds, &gen.Stage3Seconds, &gen.AIProvider); err != nil {
		return nil, err
	}
	gen.GeneratedAt = parseTime(generatedAt)
	gen.Status = models.ContentStatus(status)
	fromJSON(ideaIDs, &gen.SourceIdeaIDs)
	fromJSON(topics, &gen.TopicBriefs)
	fromJSON(content, &gen.DevelopedContent)
	fromJSON(posts, &gen.PlatformPosts)
	return &gen, nil
}
