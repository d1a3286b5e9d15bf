package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/TobiSchelling/contentforge/internal/models"
)

// InsertIdea stores a new idea.
func (db *DB) InsertIdea(idea models.Idea) error {
	_, err := db.conn.Exec(
		`INSERT INTO ideas (id, text, title, refined_text, category, source, created_at, used, used_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		idea.ID, idea.Text, idea.Title, idea.RefinedText, idea.Category, idea.Source,
		idea.CreatedAt.Format(time.RFC3339), boolToInt(idea.Used), timePtrToStr(idea.UsedDate),
	)
	if err != nil {
		return fmt.Errorf("inserting idea: %w", err)
	}
	return nil
}

// GetIdea returns a single idea by id.
func (db *DB) GetIdea(id string) (*models.Idea, error) {
	row := db.conn.QueryRow(
		`SELECT id, text, title, refined_text, category, source, created_at, used, used_date
		FROM ideas WHERE id = ?`, id,
	)
	idea, err := scanIdea(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("idea %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return idea, nil
}

// GetUnusedIdeas returns up to limit unused ideas, oldest first, so long-queued
// ideas get generated before fresh ones.
func (db *DB) GetUnusedIdeas(limit int) ([]models.Idea, error) {
	rows, err := db.conn.Query(
		`SELECT id, text, title, refined_text, category, source, created_at, used, used_date
		FROM ideas WHERE used = 0 ORDER BY created_at ASC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIdeas(rows)
}

// ListIdeas returns all ideas, newest first. includeUsed controls whether
// already-consumed ideas appear.
func (db *DB) ListIdeas(includeUsed bool) ([]models.Idea, error) {
	query := `SELECT id, text, title, refined_text, category, source, created_at, used, used_date
		FROM ideas`
	if !includeUsed {
		query += " WHERE used = 0"
	}
	query += " ORDER BY created_at DESC"

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIdeas(rows)
}

// MarkIdeasUsed flags the given ideas as consumed by a generation run.
func (db *DB) MarkIdeasUsed(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	now := time.Now().Format(time.RFC3339)
	for _, id := range ids {
		if _, err := tx.Exec(
			"UPDATE ideas SET used = 1, used_date = ? WHERE id = ?", now, id,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("marking idea %s used: %w", id, err)
		}
	}
	return tx.Commit()
}

// SetIdeaRefinement stores the AI-refined text for an idea.
func (db *DB) SetIdeaRefinement(id, refinedText string) error {
	_, err := db.conn.Exec(
		"UPDATE ideas SET refined_text = ? WHERE id = ?", refinedText, id,
	)
	return err
}

// DeleteIdea removes an idea.
func (db *DB) DeleteIdea(id string) error {
	_, err := db.conn.Exec("DELETE FROM ideas WHERE id = ?", id)
	return err
}

func scanIdeas(rows *sql.Rows) ([]models.Idea, error) {
	var ideas []models.Idea
	for rows.Next() {
		idea, err := scanIdeaRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		ideas = append(ideas, *idea)
	}
	return ideas, rows.Err()
}

func scanIdea(row *sql.Row) (*models.Idea, error) {
	return scanIdeaRow(row.Scan)
}

func scanIdeaRow(scan func(...any) error) (*models.Idea, error) {
	var idea models.Idea
	var createdAt string
	var used int
	var usedDate *string
	if err := scan(&idea.ID, &idea.Text, &idea.Title, &idea.RefinedText,
		&idea.Category, &idea.Source, &createdAt, &used, &usedDate); err != nil {
		return nil, err
	}
	idea.Used = used != 0
	idea.CreatedAt = parseTime(createdAt)
	if usedDate != nil {
		t := parseTime(*usedDate)
		idea.UsedDate = &t
	}
	return &idea, nil
}
