package database

import (
	"database/sql"
	"fmt"

	"github.com/TobiSchelling/contentforge/internal/models"
)

// InsertProfile stores a new brand profile.
func (db *DB) InsertProfile(profile models.BrandProfile) error {
	_, err := db.conn.Exec(
		`INSERT INTO profiles (id, name, type, target_audience, tone, key_topics, platform_priority, bio, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.ID, profile.Name, profile.Type, profile.TargetAudience, profile.Tone,
		toJSON(profile.KeyTopics), string(profile.PlatformPriority), profile.Bio, boolToInt(profile.IsActive),
	)
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}
	return nil
}

// GetProfile returns a profile by id.
func (db *DB) GetProfile(id string) (*models.BrandProfile, error) {
	row := db.conn.QueryRow(
		`SELECT id, name, type, target_audience, tone, key_topics, platform_priority, bio, is_active
		FROM profiles WHERE id = ?`, id,
	)
	profile, err := scanProfileRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("profile %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// ListProfiles returns all profiles, active first.
func (db *DB) ListProfiles() ([]models.BrandProfile, error) {
	rows, err := db.conn.Query(
		`SELECT id, name, type, target_audience, tone, key_topics, platform_priority, bio, is_active
		FROM profiles ORDER BY is_active DESC, name ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []models.BrandProfile
	for rows.Next() {
		profile, err := scanProfileRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, rows.Err()
}

// SetActiveProfile marks the given profile active, clears the flag on every
// other profile, and records the choice in settings.
func (db *DB) SetActiveProfile(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("UPDATE profiles SET is_active = 0"); err != nil {
		tx.Rollback()
		return err
	}
	result, err := tx.Exec("UPDATE profiles SET is_active = 1 WHERE id = ?", id)
	if err != nil {
		tx.Rollback()
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		tx.Rollback()
		return fmt.Errorf("profile %s not found", id)
	}
	if _, err := tx.Exec("UPDATE settings SET active_profile_id = ? WHERE id = 1", id); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// UpdateProfile replaces the stored profile fields.
func (db *DB) UpdateProfile(profile models.BrandProfile) error {
	_, err := db.conn.Exec(
		`UPDATE profiles SET name = ?, type = ?, target_audience = ?, tone = ?,
		key_topics = ?, platform_priority = ?, bio = ?, is_active = ? WHERE id = ?`,
		profile.Name, profile.Type, profile.TargetAudience, profile.Tone,
		toJSON(profile.KeyTopics), string(profile.PlatformPriority), profile.Bio,
		boolToInt(profile.IsActive), profile.ID,
	)
	return err
}

func scanProfileRow(scan func(...any) error) (*models.BrandProfile, error) {
	var profile models.BrandProfile
	var keyTopics, priority string
	var active int
	if err := scan(&profile.ID, &profile.Name, &profile.Type, &profile.TargetAudience,
		&profile.Tone, &keyTopics, &priority, &profile.Bio, &active); err != nil {
		return nil, err
	}
	profile.PlatformPriority = models.PlatformPriority(priority)
	profile.IsActive = active != 0
	fromJSON(keyTopics, &profile.KeyTopics)
	return &profile, nil
}
