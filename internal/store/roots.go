package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rootedlabs/trellis/internal/models"
)

// RootStore handles RootProfile persistence. There is at most one profile
// per user; the engine creates and updates it but never deletes it.
type RootStore struct {
	db *DB
}

func NewRootStore(db *DB) *RootStore {
	return &RootStore{db: db}
}

// GetProfile fetches the profile for a user, or nil if none exists.
func (s *RootStore) GetProfile(userID string) (*models.RootProfile, error) {
	var p models.RootProfile
	var traitsJSON, valuesJSON sql.NullString

	err := s.db.QueryRow(`
		SELECT user_id, persona_summary, traits, value_set, confidence_score, created_at, last_updated_at
		FROM root_profiles WHERE user_id = ?
	`, userID).Scan(&p.UserID, &p.PersonaSummary, &traitsJSON, &valuesJSON,
		&p.ConfidenceScore, &p.CreatedAt, &p.LastUpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if traitsJSON.Valid && traitsJSON.String != "" {
		if err := json.Unmarshal([]byte(traitsJSON.String), &p.Traits); err != nil {
			return nil, fmt.Errorf("decode traits: %w", err)
		}
	}
	if valuesJSON.Valid && valuesJSON.String != "" {
		if err := json.Unmarshal([]byte(valuesJSON.String), &p.Values); err != nil {
			return nil, fmt.Errorf("decode values: %w", err)
		}
	}
	return &p, nil
}

// CreateProfile inserts a brand-new profile. A duplicate insert for the same
// user surfaces as an error, which resolves the race between two requests
// both observing an absent profile.
func (s *RootStore) CreateProfile(p *models.RootProfile) error {
	traitsJSON, _ := json.Marshal(p.Traits)
	valuesJSON, _ := json.Marshal(p.Values)

	_, err := s.db.Exec(`
		INSERT INTO root_profiles (user_id, persona_summary, traits, value_set, confidence_score, created_at, last_updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.UserID, p.PersonaSummary, string(traitsJSON), string(valuesJSON),
		p.ConfidenceScore, p.CreatedAt, p.LastUpdatedAt)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// UpdateProfile commits a merged profile, but only if the stored row has not
// been updated since the cooldown cutoff. The conditional WHERE clause is
// what enforces "at most one root mutation per cooldown window per user":
// two racing requests can both pass an engine-side read, but only one UPDATE
// matches. Returns false when the update was rejected by the cooldown.
func (s *RootStore) UpdateProfile(p *models.RootProfile, cutoff int64) (bool, error) {
	traitsJSON, _ := json.Marshal(p.Traits)
	valuesJSON, _ := json.Marshal(p.Values)

	res, err := s.db.Exec(`
		UPDATE root_profiles
		SET persona_summary = ?, traits = ?, value_set = ?, last_updated_at = ?
		WHERE user_id = ? AND last_updated_at <= ?
	`, p.PersonaSummary, string(traitsJSON), string(valuesJSON),
		p.LastUpdatedAt, p.UserID, cutoff)
	if err != nil {
		return false, fmt.Errorf("update profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update profile rows: %w", err)
	}
	return n > 0, nil
}
