package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jakdoczlapie/transit-admin-backend/internal/selection"
)

// Preference keys. These mirror the two browser storage keys the dashboard
// historically used, so an operator migrating sees the same names.
const (
	keyActiveOperator      = "selected_operator"
	keyComparisonOperators = "comparison_operators"
)

// PreferenceRepository persists dashboard preferences as key/value rows. It
// implements selection.Persistence.
type PreferenceRepository struct {
	db DB
}

// NewPreferenceRepository creates a new PreferenceRepository
func NewPreferenceRepository(db DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Init creates the preferences table if it does not exist
func (r *PreferenceRepository) Init() error {
	query := `
		CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create preferences table: %w", err)
	}
	return nil
}

// Load reads the operator selection. The second return value reports whether
// any selection was ever stored.
func (r *PreferenceRepository) Load() (selection.State, bool, error) {
	state := selection.State{}
	found := false

	active, ok, err := r.get(keyActiveOperator)
	if err != nil {
		return state, false, err
	}
	if ok {
		state.Active = active
		found = true
	}

	comparison, ok, err := r.get(keyComparisonOperators)
	if err != nil {
		return state, false, err
	}
	if ok {
		if err := json.Unmarshal([]byte(comparison), &state.Comparison); err != nil {
			return selection.State{}, false, fmt.Errorf("corrupt %s value: %w", keyComparisonOperators, err)
		}
		found = true
	}

	return state, found, nil
}

// Save writes the operator selection. An empty active operator clears its
// key instead of storing an empty string.
func (r *PreferenceRepository) Save(state selection.State) error {
	if state.Active == "" {
		if err := r.delete(keyActiveOperator); err != nil {
			return err
		}
	} else {
		if err := r.set(keyActiveOperator, state.Active); err != nil {
			return err
		}
	}

	comparison, err := json.Marshal(state.Comparison)
	if err != nil {
		return fmt.Errorf("failed to encode comparison operators: %w", err)
	}
	return r.set(keyComparisonOperators, string(comparison))
}

func (r *PreferenceRepository) get(key string) (string, bool, error) {
	query := `SELECT value FROM preferences WHERE key = $1`

	var value string
	err := r.db.QueryRow(query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return value, true, nil
}

func (r *PreferenceRepository) set(key, value string) error {
	query := `
		INSERT INTO preferences (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()
	`
	if _, err := r.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	return nil
}

func (r *PreferenceRepository) delete(key string) error {
	query := `DELETE FROM preferences WHERE key = $1`
	if _, err := r.db.Exec(query, key); err != nil {
		return fmt.Errorf("failed to clear preference %s: %w", key, err)
	}
	return nil
}
