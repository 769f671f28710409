package election

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"ballotd/pkg/db"
)

// Settings returns the singleton election configuration.
func (s *Store) Settings(ctx context.Context) (ElectionSettings, error) {
	query := `
        SELECT status, voting_period_days, start_date, end_date, updated_at
        FROM election_settings
        WHERE id = 1
    `

	var settings ElectionSettings
	if err := db.Get(ctx, s.DB, &settings, query); err != nil {
		return ElectionSettings{}, fmt.Errorf("select settings: %w", err)
	}
	return settings, nil
}

// StartElection activates the election with the chosen period and stamps a
// fresh window start on every voter who has not yet voted.
func (s *Store) StartElection(ctx context.Context, periodDays int) (ElectionSettings, error) {
	if periodDays <= 0 {
		periodDays = DefaultVotingPeriodDays
	}
	now := time.Now().UTC()

	query := `
        UPDATE election_settings
        SET status = $1, voting_period_days = $2, start_date = $3, end_date = NULL, updated_at = now()
        WHERE id = 1
        RETURNING status, voting_period_days, start_date, end_date, updated_at
    `

	var settings ElectionSettings
	if err := db.Get(ctx, s.DB, &settings, query, StatusActive, periodDays, now); err != nil {
		return ElectionSettings{}, fmt.Errorf("start election: %w", err)
	}

	if _, err := db.Exec(ctx, s.DB,
		`UPDATE voters SET voting_start_date = $1, updated_at = now() WHERE has_voted = false`, now); err != nil {
		return ElectionSettings{}, fmt.Errorf("stamp voter windows: %w", err)
	}

	s.PublishJSON(ElectionStartedTopic, map[string]any{
		"started_at":         now,
		"voting_period_days": periodDays,
	})
	return settings, nil
}

// EndElection hard-closes voting regardless of per-voter windows.
func (s *Store) EndElection(ctx context.Context) (ElectionSettings, error) {
	now := time.Now().UTC()

	query := `
        UPDATE election_settings
        SET status = $1, end_date = $2, updated_at = now()
        WHERE id = 1
        RETURNING status, voting_period_days, start_date, end_date, updated_at
    `

	var settings ElectionSettings
	if err := db.Get(ctx, s.DB, &settings, query, StatusEnded, now); err != nil {
		return ElectionSettings{}, fmt.Errorf("end election: %w", err)
	}

	s.PublishJSON(ElectionEndedTopic, map[string]any{"ended_at": now})
	return settings, nil
}

// ExtendVotingPeriod raises the configured period. Shrinking a window that
// voters were already promised is not allowed.
func (s *Store) ExtendVotingPeriod(ctx context.Context, periodDays int) (ElectionSettings, error) {
	query := `
        UPDATE election_settings
        SET voting_period_days = $1, updated_at = now()
        WHERE id = 1 AND voting_period_days < $1
        RETURNING status, voting_period_days, start_date, end_date, updated_at
    `

	var settings ElectionSettings
	if err := db.Get(ctx, s.DB, &settings, query, periodDays); err != nil {
		if pgxscan.NotFound(err) {
			return ElectionSettings{}, ErrPeriodNotExtended
		}
		return ElectionSettings{}, fmt.Errorf("extend period: %w", err)
	}
	return settings, nil
}

// ResetElection wipes all ballots and sessions and clears every voter's
// voted status. Administrative, exclusive, out-of-band: never run this
// while voting is open.
func (s *Store) ResetElection(ctx context.Context) error {
	return db.WithTimeout(ctx, 30*time.Second, func(ctx context.Context) error {
		if _, err := s.DB.Exec(ctx, `DELETE FROM ballots`); err != nil {
			return fmt.Errorf("clear ballots: %w", err)
		}
		if _, err := s.DB.Exec(ctx, `DELETE FROM voter_sessions`); err != nil {
			return fmt.Errorf("clear sessions: %w", err)
		}
		if _, err := s.DB.Exec(ctx,
			`UPDATE voters SET has_voted = false, voted_at = NULL, is_logged_in = false, updated_at = now()`); err != nil {
			return fmt.Errorf("reset voters: %w", err)
		}
		if _, err := s.DB.Exec(ctx,
			`UPDATE election_settings SET status = $1, start_date = NULL, end_date = NULL, updated_at = now() WHERE id = 1`,
			StatusNotStarted); err != nil {
			return fmt.Errorf("reset settings: %w", err)
		}
		return nil
	})
}
