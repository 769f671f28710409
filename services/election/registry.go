package election

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"ballotd/pkg/db"
)

const voterColumns = `id, election_code, first_name, last_name, has_voted, voted_at,
       voting_start_date, is_logged_in, last_login, created_at, updated_at`

// VoterByElectionCode looks up a voter by the exact code.
func (s *Store) VoterByElectionCode(ctx context.Context, code string) (Voter, error) {
	query := `SELECT ` + voterColumns + ` FROM voters WHERE election_code = $1`

	var v Voter
	if err := db.Get(ctx, s.DB, &v, query, code); err != nil {
		if pgxscan.NotFound(err) {
			return Voter{}, ErrVoterNotFound
		}
		return Voter{}, fmt.Errorf("select voter by code: %w", err)
	}
	return v, nil
}

// VoterByID looks up a voter by id.
func (s *Store) VoterByID(ctx context.Context, id uuid.UUID) (Voter, error) {
	query := `SELECT ` + voterColumns + ` FROM voters WHERE id = $1`

	var v Voter
	if err := db.Get(ctx, s.DB, &v, query, id); err != nil {
		if pgxscan.NotFound(err) {
			return Voter{}, ErrVoterNotFound
		}
		return Voter{}, fmt.Errorf("select voter by id: %w", err)
	}
	return v, nil
}

// MarkVoted flips has_voted and stamps voted_at in one conditional update,
// so only one of two racing callers observes success.
func (s *Store) MarkVoted(ctx context.Context, id uuid.UUID, votedAt time.Time) error {
	query := `
        UPDATE voters
        SET has_voted = true, voted_at = $2, updated_at = now()
        WHERE id = $1 AND has_voted = false
    `

	tag, err := db.Exec(ctx, s.DB, query, id, votedAt)
	if err != nil {
		return fmt.Errorf("mark voted: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// No row updated: distinguish a missing voter from a lost race.
	var exists bool
	if err := db.Get(ctx, s.DB, &exists, `SELECT EXISTS (SELECT 1 FROM voters WHERE id = $1)`, id); err != nil {
		return fmt.Errorf("check voter: %w", err)
	}
	if !exists {
		return ErrVoterNotFound
	}
	return ErrAlreadyVoted
}

// CreateVoter inserts a single roster entry. An empty code gets a generated
// strict-format one; a supplied code must match the canonical format.
func (s *Store) CreateVoter(ctx context.Context, firstName, lastName, code string) (Voter, error) {
	if code == "" {
		code = GenerateElectionCode()
	} else if !ValidElectionCode(code) {
		return Voter{}, fmt.Errorf("election code must be %d alphanumeric characters", ElectionCodeLength)
	}

	query := `
        INSERT INTO voters (id, election_code, first_name, last_name, created_at, updated_at)
        VALUES ($1, $2, $3, $4, now(), now())
        RETURNING ` + voterColumns

	var v Voter
	if err := db.Get(ctx, s.DB, &v, query, uuid.New(), code, firstName, lastName); err != nil {
		if isUniqueViolation(err) {
			return Voter{}, errors.New("election code is already assigned")
		}
		return Voter{}, fmt.Errorf("insert voter: %w", err)
	}
	return v, nil
}

// UpdateVoter changes a voter's names and optional window start. Voting
// status is never touched here.
func (s *Store) UpdateVoter(ctx context.Context, id uuid.UUID, firstName, lastName string, votingStart *time.Time) (Voter, error) {
	query := `
        UPDATE voters
        SET first_name = $2, last_name = $3, voting_start_date = $4, updated_at = now()
        WHERE id = $1
        RETURNING ` + voterColumns

	var v Voter
	if err := db.Get(ctx, s.DB, &v, query, id, firstName, lastName, votingStart); err != nil {
		if pgxscan.NotFound(err) {
			return Voter{}, ErrVoterNotFound
		}
		return Voter{}, fmt.Errorf("update voter: %w", err)
	}
	return v, nil
}

// DeleteVoter removes a voter; its session and ballot go with it via the
// storage-level cascades.
func (s *Store) DeleteVoter(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Exec(ctx, s.DB, `DELETE FROM voters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete voter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVoterNotFound
	}
	return nil
}

// ListVoters returns the roster, optionally filtered by voted status.
func (s *Store) ListVoters(ctx context.Context, voted *bool) ([]Voter, error) {
	query := `SELECT ` + voterColumns + ` FROM voters`
	args := []any{}
	if voted != nil {
		query += ` WHERE has_voted = $1`
		args = append(args, *voted)
	}
	query += ` ORDER BY created_at`

	var voters []Voter
	if err := db.Select(ctx, s.DB, &voters, query, args...); err != nil {
		return nil, fmt.Errorf("list voters: %w", err)
	}
	return voters, nil
}

// UpsertRoster imports rows keyed by election code. Names are refreshed on
// conflict; has_voted only ever moves false to true, and only when the row
// carries explicit voted evidence, so an import can never re-enable a voter.
func (s *Store) UpsertRoster(ctx context.Context, rows []RosterRow) (int, error) {
	query := `
        INSERT INTO voters (id, election_code, first_name, last_name, has_voted, voted_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, now(), now())
        ON CONFLICT (election_code) DO UPDATE SET
            first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            has_voted = voters.has_voted OR EXCLUDED.has_voted,
            voted_at = COALESCE(voters.voted_at, EXCLUDED.voted_at),
            updated_at = now()
    `

	count := 0
	for _, row := range rows {
		var votedAt *time.Time
		if row.HasVoted {
			at := time.Now().UTC()
			if row.VotedAt != nil {
				at = *row.VotedAt
			}
			votedAt = &at
		}
		if _, err := db.Exec(ctx, s.DB, query, uuid.New(), row.ElectionCode, row.FirstName, row.LastName, row.HasVoted, votedAt); err != nil {
			return count, fmt.Errorf("upsert voter %q: %w", row.ElectionCode, err)
		}
		count++
	}

	s.PublishJSON(VoterUpsertedTopic, map[string]any{"count": count})
	return count, nil
}

// RegenerateCodes re-stamps every voter with a fresh strict-format code and
// a new personal window start, effectively restarting every window.
func (s *Store) RegenerateCodes(ctx context.Context) (int, error) {
	var ids []uuid.UUID
	if err := db.Select(ctx, s.DB, &ids, `SELECT id FROM voters`); err != nil {
		return 0, fmt.Errorf("list voter ids: %w", err)
	}

	query := `
        UPDATE voters
        SET election_code = $2, voting_start_date = now(), updated_at = now()
        WHERE id = $1
    `

	count := 0
	for _, id := range ids {
		for {
			_, err := db.Exec(ctx, s.DB, query, id, GenerateElectionCode())
			if err == nil {
				break
			}
			if isUniqueViolation(err) {
				continue // astronomically unlikely collision, draw again
			}
			return count, fmt.Errorf("regenerate code: %w", err)
		}
		count++
	}
	return count, nil
}
