package election

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ballotd/pkg/db"
)

// InsertBallot records a ballot. The unique index on voter_id turns a
// concurrent double insert into ErrDuplicateVote.
func (s *Store) InsertBallot(ctx context.Context, b Ballot) error {
	query := `
        INSERT INTO ballots (id, voter_id, candidate_id, created_at)
        VALUES ($1, $2, $3, $4)
    `

	if _, err := db.Exec(ctx, s.DB, query, b.ID, b.VoterID, b.CandidateID, b.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateVote
		}
		return fmt.Errorf("insert ballot: %w", err)
	}
	return nil
}

// DeleteBallot removes a ballot by id. Only the compensating rollback in
// the casting path calls this.
func (s *Store) DeleteBallot(ctx context.Context, id uuid.UUID) error {
	if _, err := db.Exec(ctx, s.DB, `DELETE FROM ballots WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete ballot: %w", err)
	}
	return nil
}

// BallotExists reports whether the voter already has a recorded ballot.
func (s *Store) BallotExists(ctx context.Context, voterID uuid.UUID) (bool, error) {
	var exists bool
	if err := db.Get(ctx, s.DB, &exists,
		`SELECT EXISTS (SELECT 1 FROM ballots WHERE voter_id = $1)`, voterID); err != nil {
		return false, fmt.Errorf("check ballot: %w", err)
	}
	return exists, nil
}
