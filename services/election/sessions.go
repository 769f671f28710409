package election

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"ballotd/pkg/db"
)

const sessionColumns = `token, voter_id, election_code, expires_at, last_activity, created_at`

// CreateSession issues a fresh session for the voter, replacing any prior
// one so at most one session row exists per voter. The voter's login flags
// are written alongside it.
func (s *Store) CreateSession(ctx context.Context, voter Voter, ttl time.Duration) (Session, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	now := time.Now().UTC()

	if _, err := db.Exec(ctx, s.DB, `DELETE FROM voter_sessions WHERE voter_id = $1`, voter.ID); err != nil {
		return Session{}, fmt.Errorf("clear prior session: %w", err)
	}

	query := `
        INSERT INTO voter_sessions (token, voter_id, election_code, expires_at, last_activity, created_at)
        VALUES ($1, $2, $3, $4, $5, $5)
        RETURNING ` + sessionColumns

	var sess Session
	if err := db.Get(ctx, s.DB, &sess, query, uuid.New().String(), voter.ID, voter.ElectionCode, now.Add(ttl), now); err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}

	if _, err := db.Exec(ctx, s.DB,
		`UPDATE voters SET is_logged_in = true, last_login = $2, updated_at = now() WHERE id = $1`,
		voter.ID, now); err != nil {
		return Session{}, fmt.Errorf("stamp login: %w", err)
	}

	return sess, nil
}

// SessionByToken fetches a session, deleting it lazily when expired and
// touching last_activity otherwise.
func (s *Store) SessionByToken(ctx context.Context, token string) (Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM voter_sessions WHERE token = $1`

	var sess Session
	if err := db.Get(ctx, s.DB, &sess, query, token); err != nil {
		if pgxscan.NotFound(err) {
			return Session{}, ErrSessionExpired
		}
		return Session{}, fmt.Errorf("select session: %w", err)
	}

	if sess.Expired(time.Now()) {
		if err := s.DestroySession(ctx, sess.VoterID); err != nil {
			return Session{}, err
		}
		return Session{}, ErrSessionExpired
	}

	if _, err := db.Exec(ctx, s.DB,
		`UPDATE voter_sessions SET last_activity = now() WHERE token = $1`, token); err != nil {
		return Session{}, fmt.Errorf("touch session: %w", err)
	}
	return sess, nil
}

// DestroySession removes the voter's session and clears the login flag.
// Idempotent: destroying an absent session is not an error.
func (s *Store) DestroySession(ctx context.Context, voterID uuid.UUID) error {
	if _, err := db.Exec(ctx, s.DB, `DELETE FROM voter_sessions WHERE voter_id = $1`, voterID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if _, err := db.Exec(ctx, s.DB,
		`UPDATE voters SET is_logged_in = false, updated_at = now() WHERE id = $1`, voterID); err != nil {
		return fmt.Errorf("clear login flag: %w", err)
	}
	return nil
}
