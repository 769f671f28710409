package election

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Authenticate validates an election code plus name and issues a session.
// The gates run in a fixed order and the first failure short-circuits:
// input presence, code lookup, voted status, voting window, name match.
// Each rejection kind is distinct so support staff can tell a wrong code
// from an exhausted window during a call.
func (e *Engine) Authenticate(ctx context.Context, electionCode, name string) (Session, Voter, error) {
	code := strings.TrimSpace(electionCode)
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return Session{}, Voter{}, ErrMissingCredentials
	}

	voter, err := e.store.VoterByElectionCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrVoterNotFound) {
			return Session{}, Voter{}, ErrInvalidCode
		}
		return Session{}, Voter{}, fmt.Errorf("look up voter: %w", err)
	}

	if voter.HasVoted {
		return Session{}, Voter{}, ErrAlreadyVoted
	}

	settings, err := e.store.Settings(ctx)
	if err != nil {
		return Session{}, Voter{}, fmt.Errorf("load settings: %w", err)
	}
	if open, reason := IsVotingOpen(voter, settings, e.now()); !open {
		return Session{}, Voter{}, fmt.Errorf("%w: %s", ErrWindowClosed, reason)
	}

	if !voter.MatchesName(name) {
		return Session{}, Voter{}, ErrNameMismatch
	}

	sess, err := e.store.CreateSession(ctx, voter, e.sessionTTL)
	if err != nil {
		return Session{}, Voter{}, fmt.Errorf("create session: %w", err)
	}

	log.Info().
		Str("voter_id", voter.ID.String()).
		Time("expires_at", sess.ExpiresAt).
		Msg("voter authenticated")

	return sess, voter, nil
}

// VerifySession resolves a session token to its voter, refreshing the
// session's activity stamp. Used by the ballot screen to keep a logged-in
// voter's view alive; it fails closed on any store error.
func (e *Engine) VerifySession(ctx context.Context, token string) (Session, Voter, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, Voter{}, ErrSessionExpired
	}

	sess, err := e.store.SessionByToken(ctx, token)
	if err != nil {
		return Session{}, Voter{}, err
	}

	voter, err := e.store.VoterByID(ctx, sess.VoterID)
	if err != nil {
		return Session{}, Voter{}, err
	}

	return sess, voter, nil
}

// Logout destroys the session identified by the token. Unknown or expired
// tokens are not an error.
func (e *Engine) Logout(ctx context.Context, token string) error {
	sess, err := e.store.SessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return nil
		}
		return err
	}
	return e.store.DestroySession(ctx, sess.VoterID)
}
