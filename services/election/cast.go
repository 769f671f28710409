package election

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CastVote records a ballot for the session's voter exactly once.
//
// Everything the authentication flow already checked is re-verified here:
// tokens can be held and replayed minutes later, and the election state may
// have changed in between. The ballot insert happens before the voter-status
// flip so that MarkVoted's conditional update is the single linearization
// point; a caller that loses that race deletes its own ballot again. The
// per-voter uniqueness constraint behind InsertBallot remains the last line
// of defense either way.
func (e *Engine) CastVote(ctx context.Context, token string, candidateID uuid.UUID) (Ballot, error) {
	sess, err := e.store.SessionByToken(ctx, token)
	if err != nil {
		return Ballot{}, err
	}

	voter, err := e.store.VoterByID(ctx, sess.VoterID)
	if err != nil {
		return Ballot{}, err
	}
	if voter.HasVoted {
		// A parallel request for the same voter already won.
		return Ballot{}, ErrAlreadyVoted
	}

	settings, err := e.store.Settings(ctx)
	if err != nil {
		return Ballot{}, fmt.Errorf("load settings: %w", err)
	}
	now := e.now()
	if open, reason := IsVotingOpen(voter, settings, now); !open {
		return Ballot{}, fmt.Errorf("%w: %s", ErrWindowClosed, reason)
	}

	if candidateID == uuid.Nil {
		return Ballot{}, ErrInvalidCandidate
	}
	exists, err := e.store.CandidateExists(ctx, candidateID)
	if err != nil {
		return Ballot{}, fmt.Errorf("check candidate: %w", err)
	}
	if !exists {
		return Ballot{}, ErrInvalidCandidate
	}

	// Defensive: a ballot without has_voted set would mean an earlier cast
	// was interrupted between insert and flip. Should not occur.
	if voted, err := e.store.BallotExists(ctx, voter.ID); err != nil {
		return Ballot{}, fmt.Errorf("check existing ballot: %w", err)
	} else if voted {
		log.Warn().Str("voter_id", voter.ID.String()).Msg("ballot exists for voter not marked as voted")
		return Ballot{}, ErrDuplicateVote
	}

	ballot := Ballot{
		ID:          uuid.New(),
		VoterID:     voter.ID,
		CandidateID: candidateID,
		CreatedAt:   now,
	}
	if err := e.store.InsertBallot(ctx, ballot); err != nil {
		return Ballot{}, err
	}

	if err := e.store.MarkVoted(ctx, voter.ID, now); err != nil {
		// Lost the race or the store failed after the insert: take the
		// ballot back out so the voter is not left with an orphaned ballot
		// and has_voted still false.
		if delErr := e.store.DeleteBallot(ctx, ballot.ID); delErr != nil {
			log.Error().Err(delErr).
				Str("ballot_id", ballot.ID.String()).
				Str("voter_id", voter.ID.String()).
				Msg("rollback of ballot failed; voter status and ballot disagree")
		}
		if errors.Is(err, ErrAlreadyVoted) || errors.Is(err, ErrVoterNotFound) {
			return Ballot{}, err
		}
		return Ballot{}, fmt.Errorf("mark voted: %w", err)
	}

	// The voter can never re-authenticate after a successful vote.
	if err := e.store.DestroySession(ctx, voter.ID); err != nil {
		log.Warn().Err(err).Str("voter_id", voter.ID.String()).Msg("destroy session after vote")
	}

	e.publishJSON(VoteCastTopic, map[string]any{
		"ballot_id":    ballot.ID,
		"voter_id":     voter.ID,
		"candidate_id": candidateID,
		"cast_at":      now,
	})

	log.Info().
		Str("voter_id", voter.ID.String()).
		Str("candidate_id", candidateID.String()).
		Msg("ballot recorded")

	return ballot, nil
}
