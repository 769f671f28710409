package election

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage is the durable-store surface the voting engine relies on. Each call
// is an independent blocking I/O operation; the engine never assumes two
// calls execute inside one transaction. Correctness rests on MarkVoted being
// a conditional update and InsertBallot enforcing a per-voter uniqueness
// constraint.
type Storage interface {
	// VoterByElectionCode returns the voter holding the exact code, or
	// ErrVoterNotFound. No normalization is applied beyond the caller's trim.
	VoterByElectionCode(ctx context.Context, code string) (Voter, error)
	// VoterByID returns the voter, or ErrVoterNotFound.
	VoterByID(ctx context.Context, id uuid.UUID) (Voter, error)
	// MarkVoted flips has_voted false to true and stamps voted_at as one
	// conditional update. It returns ErrAlreadyVoted when the flag was
	// already set, so two racing callers cannot both succeed.
	MarkVoted(ctx context.Context, id uuid.UUID, votedAt time.Time) error

	// CreateSession replaces any existing session for the voter with a fresh
	// one expiring after ttl, and pairs the voter's login flags with it.
	CreateSession(ctx context.Context, voter Voter, ttl time.Duration) (Session, error)
	// SessionByToken returns the live session for the token, touching its
	// last-activity stamp. Absent or expired sessions yield ErrSessionExpired;
	// an expired row is deleted on the way out.
	SessionByToken(ctx context.Context, token string) (Session, error)
	// DestroySession removes the voter's session if one exists. Idempotent.
	DestroySession(ctx context.Context, voterID uuid.UUID) error

	// InsertBallot records a ballot, returning ErrDuplicateVote when the
	// voter already has one.
	InsertBallot(ctx context.Context, b Ballot) error
	// DeleteBallot removes a ballot by id; used only by the compensating
	// rollback in the casting path.
	DeleteBallot(ctx context.Context, id uuid.UUID) error
	// BallotExists reports whether any ballot is recorded for the voter.
	BallotExists(ctx context.Context, voterID uuid.UUID) (bool, error)

	// CandidateExists reports whether the candidate id references a live
	// candidate.
	CandidateExists(ctx context.Context, id uuid.UUID) (bool, error)
	// Settings returns the current singleton election settings.
	Settings(ctx context.Context) (ElectionSettings, error)
}
