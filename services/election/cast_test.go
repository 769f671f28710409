package election

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func castSetup(t *testing.T) (*memStorage, *Engine, Session, uuid.UUID) {
	t.Helper()
	store := newMemStorage()
	store.addVoter(Voter{ElectionCode: "Ab3dEf7hIj", FirstName: "Jane", LastName: "Doe"})
	candidateID := store.addCandidate()
	engine := newTestEngine(store)

	sess, _, err := engine.Authenticate(context.Background(), "Ab3dEf7hIj", "Jane")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	return store, engine, sess, candidateID
}

func TestCastVote(t *testing.T) {
	store, engine, sess, candidateID := castSetup(t)
	ctx := context.Background()

	ballot, err := engine.CastVote(ctx, sess.Token, candidateID)
	if err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}
	if ballot.CandidateID != candidateID {
		t.Fatalf("ballot candidate = %v, want %v", ballot.CandidateID, candidateID)
	}
	if store.ballotCount() != 1 {
		t.Fatalf("ballot count = %d, want 1", store.ballotCount())
	}

	voter, err := store.VoterByID(ctx, ballot.VoterID)
	if err != nil {
		t.Fatalf("VoterByID() error = %v", err)
	}
	if !voter.HasVoted || voter.VotedAt == nil {
		t.Fatal("voter must be marked as voted with a timestamp")
	}

	// The session dies with the vote.
	if _, _, err := engine.VerifySession(ctx, sess.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("session after vote error = %v, want %v", err, ErrSessionExpired)
	}

	// Re-authentication is refused with the voted rejection.
	if _, _, err := engine.Authenticate(ctx, "Ab3dEf7hIj", "Jane"); !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("re-auth error = %v, want %v", err, ErrAlreadyVoted)
	}
}

func TestCastVoteRejections(t *testing.T) {
	t.Run("expired session", func(t *testing.T) {
		_, engine, _, candidateID := castSetup(t)
		_, err := engine.CastVote(context.Background(), "no-such-token", candidateID)
		if !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("error = %v, want %v", err, ErrSessionExpired)
		}
	})

	t.Run("nil candidate", func(t *testing.T) {
		_, engine, sess, _ := castSetup(t)
		_, err := engine.CastVote(context.Background(), sess.Token, uuid.Nil)
		if !errors.Is(err, ErrInvalidCandidate) {
			t.Fatalf("error = %v, want %v", err, ErrInvalidCandidate)
		}
	})

	t.Run("unknown candidate", func(t *testing.T) {
		_, engine, sess, _ := castSetup(t)
		_, err := engine.CastVote(context.Background(), sess.Token, uuid.New())
		if !errors.Is(err, ErrInvalidCandidate) {
			t.Fatalf("error = %v, want %v", err, ErrInvalidCandidate)
		}
	})

	t.Run("election ended after login", func(t *testing.T) {
		store, engine, sess, candidateID := castSetup(t)
		store.mu.Lock()
		store.settings.Status = StatusEnded
		store.mu.Unlock()

		_, err := engine.CastVote(context.Background(), sess.Token, candidateID)
		if !errors.Is(err, ErrWindowClosed) {
			t.Fatalf("error = %v, want %v", err, ErrWindowClosed)
		}
		if store.ballotCount() != 0 {
			t.Fatal("no ballot may be recorded after the election ended")
		}
	})
}

func TestCastVoteConcurrent(t *testing.T) {
	store, engine, sess, candidateID := castSetup(t)
	ctx := context.Background()

	const attempts = 20
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.CastVote(ctx, sess.Token, candidateID)
		}(i)
	}
	wg.Wait()

	var wins int
	for i, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyVoted),
			errors.Is(err, ErrDuplicateVote),
			errors.Is(err, ErrSessionExpired):
			// Losing outcomes: the race was decided before the session check,
			// at the ballot insert, or at the voted flip.
		default:
			t.Fatalf("attempt %d: unexpected error %v", i, err)
		}
	}

	if wins != 1 {
		t.Fatalf("successful casts = %d, want exactly 1", wins)
	}
	if store.ballotCount() != 1 {
		t.Fatalf("ballot count = %d, want exactly 1", store.ballotCount())
	}
}

func TestCastVoteRollsBackOnMarkFailure(t *testing.T) {
	store, engine, sess, candidateID := castSetup(t)
	ctx := context.Background()

	store.mu.Lock()
	store.markVotedErr = errors.New("connection reset")
	store.mu.Unlock()

	if _, err := engine.CastVote(ctx, sess.Token, candidateID); err == nil {
		t.Fatal("CastVote() should fail when the voted flip fails")
	}
	if store.ballotCount() != 0 {
		t.Fatalf("ballot count = %d after rollback, want 0", store.ballotCount())
	}

	voter, err := store.VoterByElectionCode(ctx, "Ab3dEf7hIj")
	if err != nil {
		t.Fatalf("VoterByElectionCode() error = %v", err)
	}
	if voter.HasVoted {
		t.Fatal("voter must not be marked as voted after a failed cast")
	}

	// After the store recovers the same session can cast successfully.
	store.mu.Lock()
	store.markVotedErr = nil
	store.mu.Unlock()

	if _, err := engine.CastVote(ctx, sess.Token, candidateID); err != nil {
		t.Fatalf("retry CastVote() error = %v", err)
	}
	if store.ballotCount() != 1 {
		t.Fatalf("ballot count = %d after retry, want 1", store.ballotCount())
	}
}

func TestCastVotePublishesEvent(t *testing.T) {
	store := newMemStorage()
	store.addVoter(Voter{ElectionCode: "Ab3dEf7hIj", FirstName: "Jane"})
	candidateID := store.addCandidate()

	var (
		mu       sync.Mutex
		subjects []string
	)
	engine, err := NewEngine(store, DefaultSessionTTL, func(subject string, _ map[string]any) {
		mu.Lock()
		subjects = append(subjects, subject)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	ctx := context.Background()
	sess, _, err := engine.Authenticate(ctx, "Ab3dEf7hIj", "Jane")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if _, err := engine.CastVote(ctx, sess.Token, candidateID); err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(subjects) != 1 || subjects[0] != VoteCastTopic {
		t.Fatalf("published subjects = %v, want [%s]", subjects, VoteCastTopic)
	}
}

func TestNewEngineDefaults(t *testing.T) {
	if _, err := NewEngine(nil, time.Minute, nil); err == nil {
		t.Fatal("NewEngine(nil) should fail")
	}

	e, err := NewEngine(newMemStorage(), 0, nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if e.sessionTTL != DefaultSessionTTL {
		t.Fatalf("sessionTTL = %v, want default %v", e.sessionTTL, DefaultSessionTTL)
	}
}
