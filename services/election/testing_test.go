package election

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStorage is an in-memory Storage used by the engine tests. It mirrors
// the guarantees the Postgres store gives the engine: MarkVoted is a
// conditional flip under the mutex, and InsertBallot enforces at most one
// ballot per voter.
type memStorage struct {
	mu         sync.Mutex
	voters     map[uuid.UUID]Voter
	byCode     map[string]uuid.UUID
	sessions   map[string]Session
	ballots    map[uuid.UUID]Ballot
	candidates map[uuid.UUID]bool
	settings   ElectionSettings

	// markVotedErr, when set, is returned by MarkVoted after the ballot
	// insert to exercise the rollback path.
	markVotedErr error
}

func newMemStorage() *memStorage {
	return &memStorage{
		voters:     make(map[uuid.UUID]Voter),
		byCode:     make(map[string]uuid.UUID),
		sessions:   make(map[string]Session),
		ballots:    make(map[uuid.UUID]Ballot),
		candidates: make(map[uuid.UUID]bool),
		settings: ElectionSettings{
			Status:           StatusActive,
			VotingPeriodDays: DefaultVotingPeriodDays,
		},
	}
}

func (m *memStorage) addVoter(v Voter) Voter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	m.voters[v.ID] = v
	m.byCode[v.ElectionCode] = v.ID
	return v
}

func (m *memStorage) addCandidate() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.candidates[id] = true
	return id
}

func (m *memStorage) ballotCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ballots)
}

func (m *memStorage) VoterByElectionCode(_ context.Context, code string) (Voter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byCode[code]
	if !ok {
		return Voter{}, ErrVoterNotFound
	}
	return m.voters[id], nil
}

func (m *memStorage) VoterByID(_ context.Context, id uuid.UUID) (Voter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.voters[id]
	if !ok {
		return Voter{}, ErrVoterNotFound
	}
	return v, nil
}

func (m *memStorage) MarkVoted(_ context.Context, id uuid.UUID, votedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markVotedErr != nil {
		return m.markVotedErr
	}
	v, ok := m.voters[id]
	if !ok {
		return ErrVoterNotFound
	}
	if v.HasVoted {
		return ErrAlreadyVoted
	}
	v.HasVoted = true
	v.VotedAt = &votedAt
	m.voters[id] = v
	return nil
}

func (m *memStorage) CreateSession(_ context.Context, voter Voter, ttl time.Duration) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, sess := range m.sessions {
		if sess.VoterID == voter.ID {
			delete(m.sessions, token)
		}
	}
	now := time.Now()
	sess := Session{
		Token:        uuid.New().String(),
		VoterID:      voter.ID,
		ElectionCode: voter.ElectionCode,
		ExpiresAt:    now.Add(ttl),
		LastActivity: now,
		CreatedAt:    now,
	}
	m.sessions[sess.Token] = sess
	return sess, nil
}

func (m *memStorage) SessionByToken(_ context.Context, token string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[token]
	if !ok {
		return Session{}, ErrSessionExpired
	}
	if sess.Expired(time.Now()) {
		delete(m.sessions, token)
		return Session{}, ErrSessionExpired
	}
	sess.LastActivity = time.Now()
	m.sessions[token] = sess
	return sess, nil
}

func (m *memStorage) DestroySession(_ context.Context, voterID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, sess := range m.sessions {
		if sess.VoterID == voterID {
			delete(m.sessions, token)
		}
	}
	return nil
}

func (m *memStorage) InsertBallot(_ context.Context, b Ballot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.ballots {
		if existing.VoterID == b.VoterID {
			return ErrDuplicateVote
		}
	}
	m.ballots[b.ID] = b
	return nil
}

func (m *memStorage) DeleteBallot(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ballots, id)
	return nil
}

func (m *memStorage) BallotExists(_ context.Context, voterID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.ballots {
		if b.VoterID == voterID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStorage) CandidateExists(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.candidates[id], nil
}

func (m *memStorage) Settings(_ context.Context) (ElectionSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings, nil
}

var _ Storage = (*memStorage)(nil)

func newTestEngine(store *memStorage) *Engine {
	e, err := NewEngine(store, DefaultSessionTTL, nil)
	if err != nil {
		panic(err)
	}
	return e
}
