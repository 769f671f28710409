package election

import (
	"errors"
	"time"
)

// Event subjects published by the engine. Publishing is best-effort; a
// failed or absent publisher never fails the operation that triggered it.
const (
	VoteCastTopic        = "ballotd.votes.cast"
	VoterUpsertedTopic   = "ballotd.voters.upserted"
	ElectionStartedTopic = "ballotd.election.started"
	ElectionEndedTopic   = "ballotd.election.ended"
)

// Publisher mirrors events to external roster consumers.
type Publisher func(subject string, payload map[string]any)

// Engine implements the voting-integrity core: authentication gates, the
// vote casting critical section, and the window checks shared by both.
type Engine struct {
	store      Storage
	sessionTTL time.Duration
	publish    Publisher
	now        func() time.Time
}

// NewEngine wires the engine against a durable store. publish may be nil.
func NewEngine(store Storage, sessionTTL time.Duration, publish Publisher) (*Engine, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Engine{
		store:      store,
		sessionTTL: sessionTTL,
		publish:    publish,
		now:        time.Now,
	}, nil
}

func (e *Engine) publishJSON(subject string, payload map[string]any) {
	if e.publish == nil || subject == "" {
		return
	}
	e.publish(subject, payload)
}
