package election

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultAdminTokenTTL = 2 * time.Hour

// adminTokenStore tracks tokens issued against the shared administrative
// credential. This is deliberately a much looser mechanism than the voter
// session store: admin tokens live in memory, are lost on restart, and
// protect dashboard access, not ballot integrity.
type adminTokenStore struct {
	ttl    time.Duration
	mu     sync.Mutex
	tokens map[string]time.Time
}

func newAdminTokenStore(ttl time.Duration) *adminTokenStore {
	if ttl <= 0 {
		ttl = defaultAdminTokenTTL
	}
	return &adminTokenStore{
		ttl:    ttl,
		tokens: make(map[string]time.Time),
	}
}

func (ts *adminTokenStore) issue() string {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := time.Now()
	for key, expires := range ts.tokens {
		if now.After(expires) {
			delete(ts.tokens, key)
		}
	}

	token := uuid.New().String()
	ts.tokens[token] = now.Add(ts.ttl)
	return token
}

func (ts *adminTokenStore) valid(token string) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	expires, ok := ts.tokens[token]
	if !ok {
		return false
	}
	if time.Now().After(expires) {
		delete(ts.tokens, token)
		return false
	}
	return true
}
