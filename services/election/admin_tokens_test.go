package election

import (
	"testing"
	"time"
)

func TestAdminTokenStore(t *testing.T) {
	ts := newAdminTokenStore(time.Hour)

	token := ts.issue()
	if token == "" {
		t.Fatal("issue() returned an empty token")
	}
	if !ts.valid(token) {
		t.Fatal("freshly issued token should validate")
	}
	if ts.valid("no-such-token") {
		t.Fatal("unknown token must not validate")
	}

	other := ts.issue()
	if other == token {
		t.Fatal("tokens must be unique")
	}
	if !ts.valid(token) || !ts.valid(other) {
		t.Fatal("multiple admin tokens may be live at once")
	}
}

func TestAdminTokenStoreExpiry(t *testing.T) {
	ts := newAdminTokenStore(time.Hour)
	token := ts.issue()

	// Force the deadline into the past.
	ts.mu.Lock()
	ts.tokens[token] = time.Now().Add(-time.Second)
	ts.mu.Unlock()

	if ts.valid(token) {
		t.Fatal("expired token must not validate")
	}
	// The expired entry is dropped on the failed check.
	ts.mu.Lock()
	_, still := ts.tokens[token]
	ts.mu.Unlock()
	if still {
		t.Fatal("expired token should be removed from the store")
	}
}

func TestAdminTokenStoreDefaultTTL(t *testing.T) {
	ts := newAdminTokenStore(0)
	if ts.ttl != defaultAdminTokenTTL {
		t.Fatalf("ttl = %v, want default %v", ts.ttl, defaultAdminTokenTTL)
	}
}
