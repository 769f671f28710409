package election

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"ballotd/pkg/bus"
)

// Store holds external dependencies required by the election layer: the
// authoritative Postgres pool and an optional NATS bus for mirror events.
type Store struct {
	DB  *pgxpool.Pool
	Bus *bus.Bus
}

var _ Storage = (*Store)(nil)

// NewStore validates the required dependencies.
func NewStore(pool *pgxpool.Pool, b *bus.Bus) (*Store, error) {
	if pool == nil {
		return nil, errors.New("db pool is required")
	}
	return &Store{DB: pool, Bus: b}, nil
}

// PublishJSON sends a mirror event and logs on failure. Callers treat the
// bus as a side channel; errors never propagate.
func (s *Store) PublishJSON(subject string, payload map[string]any) {
	if s.Bus == nil || subject == "" {
		return
	}
	if err := s.Bus.Publish(context.Background(), subject, payload); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("publish mirror event")
	}
}

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
