package election

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ballotd/pkg/db"
)

// CreateCandidate adds a ballot option.
func (s *Store) CreateCandidate(ctx context.Context, name, description string, meta map[string]any) (Candidate, error) {
	if meta == nil {
		meta = map[string]any{}
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return Candidate{}, fmt.Errorf("marshal meta: %w", err)
	}

	query := `
        INSERT INTO candidates (id, name, description, meta, created_at, updated_at)
        VALUES ($1, $2, $3, $4::jsonb, now(), now())
        RETURNING id, name, description, meta, created_at, updated_at
    `

	ctxT, cancel := context.WithTimeout(ctx, db.DefaultTimeout)
	defer cancel()

	row := s.DB.QueryRow(ctxT, query, uuid.New(), name, description, string(payload))
	return scanCandidate(row)
}

// UpdateCandidate replaces the candidate's display fields.
func (s *Store) UpdateCandidate(ctx context.Context, id uuid.UUID, name, description string, meta map[string]any) (Candidate, error) {
	if meta == nil {
		meta = map[string]any{}
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return Candidate{}, fmt.Errorf("marshal meta: %w", err)
	}

	query := `
        UPDATE candidates
        SET name = $2, description = $3, meta = $4::jsonb, updated_at = now()
        WHERE id = $1
        RETURNING id, name, description, meta, created_at, updated_at
    `

	ctxT, cancel := context.WithTimeout(ctx, db.DefaultTimeout)
	defer cancel()

	row := s.DB.QueryRow(ctxT, query, id, name, description, string(payload))
	c, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Candidate{}, ErrInvalidCandidate
		}
		return Candidate{}, err
	}
	return c, nil
}

// DeleteCandidate removes a candidate, refusing while ballots reference it.
func (s *Store) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	var inUse bool
	if err := db.Get(ctx, s.DB, &inUse,
		`SELECT EXISTS (SELECT 1 FROM ballots WHERE candidate_id = $1)`, id); err != nil {
		return fmt.Errorf("check ballots: %w", err)
	}
	if inUse {
		return ErrCandidateInUse
	}

	tag, err := db.Exec(ctx, s.DB, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidCandidate
	}
	return nil
}

// CandidateExists reports whether the id references a live candidate.
func (s *Store) CandidateExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := db.Get(ctx, s.DB, &exists,
		`SELECT EXISTS (SELECT 1 FROM candidates WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("check candidate: %w", err)
	}
	return exists, nil
}

// ListCandidates returns all ballot options in creation order.
func (s *Store) ListCandidates(ctx context.Context) ([]Candidate, error) {
	query := `SELECT id, name, description, meta, created_at, updated_at FROM candidates ORDER BY created_at`

	ctxT, cancel := context.WithTimeout(ctx, db.DefaultTimeout)
	defer cancel()

	rows, err := s.DB.Query(ctxT, query)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (Candidate, error) {
	var c Candidate
	var metaRaw []byte
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &metaRaw, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return Candidate{}, err
	}
	if len(metaRaw) > 0 {
		if err := json.Unmarshal(metaRaw, &c.Meta); err != nil {
			return Candidate{}, fmt.Errorf("decode meta: %w", err)
		}
	} else {
		c.Meta = map[string]any{}
	}
	return c, nil
}
