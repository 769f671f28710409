package election

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is a ballot option managed by administrators.
type Candidate struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Description string         `json:"description" db:"description"`
	Meta        map[string]any `json:"meta" db:"meta"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}
