package election

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Voter is the durable record of an eligible voter. HasVoted is monotonic:
// once true it stays true until an explicit administrative reset.
type Voter struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	ElectionCode    string     `json:"election_code" db:"election_code"`
	FirstName       string     `json:"first_name" db:"first_name"`
	LastName        string     `json:"last_name" db:"last_name"`
	HasVoted        bool       `json:"has_voted" db:"has_voted"`
	VotedAt         *time.Time `json:"voted_at" db:"voted_at"`
	VotingStartDate *time.Time `json:"voting_start_date" db:"voting_start_date"`
	IsLoggedIn      bool       `json:"is_logged_in" db:"is_logged_in"`
	LastLogin       *time.Time `json:"last_login" db:"last_login"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// FullName joins the first and last name for display and letters.
func (v Voter) FullName() string {
	if v.LastName == "" {
		return v.FirstName
	}
	return v.FirstName + " " + v.LastName
}

// MatchesName reports whether the supplied name equals the voter's first or
// last name, case-insensitively. Either field matching is sufficient; this is
// a deliberately weak second factor, not an identity check.
func (v Voter) MatchesName(supplied string) bool {
	s := strings.ToLower(strings.TrimSpace(supplied))
	if s == "" {
		return false
	}
	if s == strings.ToLower(v.FirstName) {
		return true
	}
	return v.LastName != "" && s == strings.ToLower(v.LastName)
}

// WindowStart is the start of this voter's personal voting window, defaulting
// to the account creation time when no explicit start was set.
func (v Voter) WindowStart() time.Time {
	if v.VotingStartDate != nil {
		return *v.VotingStartDate
	}
	return v.CreatedAt
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ElectionCodeLength is the canonical credential length for codes generated
// by this service. Imported legacy codes may be shorter or longer.
const ElectionCodeLength = 10

// GenerateElectionCode returns a new random 10-character alphanumeric code.
func GenerateElectionCode() string {
	buf := make([]byte, ElectionCodeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}

// ValidElectionCode reports whether code matches the canonical strict format.
func ValidElectionCode(code string) bool {
	if len(code) != ElectionCodeLength {
		return false
	}
	for _, r := range code {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
