package election

import (
	"strings"
	"testing"
	"time"
)

func TestMatchesName(t *testing.T) {
	voter := Voter{FirstName: "Jane", LastName: "Doe"}

	tests := []struct {
		name     string
		supplied string
		want     bool
	}{
		{name: "first name exact", supplied: "Jane", want: true},
		{name: "last name exact", supplied: "Doe", want: true},
		{name: "case insensitive", supplied: "jAnE", want: true},
		{name: "surrounding whitespace", supplied: "  doe  ", want: true},
		{name: "partial first name", supplied: "Jan", want: false},
		{name: "full name", supplied: "Jane Doe", want: false},
		{name: "empty", supplied: "", want: false},
		{name: "whitespace only", supplied: "   ", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := voter.MatchesName(tt.supplied); got != tt.want {
				t.Fatalf("MatchesName(%q) = %v, want %v", tt.supplied, got, tt.want)
			}
		})
	}
}

func TestMatchesNameNoLastName(t *testing.T) {
	voter := Voter{FirstName: "Cher"}
	if !voter.MatchesName("cher") {
		t.Fatal("first name should match")
	}
	if voter.MatchesName("") {
		t.Fatal("empty supplied name must never match an empty last name")
	}
}

func TestFullName(t *testing.T) {
	if got := (Voter{FirstName: "Jane", LastName: "Doe"}).FullName(); got != "Jane Doe" {
		t.Fatalf("FullName() = %q", got)
	}
	if got := (Voter{FirstName: "Cher"}).FullName(); got != "Cher" {
		t.Fatalf("FullName() without last name = %q", got)
	}
}

func TestWindowStart(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	explicit := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	v := Voter{CreatedAt: created}
	if got := v.WindowStart(); !got.Equal(created) {
		t.Fatalf("WindowStart() = %v, want creation time", got)
	}

	v.VotingStartDate = &explicit
	if got := v.WindowStart(); !got.Equal(explicit) {
		t.Fatalf("WindowStart() = %v, want explicit start", got)
	}
}

func TestGenerateElectionCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenerateElectionCode()
		if len(code) != ElectionCodeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), ElectionCodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		if seen[code] {
			t.Fatalf("duplicate code %q in 100 draws", code)
		}
		seen[code] = true
	}
}

func TestValidElectionCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"Ab3dEf7hIj", true},
		{"0123456789", true},
		{"short", false},
		{"muchtoolongcode", false},
		{"Ab3dEf7hI!", false},
		{"Ab3dEf7hI ", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidElectionCode(tt.code); got != tt.want {
			t.Fatalf("ValidElectionCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
