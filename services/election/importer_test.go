package election

import (
	"strings"
	"testing"
	"time"
)

func TestParseRosterSimple(t *testing.T) {
	input := strings.Join([]string{
		"election_code,first_name,last_name",
		"Ab3dEf7hIj,Jane,Doe",
		"legacy-42,Sam,",
		",Missing,Code",
		"Kl8mNo2pQr,,NoFirst",
	}, "\n")

	rows, skipped, err := ParseRoster(strings.NewReader(input), FormatSimple)
	if err != nil {
		t.Fatalf("ParseRoster() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if len(skipped) != 2 {
		t.Fatalf("skipped = %v, want 2 entries", skipped)
	}

	if rows[0].ElectionCode != "Ab3dEf7hIj" || rows[0].FirstName != "Jane" || rows[0].LastName != "Doe" {
		t.Fatalf("row 0 = %+v", rows[0])
	}
	// Legacy codes from older exports are imported verbatim.
	if rows[1].ElectionCode != "legacy-42" || rows[1].LastName != "" {
		t.Fatalf("row 1 = %+v", rows[1])
	}
	for _, row := range rows {
		if row.HasVoted || row.VotedAt != nil {
			t.Fatalf("simple rows must import as not-voted, got %+v", row)
		}
	}

	for i, want := range []string{"line 4", "line 5"} {
		if !strings.HasPrefix(skipped[i], want) {
			t.Fatalf("skipped[%d] = %q, want prefix %q", i, skipped[i], want)
		}
	}
}

func TestParseRosterDetailed(t *testing.T) {
	input := strings.Join([]string{
		"election_code,first_name,last_name,voted,voted_at",
		"Ab3dEf7hIj,Jane,Doe,yes,2026-05-03T10:00:00Z",
		"Kl8mNo2pQr,Sam,Roe,no,",
		"Uv4wXy6zAb,Kim,Lee,maybe,",
		"Cd1eFg5hIj,Pat,Moe,true,not-a-time",
	}, "\n")

	rows, skipped, err := ParseRoster(strings.NewReader(input), FormatDetailed)
	if err != nil {
		t.Fatalf("ParseRoster() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2: %+v", len(rows), rows)
	}
	if len(skipped) != 2 {
		t.Fatalf("skipped = %v, want 2 entries", skipped)
	}

	if !rows[0].HasVoted || rows[0].VotedAt == nil {
		t.Fatalf("row 0 should carry voted evidence, got %+v", rows[0])
	}
	want := time.Date(2026, 5, 3, 10, 0, 0, 0, time.UTC)
	if !rows[0].VotedAt.Equal(want) {
		t.Fatalf("voted_at = %v, want %v", rows[0].VotedAt, want)
	}
	if rows[1].HasVoted {
		t.Fatalf("row 1 should not be voted, got %+v", rows[1])
	}
}

func TestParseRosterVotedColumnIgnoredInSimpleFormat(t *testing.T) {
	input := strings.Join([]string{
		"election_code,first_name,voted",
		"Ab3dEf7hIj,Jane,yes",
	}, "\n")

	rows, _, err := ParseRoster(strings.NewReader(input), FormatSimple)
	if err != nil {
		t.Fatalf("ParseRoster() error = %v", err)
	}
	if len(rows) != 1 || rows[0].HasVoted {
		t.Fatalf("simple format must never trust a voted column, got %+v", rows)
	}
}

func TestParseRosterBadHeader(t *testing.T) {
	for _, input := range []string{
		"first_name,last_name\nJane,Doe",
		"election_code,last_name\nAb3dEf7hIj,Doe",
		"",
	} {
		if _, _, err := ParseRoster(strings.NewReader(input), FormatSimple); err == nil {
			t.Fatalf("ParseRoster(%q) should fail", input)
		}
	}
}
