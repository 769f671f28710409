package election

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

// RosterRow is the canonical import shape every source format is resolved
// into before it touches the registry. Field-presence quirks of the source
// formats stay inside this file.
type RosterRow struct {
	ElectionCode string     `json:"election_code"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	HasVoted     bool       `json:"has_voted"`
	VotedAt      *time.Time `json:"voted_at"`
}

// RosterFormat selects how much a source row is trusted to say.
type RosterFormat int

const (
	// FormatSimple is the CSV upload shape: election_code, first_name,
	// last_name. It cannot encode vote status; rows always import as
	// not-voted.
	FormatSimple RosterFormat = iota
	// FormatDetailed is the spreadsheet-sync shape, which may additionally
	// carry a voted column and a voted_at timestamp.
	FormatDetailed
)

// importRow is the parse-time variant; canonical() resolves it into a
// RosterRow or rejects it.
type importRow interface {
	canonical() (RosterRow, error)
}

type simpleNameRow struct {
	code, first, last string
}

func (r simpleNameRow) canonical() (RosterRow, error) {
	if r.code == "" {
		return RosterRow{}, fmt.Errorf("missing election_code")
	}
	if r.first == "" {
		return RosterRow{}, fmt.Errorf("missing first_name")
	}
	return RosterRow{ElectionCode: r.code, FirstName: r.first, LastName: r.last}, nil
}

type detailedRow struct {
	simpleNameRow
	voted   string
	votedAt string
}

func (r detailedRow) canonical() (RosterRow, error) {
	row, err := r.simpleNameRow.canonical()
	if err != nil {
		return RosterRow{}, err
	}

	switch strings.ToLower(r.voted) {
	case "", "false", "no", "0":
	case "true", "yes", "1":
		row.HasVoted = true
		if r.votedAt != "" {
			at, err := time.Parse(time.RFC3339, r.votedAt)
			if err != nil {
				return RosterRow{}, fmt.Errorf("invalid voted_at %q", r.votedAt)
			}
			row.VotedAt = &at
		}
	default:
		return RosterRow{}, fmt.Errorf("invalid voted value %q", r.voted)
	}
	return row, nil
}

// ParseRoster reads a CSV document into canonical roster rows. The first
// record is a header naming at least election_code and first_name. Rows
// failing validation are skipped and reported; the caller decides whether a
// partially rejected import is acceptable.
func ParseRoster(r io.Reader, format RosterFormat) ([]RosterRow, []string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["election_code"]; !ok {
		return nil, nil, fmt.Errorf("header is missing election_code")
	}
	if _, ok := cols["first_name"]; !ok {
		return nil, nil, fmt.Errorf("header is missing first_name")
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var (
		rows    []RosterRow
		skipped []string
		line    = 1
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		base := simpleNameRow{
			code:  field(record, "election_code"),
			first: field(record, "first_name"),
			last:  field(record, "last_name"),
		}

		var parsed importRow = base
		if format == FormatDetailed {
			parsed = detailedRow{
				simpleNameRow: base,
				voted:         field(record, "voted"),
				votedAt:       field(record, "voted_at"),
			}
		}

		row, err := parsed.canonical()
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		rows = append(rows, row)
	}

	return rows, skipped, nil
}
