package election

import "testing"

func TestTurnout(t *testing.T) {
	tests := []struct {
		name  string
		voted int
		total int
		want  float64
	}{
		{name: "no voters", voted: 0, total: 0, want: 0},
		{name: "nobody voted", voted: 0, total: 50, want: 0},
		{name: "everyone voted", voted: 50, total: 50, want: 100},
		{name: "rounded to two decimals", voted: 1, total: 3, want: 33.33},
		{name: "rounds up", voted: 2, total: 3, want: 66.67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Turnout(tt.voted, tt.total); got != tt.want {
				t.Fatalf("Turnout(%d, %d) = %v, want %v", tt.voted, tt.total, got, tt.want)
			}
		})
	}
}
