package repository

import "testing"

func TestContainsPatternEscapesWildcards(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"alice", "%alice%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`back\slash`, `%back\\slash%`},
		{"", "%%"},
	}
	for _, tt := range tests {
		if got := containsPattern(tt.query); got != tt.want {
			t.Errorf("containsPattern(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}
