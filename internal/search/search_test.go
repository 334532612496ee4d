package search

import "testing"

func TestHighlight(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
		want  string
	}{
		{
			name:  "simple match",
			text:  "Thoughts on distributed systems",
			query: "distributed",
			want:  "Thoughts on <mark>distributed</mark> systems",
		},
		{
			name:  "case insensitive keeps original casing",
			text:  "Ethics and ethics again",
			query: "ethics",
			want:  "<mark>Ethics</mark> and <mark>ethics</mark> again",
		},
		{
			name:  "regex metacharacters are literal",
			text:  "what is a.b exactly",
			query: "a.b",
			want:  "what is <mark>a.b</mark> exactly",
		},
		{
			name:  "no match",
			text:  "nothing here",
			query: "absent",
			want:  "nothing here",
		},
		{
			name:  "empty query",
			text:  "unchanged",
			query: "  ",
			want:  "unchanged",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Highlight(tt.text, tt.query); got != tt.want {
				t.Errorf("Highlight(%q, %q) = %q, want %q", tt.text, tt.query, got, tt.want)
			}
		})
	}
}

func TestLikePattern(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"plain", "%plain%"},
		{"50%", `%50\%%`},
		{"under_score", `%under\_score%`},
		{`back\slash`, `%back\\slash%`},
	}
	for _, tt := range tests {
		if got := likePattern(tt.query); got != tt.want {
			t.Errorf("likePattern(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestSearchShortQuery(t *testing.T) {
	s := NewService(nil)

	results, err := s.Search(" a ", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results.Posts) != 0 || len(results.Ideas) != 0 || len(results.Threads) != 0 {
		t.Errorf("expected empty results for short query, got %+v", results)
	}
	if results.Posts == nil || results.Ideas == nil || results.Threads == nil {
		t.Error("result slices must be non-nil for JSON encoding")
	}
}
