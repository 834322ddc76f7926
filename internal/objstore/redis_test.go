package objstore

import "testing"

// Метасимволы glob в префиксе (workspace id в пути объекта) должны
// экранироваться, иначе SCAN MATCH захватит чужие ключи.
func TestGlobEscaperQuotesMetacharacters(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"metrics/workspace=acme/", "metrics/workspace=acme/"},
		{"metrics/workspace=a*b/", `metrics/workspace=a\*b/`},
		{"metrics/workspace=a?b/", `metrics/workspace=a\?b/`},
		{"metrics/workspace=a[1]/", `metrics/workspace=a\[1\]/`},
		{`metrics/workspace=a\b/`, `metrics/workspace=a\\b/`},
	}

	for _, tc := range cases {
		if got := globEscaper.Replace(tc.in); got != tc.want {
			t.Errorf("escape %q: got %q, want %q", tc.in, got, tc.want)
		}
	}
}
