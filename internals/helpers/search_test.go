package helper

import "testing"

func TestContainsPattern(t *testing.T) {
	cases := map[string]string{
		"ruth":     "%ruth%",
		"_":        `%\_%`,
		"100%":     `%100\%%`,
		`a\b`:      `%a\\b%`,
		"":         "%%",
		"jo_n%doe": `%jo\_n\%doe%`,
	}
	for in, want := range cases {
		if got := ContainsPattern(in); got != want {
			t.Errorf("ContainsPattern(%q) = %q, want %q", in, got, want)
		}
	}
}
