package helper

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in     string
		max    int
		expect string
	}{
		{"Gereja Kasih Karunia", 120, "gereja-kasih-karunia"},
		{"  GKI  Pondok   Indah ", 120, "gki-pondok-indah"},
		{"Église Saint-Étienne", 120, "eglise-saint-etienne"},
		{"***", 120, "church"},
		{"", 0, "church"},
		{"Gereja Bethel Indonesia", 10, "gereja-bet"},
		{"abc def", 4, "abc"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in, tc.max); got != tc.expect {
			t.Errorf("Slugify(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.expect)
		}
	}
}

func TestClipSlugSuffixRoom(t *testing.T) {
	base := "gereja-kasih"
	got := clipSlug(base, 10-len("-2")) + "-2"
	if got != "gereja-k-2" {
		t.Fatalf("got %q", got)
	}
	if len(got) > 10 {
		t.Fatalf("slug exceeds limit: %q", got)
	}
}
