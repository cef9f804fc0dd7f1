package helper

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const slugFallback = "church"

// Slugify lowercases s, drops diacritics and collapses everything outside
// [a-z0-9] into single hyphens. Empty results become "church".
func Slugify(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 100
	}
	var b strings.Builder
	hyphen := false
	for _, r := range norm.NFD.String(strings.ToLower(s)) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			hyphen = false
		case !hyphen && b.Len() > 0:
			b.WriteByte('-')
			hyphen = true
		}
	}
	return clipSlug(b.String(), maxLen)
}

func clipSlug(s string, maxLen int) string {
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	s = strings.Trim(s, "-")
	if s == "" {
		return slugFallback
	}
	return s
}

// UniqueSlug returns base, or base-2, base-3, ... for the first value whose
// lower-cased form is unused in column. scoped must already select the
// table and any filters (e.g. live rows only).
func UniqueSlug(ctx context.Context, scoped *gorm.DB, column, base string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = 100
	}
	base = clipSlug(base, maxLen)
	cond := fmt.Sprintf("LOWER(%s) = ?", column)

	candidate := base
	for n := 2; n <= 50; n++ {
		var hits int64
		err := scoped.Session(&gorm.Session{}).WithContext(ctx).
			Where(cond, strings.ToLower(candidate)).
			Count(&hits).Error
		if err != nil {
			return "", err
		}
		if hits == 0 {
			return candidate, nil
		}
		suffix := fmt.Sprintf("-%d", n)
		candidate = clipSlug(base, maxLen-len(suffix)) + suffix
	}
	return "", fmt.Errorf("no free slug for %q", base)
}
