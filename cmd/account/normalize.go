package account

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxHandleLength      = 32
	MaxDisplayNameLength = 64
)

// NormalizeHandle performs case-insensitive canonicalization.
func NormalizeHandle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateHandle trims s and checks it is 1..MaxHandleLength characters of [A-Za-z0-9_].
// It returns the trimmed handle as the user typed it.
func ValidateHandle(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > MaxHandleLength {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return "", false
		}
	}
	return s, true
}

// normalizeDisplayName trims the optional display name; blank becomes nil.
func normalizeDisplayName(p *string) (*string, bool) {
	if p == nil {
		return nil, true
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil, true
	}
	if utf8.RuneCountInString(s) > MaxDisplayNameLength {
		return nil, false
	}
	return &s, true
}
