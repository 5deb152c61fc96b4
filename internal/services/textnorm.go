package services

import "strings"

// Full-width forms of the ASCII printable range sit at a fixed offset in the
// Halfwidth and Fullwidth Forms block. Space is the one exception: U+0020
// maps to the ideographic space U+3000, not to an offset code point.
const fullWidthOffset = 0xFEE0

// ToFullWidth converts every half-width ASCII printable character in s to its
// full-width counterpart.
func ToFullWidth(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '　'
		case r >= '!' && r <= '~':
			return r + fullWidthOffset
		}
		return r
	}, s)
}

// ToHalfWidth converts every full-width character in s back to its half-width
// ASCII counterpart.
func ToHalfWidth(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '　':
			return ' '
		case r >= '！' && r <= '～':
			return r - fullWidthOffset
		}
		return r
	}, s)
}

// SearchVariants expands a user-entered keyword into the set of width
// variants {s, full-width, half-width}, dropping blanks and duplicates.
// Matching against all variants makes a single keyword hit regardless of
// which width form appears in the spreadsheet or the stored value.
func SearchVariants(s string) []string {
	variants := make([]string, 0, 3)
	seen := make(map[string]struct{}, 3)
	for _, v := range []string{s, ToFullWidth(s), ToHalfWidth(s)} {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}
	return variants
}
