package models

import (
	"strings"
	"unicode"
)

// NewTag builds a tag whose slug is derived from name.
func NewTag(name string) *Tag {
	name = strings.TrimSpace(name)
	return &Tag{Name: name, Slug: Slugify(name)}
}

// Validate checks if the tag meets all validation requirements
func (t *Tag) Validate() error {
	return validate.Struct(t)
}

// Slugify lowercases s and collapses every run of characters outside
// [a-z0-9_] into a single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
