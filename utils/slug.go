package utils

import (
	"strings"
	"unicode"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Slugify lowers a title into a URL-safe slug: letters and digits kept,
// every other run of characters collapsed to a single hyphen.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "case-study"
	}
	return slug
}

// SlugSuffix returns a short random suffix used when a slug collides.
func SlugSuffix() (string, error) {
	return nanoid.Generate("0123456789abcdefghijklmnopqrstuvwxyz", 6)
}
