package domain

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	invalidPathChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	repeatedSpaces   = regexp.MustCompile(`\s+`)
)

func SanitizeFolderName(name string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		stripped = name
	}

	cleaned := invalidPathChars.ReplaceAllString(stripped, "_")
	cleaned = repeatedSpaces.ReplaceAllString(cleaned, " ")

	return strings.TrimSpace(cleaned)
}
