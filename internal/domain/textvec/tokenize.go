// Package textvec turns short free-text fields into sparse TF-IDF vectors.
package textvec

import (
	"regexp"
	"strings"
)

// tokenRegex matches runs of two or more letters, digits or underscores.
// Everything else (whitespace, commas, hyphens, single characters) separates tokens.
var tokenRegex = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lowercases text and splits it into terms.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	return tokenRegex.FindAllString(strings.ToLower(text), -1)
}
