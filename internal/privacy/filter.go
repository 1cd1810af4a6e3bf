package privacy

import (
	"regexp"
	"strings"
)

// privateTagRegex matches <private>...</private> blocks (non-greedy, dotall).
var privateTagRegex = regexp.MustCompile(`(?s)<private>.*?</private>`)

// Scrub removes all <private>...</private> blocks from candidate content
// before it enters the memory lifecycle.
func Scrub(content string) string {
	return strings.TrimSpace(privateTagRegex.ReplaceAllString(content, ""))
}

// FullyPrivate returns true if the content is entirely composed of
// <private> blocks and whitespace — nothing storable remains after scrubbing.
func FullyPrivate(content string) bool {
	return Scrub(content) == ""
}
