package engine

import "strings"

// Marker tables for the gating and classification heuristics. Kept as plain
// string tables so they can be tuned and tested independently of the
// semantic collaborators. Matching is case-insensitive substring
// containment over the candidate content.

// opinionMarkers flag subjective belief/value phrasing. Content matching one
// of these without a factual-role marker is pinned to LEAF so opinions never
// reach the durable tiers on classification alone.
var opinionMarkers = []string{
	"i believe",
	"i think",
	"i feel that",
	"i value",
	"important to me",
	"matters to me",
	"should",
	"opinion",
	"believes",
	"thinks that",
}

// roleMarkers flag factual statements about occupation or circumstance that
// override the opinion guard.
var roleMarkers = []string{
	"i am a",
	"i'm a",
	"i work as",
	"i live in",
	"my role is",
	"my job is",
	"works as",
	"lives in",
}

// historicalOriginMarkers admit a candidate to the root-eligibility
// pre-filter on formative-history grounds.
var historicalOriginMarkers = []string{
	"grew up",
	"was born",
	"raised in",
	"childhood",
	"hometown",
	"my parents",
	"my family",
	"native",
}

// selfReferentialMarkers, combined with a question mark, mark content as a
// question about the assistant rather than a fact about the user.
var selfReferentialMarkers = []string{
	"who are you",
	"what are you",
	"what is",
	"are you a",
	"how do you",
}

func containsAny(content string, markers []string) bool {
	lower := strings.ToLower(content)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func hasOpinionMarker(content string) bool {
	return containsAny(content, opinionMarkers)
}

func hasRoleMarker(content string) bool {
	return containsAny(content, roleMarkers)
}

func hasHistoricalOrigin(content string) bool {
	return containsAny(content, historicalOriginMarkers)
}

// isMetaConversational reports whether the content is a question aimed at
// the assistant itself, e.g. "who are you?".
func isMetaConversational(content string) bool {
	return strings.Contains(content, "?") && containsAny(content, selfReferentialMarkers)
}
