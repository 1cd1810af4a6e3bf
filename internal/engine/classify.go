package engine

import "github.com/rootedlabs/trellis/internal/models"

// classifyPriority assigns a tier to a candidate. Rules are evaluated in
// order and the first match wins; the opinion guard always runs first so a
// belief statement can never land in STEM on category or time scale alone.
func classifyPriority(c models.MemoryCandidate) models.Priority {
	if hasOpinionMarker(c.CoreContent) && !hasRoleMarker(c.CoreContent) {
		return models.PriorityLeaf
	}
	if c.Category == models.CategoryIdentity || c.TimeScale == models.TimeScaleLongTerm {
		return models.PriorityStem
	}
	if c.Category == models.CategoryHabit || c.TimeScale == models.TimeScaleRepeated {
		return models.PriorityBranch
	}
	if c.Confidence > 0.9 && c.Importance == models.ImportanceHigh {
		return models.PriorityStem
	}
	return models.PriorityLeaf
}

// resolveAlignment applies the contradiction override: a candidate judged
// contradictory to the persona anchor is pinned to LEAF no matter what the
// classifier decided.
func resolveAlignment(priority models.Priority, alignment models.Alignment) models.Priority {
	if alignment == models.AlignmentContradictory {
		return models.PriorityLeaf
	}
	return priority
}
