package engine

import (
	"strings"

	"github.com/rootedlabs/trellis/internal/models"
	"github.com/rootedlabs/trellis/internal/semantic"
)

// initialRootConfidence seeds a freshly created profile.
const initialRootConfidence = 0.5

// rootEligible is the cheap local pre-filter in front of the gatekeeper
// model, so obviously ineligible candidates never cost a completion call.
func rootEligible(c models.MemoryCandidate) bool {
	return c.Category == models.CategoryIdentity ||
		c.TimeScale == models.TimeScaleLongTerm ||
		hasHistoricalOrigin(c.CoreContent)
}

// storageWorthy rejects meta-conversational content and low-importance
// one-off events. Rejected candidates leave no storage side effect.
func storageWorthy(c models.MemoryCandidate) bool {
	if isMetaConversational(c.CoreContent) {
		return false
	}
	if c.Category == models.CategoryEvent && c.Importance == models.ImportanceLow {
		return false
	}
	return true
}

// applyRootUpdate commits an eligible verdict into the RootProfile. First-ever
// creation bypasses the cooldown; updates go through the store's conditional
// write, which rejects any mutation inside the cooldown window even when two
// requests race. Returns the outcome label and, on success, the profile the
// rest of the batch should see.
func (e *Engine) applyRootUpdate(userID string, profile *models.RootProfile, v semantic.Verdict) (string, *models.RootProfile, error) {
	now := e.now()

	if profile == nil {
		p := &models.RootProfile{
			UserID:          userID,
			PersonaSummary:  v.SummaryUpdate,
			Traits:          cloneTraits(v.Traits),
			Values:          append([]string(nil), v.Values...),
			ConfidenceScore: initialRootConfidence,
			CreatedAt:       now.Unix(),
			LastUpdatedAt:   now.Unix(),
		}
		if err := e.roots.CreateProfile(p); err != nil {
			return "", nil, err
		}
		e.logger.Info("root profile created", "user_id", userID)
		return outcomeRootCreated, p, nil
	}

	merged := mergeProfile(profile, v, now.Unix())
	ok, err := e.roots.UpdateProfile(merged, e.params.TTL.CooldownCutoff(now))
	if err != nil {
		return "", nil, err
	}
	if !ok {
		e.logger.Debug("root update skipped by cooldown", "user_id", userID)
		return outcomeRateLimited, nil, nil
	}
	e.logger.Info("root profile updated", "user_id", userID)
	return outcomeRootUpdated, merged, nil
}

// mergeProfile folds a verdict into an existing profile: traits union with
// key overwrite, values union as a set, summary appended only when not
// already a substring of the current summary.
func mergeProfile(p *models.RootProfile, v semantic.Verdict, updatedAt int64) *models.RootProfile {
	merged := *p
	merged.Traits = cloneTraits(p.Traits)
	for k, val := range v.Traits {
		merged.Traits[k] = val
	}

	seen := make(map[string]bool, len(p.Values))
	merged.Values = append([]string(nil), p.Values...)
	for _, val := range p.Values {
		seen[val] = true
	}
	for _, val := range v.Values {
		if !seen[val] {
			merged.Values = append(merged.Values, val)
			seen[val] = true
		}
	}

	if v.SummaryUpdate != "" && !containsSummary(p.PersonaSummary, v.SummaryUpdate) {
		if merged.PersonaSummary == "" {
			merged.PersonaSummary = v.SummaryUpdate
		} else {
			merged.PersonaSummary = merged.PersonaSummary + " " + v.SummaryUpdate
		}
	}

	merged.LastUpdatedAt = updatedAt
	return &merged
}

func containsSummary(summary, update string) bool {
	return strings.Contains(strings.ToLower(summary), strings.ToLower(update))
}

func cloneTraits(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
