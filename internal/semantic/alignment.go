package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rootedlabs/trellis/internal/llm"
	"github.com/rootedlabs/trellis/internal/models"
)

// AlignmentClassifier maps candidate content against the persona anchor to
// one of aligned/neutral/contradictory/redefining. Without a profile there
// is nothing to align against, so the result is neutral with no model call.
// Any failure also degrades to neutral.
type AlignmentClassifier struct {
	client llm.Client
	logger *slog.Logger
}

func NewAlignmentClassifier(client llm.Client, logger *slog.Logger) *AlignmentClassifier {
	return &AlignmentClassifier{client: client, logger: logger}
}

// Classify returns the candidate's alignment with the root profile.
func (a *AlignmentClassifier) Classify(ctx context.Context, content string, profile *models.RootProfile) models.Alignment {
	if profile == nil {
		return models.AlignmentNeutral
	}

	traitsJSON, _ := json.Marshal(profile.Traits)
	prompt := fmt.Sprintf(alignmentPrompt,
		profile.PersonaSummary, string(traitsJSON), strings.Join(profile.Values, ", "), content)

	raw, err := a.client.Complete(ctx, prompt)
	if err != nil {
		a.logger.Warn("alignment completion failed", "error", err)
		return models.AlignmentNeutral
	}

	var result struct {
		RootAlignment models.Alignment `json:"root_alignment"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &result); err != nil {
		a.logger.Warn("alignment returned malformed JSON", "error", err)
		return models.AlignmentNeutral
	}
	if !result.RootAlignment.IsValid() {
		return models.AlignmentNeutral
	}
	return result.RootAlignment
}
