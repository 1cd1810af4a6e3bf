package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rootedlabs/trellis/internal/llm"
	"github.com/rootedlabs/trellis/internal/models"
)

// Verdict is the gatekeeper's judgment on a candidate's root eligibility.
type Verdict struct {
	Eligible      bool              `json:"is_eligible"`
	SummaryUpdate string            `json:"summary_update"`
	Traits        map[string]string `json:"extracted_traits"`
	Values        []string          `json:"extracted_values"`
}

// Gatekeeper decides whether a candidate belongs in the RootProfile.
// A failed call is treated as "not eligible" — the safe default keeps the
// persona anchor conservative.
type Gatekeeper struct {
	client llm.Client
	logger *slog.Logger
}

func NewGatekeeper(client llm.Client, logger *slog.Logger) *Gatekeeper {
	return &Gatekeeper{client: client, logger: logger}
}

// Evaluate asks the gatekeeper model for a verdict on the candidate.
func (g *Gatekeeper) Evaluate(ctx context.Context, c models.MemoryCandidate) Verdict {
	prompt := fmt.Sprintf(gatekeeperPrompt, c.Category, c.TimeScale, c.CoreContent)

	raw, err := g.client.Complete(ctx, prompt)
	if err != nil {
		g.logger.Warn("gatekeeper completion failed", "error", err)
		return Verdict{}
	}

	var v Verdict
	if err := json.Unmarshal([]byte(extractJSON(raw)), &v); err != nil {
		g.logger.Warn("gatekeeper returned malformed JSON", "error", err)
		return Verdict{}
	}
	return v
}
