package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rootedlabs/trellis/internal/llm"
	"github.com/rootedlabs/trellis/internal/models"
)

// Analyzer extracts memory candidates and context domains from a raw user
// message. A failed or malformed completion degrades to "no candidates,
// general domain" rather than an error — extraction is best-effort.
type Analyzer struct {
	client llm.Client
	logger *slog.Logger
}

func NewAnalyzer(client llm.Client, logger *slog.Logger) *Analyzer {
	return &Analyzer{client: client, logger: logger}
}

type analyzeResult struct {
	Domains    []string                 `json:"domains"`
	Candidates []models.MemoryCandidate `json:"candidates"`
}

// Extract returns the candidates and domains found in the message.
func (a *Analyzer) Extract(ctx context.Context, message string) ([]models.MemoryCandidate, []string) {
	raw, err := a.client.Complete(ctx, fmt.Sprintf(analyzePrompt, message))
	if err != nil {
		a.logger.Warn("analyzer completion failed", "error", err)
		return nil, []string{"general"}
	}

	var result analyzeResult
	if err := json.Unmarshal([]byte(extractJSON(raw)), &result); err != nil {
		a.logger.Warn("analyzer returned malformed JSON", "error", err)
		return nil, []string{"general"}
	}

	// Drop candidates with invalid enum fields rather than letting garbage
	// into the lifecycle.
	valid := result.Candidates[:0]
	for _, c := range result.Candidates {
		if !c.Category.IsValid() || !c.TimeScale.IsValid() || !c.Importance.IsValid() {
			a.logger.Warn("dropping candidate with invalid fields",
				"category", c.Category, "time_scale", c.TimeScale, "importance", c.Importance)
			continue
		}
		if c.CoreContent == "" {
			continue
		}
		if c.Domain == "" {
			c.Domain = "general"
		}
		valid = append(valid, c)
	}

	domains := result.Domains
	if len(domains) == 0 {
		domains = []string{"general"}
	}
	return valid, domains
}
