package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rootedlabs/trellis/internal/llm"
	"github.com/rootedlabs/trellis/internal/models"
)

// Responder generates the assistant reply grounded in a retrieved MemoryMap.
// Unlike the extraction collaborators, a failure here surfaces to the caller:
// there is no useful degraded reply.
type Responder struct {
	client llm.Client
}

func NewResponder(client llm.Client) *Responder {
	return &Responder{client: client}
}

// Respond produces a reply to the user message using the memory snapshot.
func (r *Responder) Respond(ctx context.Context, message string, mm *models.MemoryMap) (string, error) {
	root := "none"
	if mm.Root != nil {
		traitsJSON, _ := json.Marshal(mm.Root.Traits)
		root = fmt.Sprintf("%s | traits: %s | values: %s",
			mm.Root.PersonaSummary, string(traitsJSON), strings.Join(mm.Root.Values, ", "))
	}

	prompt := fmt.Sprintf(respondPrompt,
		root,
		joinOrNone(mm.Stem),
		joinOrNone(mm.Branch),
		joinOrNone(mm.Leaf),
		message)

	reply, err := r.client.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}
	return reply, nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return "- " + strings.Join(items, "\n- ")
}
