package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rootedlabs/trellis/internal/models"
)

// reinforceOrInsert deduplicates a surviving candidate against the vector
// index. A nearest neighbor within the similarity threshold is reinforced in
// place; anything else becomes a new node written relational-first, then to
// the index.
func (e *Engine) reinforceOrInsert(ctx context.Context, userID string, c models.MemoryCandidate,
	priority models.Priority, alignment models.Alignment) (string, error) {

	neighbors, err := e.index.Query(ctx, c.CoreContent, 1, map[string]any{"user_id": userID})
	if err != nil {
		// A failed dedup lookup degrades to "no neighbor". The worst case is
		// a duplicate insert that later reinforcement merges back together.
		e.logger.Warn("dedup query failed", "user_id", userID, "error", err)
		e.metrics.RecordError("process", "dedup_query")
		neighbors = nil
	}

	now := e.now().Unix()

	if len(neighbors) > 0 && neighbors[0].Distance < e.params.SimilarityThreshold {
		node, err := e.nodes.GetByID(neighbors[0].ID)
		if err != nil {
			return "", err
		}
		if node != nil {
			return outcomeReinforced, e.reinforce(node, c, alignment, now)
		}
		// The index pointed at an id with no relational row; treat the
		// candidate as new content.
		e.logger.Warn("vector hit with no relational node", "id", neighbors[0].ID)
	}

	node := &models.MemoryNode{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Domain:             c.Domain,
		Priority:           priority,
		NodeType:           c.Category,
		Content:            c.CoreContent,
		Confidence:         c.Confidence,
		ReinforcementCount: 1,
		RootAlignment:      alignment,
		VectorSynced:       true,
		CreatedAt:          now,
		LastUsedAt:         now,
	}
	if err := e.nodes.Insert(node); err != nil {
		return "", err
	}

	meta := models.VectorMeta{
		UserID:        userID,
		Domain:        node.Domain,
		Priority:      node.Priority,
		Type:          node.NodeType,
		RootAlignment: node.RootAlignment,
	}
	if err := e.index.Add(ctx, node.ID, node.Content, meta); err != nil {
		if markErr := e.nodes.MarkVectorSynced(node.ID, false); markErr != nil {
			e.logger.Error("failed to flag unsynced node", "id", node.ID, "error", markErr)
		}
		e.metrics.RecordError("process", "vector_write")
		return "", fmt.Errorf("%w: node %s: %v", ErrVectorWrite, node.ID, err)
	}

	e.logger.Debug("memory inserted", "id", node.ID, "priority", node.Priority, "domain", node.Domain)
	return outcomeInserted, nil
}

// reinforce merges a duplicate observation into an existing node: bump the
// count, step the confidence, refresh last_used_at, record the latest
// alignment, and promote when the thresholds are met. Promotion decisions
// read the node's stored tier, so a LEAF promoted to BRANCH cannot jump to
// STEM within the same reinforcement.
func (e *Engine) reinforce(node *models.MemoryNode, c models.MemoryCandidate,
	alignment models.Alignment, now int64) error {

	count := node.ReinforcementCount + 1
	confidence := math.Min(1.0, node.Confidence+e.params.ReinforceStep)

	next := node.Priority
	if alignment != models.AlignmentContradictory {
		if node.Priority == models.PriorityLeaf && count >= e.params.PromotionCount {
			next = models.PriorityBranch
		}
		if node.Priority == models.PriorityBranch && confidence > e.params.StemConfidence &&
			c.TimeScale == models.TimeScaleLongTerm {
			next = models.PriorityStem
		}
	}

	if err := e.nodes.Reinforce(node.ID, count, confidence, alignment, next, now); err != nil {
		return err
	}
	if next != node.Priority {
		e.logger.Info("memory promoted", "id", node.ID, "from", node.Priority, "to", next)
		e.metrics.RecordOutcome("process", "promoted")
	}
	return nil
}
