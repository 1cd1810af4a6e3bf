package engine

import "context"

// Decay runs the lazy per-user lifecycle sweep: expire LEAF nodes past their
// TTL from both stores, then demote BRANCH nodes whose last use is past the
// staleness window. Relational failures surface; vector cleanup is best
// effort. Returns the number of nodes expired and demoted.
func (e *Engine) Decay(ctx context.Context, userID string) (expired, demoted int, err error) {
	now := e.now()

	ids, err := e.nodes.ExpiredLeafIDs(userID, e.params.TTL.LeafExpiryCutoff(now))
	if err != nil {
		return 0, 0, err
	}
	if len(ids) > 0 {
		n, err := e.nodes.DeleteByIDs(ids)
		if err != nil {
			return 0, 0, err
		}
		expired = int(n)
		// Relational rows are gone; an index entry left behind is harmless
		// because retrieval hits will no longer resolve to a node.
		if err := e.index.Delete(ctx, ids); err != nil {
			e.logger.Warn("vector cleanup failed", "user_id", userID, "count", len(ids), "error", err)
			e.metrics.RecordError("decay", "vector_delete")
		}
	}

	stale, err := e.nodes.StaleBranchIDs(userID, e.params.TTL.BranchStaleCutoff(now))
	if err != nil {
		return expired, 0, err
	}
	if len(stale) > 0 {
		n, err := e.nodes.DemoteToLeaf(stale)
		if err != nil {
			return expired, 0, err
		}
		demoted = int(n)
	}

	if expired > 0 || demoted > 0 {
		e.logger.Info("decay sweep", "user_id", userID, "expired", expired, "demoted", demoted)
	}
	return expired, demoted, nil
}
