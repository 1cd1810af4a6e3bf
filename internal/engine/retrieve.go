package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/rootedlabs/trellis/internal/models"
	"github.com/rootedlabs/trellis/internal/vectorstore"
)

// Retrieve assembles the four-tier MemoryMap for a query: the root profile,
// every STEM node, BRANCH nodes scoped to the supplied domains, and the
// top-K LEAF neighbors of the query text. The four fetches have no data
// dependency on one another, so they fan out concurrently and join before
// returning. Any fetch failure fails the whole assembly.
func (e *Engine) Retrieve(ctx context.Context, userID, query string, domains []string) (*models.MemoryMap, error) {
	var (
		wg                                   sync.WaitGroup
		root                                 *models.RootProfile
		stem, branch                         []string
		neighbors                            []vectorstore.Neighbor
		rootErr, stemErr, branchErr, leafErr error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		root, rootErr = e.roots.GetProfile(userID)
	}()
	go func() {
		defer wg.Done()
		stem, stemErr = e.nodes.ContentByPriority(userID, models.PriorityStem)
	}()
	go func() {
		defer wg.Done()
		branch, branchErr = e.nodes.ContentByPriorityDomains(userID, models.PriorityBranch, domains)
	}()
	go func() {
		defer wg.Done()
		neighbors, leafErr = e.index.Query(ctx, query, e.params.LeafTopK, map[string]any{
			"user_id":  userID,
			"priority": string(models.PriorityLeaf),
		})
	}()
	wg.Wait()

	for _, err := range []error{rootErr, stemErr, branchErr, leafErr} {
		if err != nil {
			return nil, fmt.Errorf("assemble memory map: %w", err)
		}
	}

	leaf := make([]string, 0, len(neighbors))
	for _, n := range neighbors {
		leaf = append(leaf, n.Content)
	}

	mm := &models.MemoryMap{
		Root:   root,
		Stem:   stem,
		Branch: branch,
		Leaf:   leaf,
	}
	if mm.Stem == nil {
		mm.Stem = []string{}
	}
	if mm.Branch == nil {
		mm.Branch = []string{}
	}

	e.metrics.SetTierCount("stem", int64(len(mm.Stem)))
	e.metrics.SetTierCount("branch", int64(len(mm.Branch)))
	e.metrics.SetTierCount("leaf", int64(len(mm.Leaf)))
	return mm, nil
}
