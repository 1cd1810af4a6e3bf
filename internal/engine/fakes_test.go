package engine

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/rootedlabs/trellis/internal/models"
	"github.com/rootedlabs/trellis/internal/semantic"
	"github.com/rootedlabs/trellis/internal/vectorstore"
)

// In-memory test doubles for the engine's store and collaborator interfaces.

type fakeRoots struct {
	profile   *models.RootProfile
	getErr    error
	createErr error
	updateErr error
	updates   int
}

func (f *fakeRoots) GetProfile(userID string) (*models.RootProfile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.profile, nil
}

func (f *fakeRoots) CreateProfile(p *models.RootProfile) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *p
	f.profile = &cp
	return nil
}

func (f *fakeRoots) UpdateProfile(p *models.RootProfile, cutoff int64) (bool, error) {
	if f.updateErr != nil {
		return false, f.updateErr
	}
	if f.profile == nil || f.profile.LastUpdatedAt > cutoff {
		return false, nil
	}
	cp := *p
	f.profile = &cp
	f.updates++
	return true, nil
}

type fakeNodes struct {
	nodes     map[string]*models.MemoryNode
	order     []string
	insertErr error
	unsynced  []string
}

func newFakeNodes() *fakeNodes {
	return &fakeNodes{nodes: make(map[string]*models.MemoryNode)}
}

func (f *fakeNodes) Insert(n *models.MemoryNode) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	cp := *n
	f.nodes[n.ID] = &cp
	f.order = append(f.order, n.ID)
	return nil
}

func (f *fakeNodes) GetByID(id string) (*models.MemoryNode, error) {
	n, ok := f.nodes[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNodes) Reinforce(id string, count int, confidence float64,
	alignment models.Alignment, priority models.Priority, lastUsedAt int64) error {
	n := f.nodes[id]
	n.ReinforcementCount = count
	n.Confidence = confidence
	n.RootAlignment = alignment
	n.Priority = priority
	n.LastUsedAt = lastUsedAt
	return nil
}

func (f *fakeNodes) MarkVectorSynced(id string, synced bool) error {
	if n, ok := f.nodes[id]; ok {
		n.VectorSynced = synced
	}
	if !synced {
		f.unsynced = append(f.unsynced, id)
	}
	return nil
}

func (f *fakeNodes) ContentByPriority(userID string, priority models.Priority) ([]string, error) {
	var out []string
	for _, id := range f.order {
		n, ok := f.nodes[id]
		if !ok {
			continue
		}
		if n.UserID == userID && n.Priority == priority {
			out = append(out, n.Content)
		}
	}
	return out, nil
}

func (f *fakeNodes) ContentByPriorityDomains(userID string, priority models.Priority, domains []string) ([]string, error) {
	if len(domains) == 0 {
		return nil, nil
	}
	want := make(map[string]bool, len(domains))
	for _, d := range domains {
		want[d] = true
	}
	var out []string
	for _, id := range f.order {
		n, ok := f.nodes[id]
		if !ok {
			continue
		}
		if n.UserID == userID && n.Priority == priority && want[n.Domain] {
			out = append(out, n.Content)
		}
	}
	return out, nil
}

func (f *fakeNodes) ExpiredLeafIDs(userID string, cutoff int64) ([]string, error) {
	var out []string
	for _, id := range f.order {
		n, ok := f.nodes[id]
		if !ok {
			continue
		}
		if n.UserID == userID && n.Priority == models.PriorityLeaf && n.CreatedAt < cutoff {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeNodes) StaleBranchIDs(userID string, cutoff int64) ([]string, error) {
	var out []string
	for _, id := range f.order {
		n, ok := f.nodes[id]
		if !ok {
			continue
		}
		if n.UserID == userID && n.Priority == models.PriorityBranch && n.LastUsedAt < cutoff {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeNodes) DeleteByIDs(ids []string) (int64, error) {
	var deleted int64
	for _, id := range ids {
		if _, ok := f.nodes[id]; ok {
			delete(f.nodes, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeNodes) DemoteToLeaf(ids []string) (int64, error) {
	var demoted int64
	for _, id := range ids {
		if n, ok := f.nodes[id]; ok {
			n.Priority = models.PriorityLeaf
			demoted++
		}
	}
	return demoted, nil
}

type indexQuery struct {
	text   string
	k      int
	filter map[string]any
}

type fakeIndex struct {
	neighbors []vectorstore.Neighbor
	queryErr  error
	addErr    error
	deleteErr error
	added     []string
	deleted   [][]string
	queries   []indexQuery
}

func (f *fakeIndex) Add(ctx context.Context, id, text string, meta models.VectorMeta) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, id)
	return nil
}

func (f *fakeIndex) Query(ctx context.Context, text string, k int, filter map[string]any) ([]vectorstore.Neighbor, error) {
	f.queries = append(f.queries, indexQuery{text: text, k: k, filter: filter})
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.neighbors, nil
}

func (f *fakeIndex) Delete(ctx context.Context, ids []string) error {
	f.deleted = append(f.deleted, ids)
	return f.deleteErr
}

type fakeGatekeeper struct {
	verdict semantic.Verdict
	calls   int
}

func (f *fakeGatekeeper) Evaluate(ctx context.Context, c models.MemoryCandidate) semantic.Verdict {
	f.calls++
	return f.verdict
}

type fakeAligner struct {
	result models.Alignment
	calls  int
}

func (f *fakeAligner) Classify(ctx context.Context, content string, profile *models.RootProfile) models.Alignment {
	f.calls++
	if f.result == "" {
		return models.AlignmentNeutral
	}
	return f.result
}

var testTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestEngine(roots RootStore, nodes NodeStore, index VectorIndex,
	gk Gatekeeper, al Aligner) *Engine {

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := New(roots, nodes, index, gk, al, DefaultParams(), logger, nil)
	e.now = func() time.Time { return testTime }
	return e
}
