package store

import (
	"path/filepath"
	"testing"

	"github.com/rootedlabs/trellis/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRootProfileRoundTrip(t *testing.T) {
	db := openTestDB(t)
	roots := NewRootStore(db)

	got, err := roots.GetProfile("missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for missing profile")
	}

	p := &models.RootProfile{
		UserID:          "u1",
		PersonaSummary:  "User is a teacher from Oslo.",
		Traits:          map[string]string{"profession": "teacher"},
		Values:          []string{"honesty", "curiosity"},
		ConfidenceScore: 0.5,
		CreatedAt:       1000,
		LastUpdatedAt:   1000,
	}
	if err := roots.CreateProfile(p); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err = roots.GetProfile("u1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected profile")
	}
	if got.PersonaSummary != p.PersonaSummary {
		t.Errorf("expected summary %q, got %q", p.PersonaSummary, got.PersonaSummary)
	}
	if got.Traits["profession"] != "teacher" {
		t.Errorf("expected traits round trip, got %v", got.Traits)
	}
	if len(got.Values) != 2 {
		t.Errorf("expected 2 values, got %v", got.Values)
	}
}

func TestRootProfileDuplicateCreate(t *testing.T) {
	db := openTestDB(t)
	roots := NewRootStore(db)

	p := &models.RootProfile{UserID: "u1", CreatedAt: 1, LastUpdatedAt: 1}
	if err := roots.CreateProfile(p); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := roots.CreateProfile(p); err == nil {
		t.Error("duplicate create should fail on the primary key")
	}
}

func TestRootProfileConditionalUpdate(t *testing.T) {
	db := openTestDB(t)
	roots := NewRootStore(db)

	p := &models.RootProfile{UserID: "u1", CreatedAt: 1000, LastUpdatedAt: 1000}
	if err := roots.CreateProfile(p); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Stored last_updated_at (1000) is newer than the cutoff: rejected.
	p.PersonaSummary = "inside cooldown"
	p.LastUpdatedAt = 1100
	ok, err := roots.UpdateProfile(p, 999)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if ok {
		t.Error("update inside the cooldown window should be rejected")
	}
	got, _ := roots.GetProfile("u1")
	if got.PersonaSummary != "" {
		t.Errorf("rejected update must not mutate the row, got %q", got.PersonaSummary)
	}

	// Cutoff at or past the stored timestamp: accepted.
	ok, err = roots.UpdateProfile(p, 1000)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !ok {
		t.Error("update past the cooldown window should be accepted")
	}
	got, _ = roots.GetProfile("u1")
	if got.PersonaSummary != "inside cooldown" || got.LastUpdatedAt != 1100 {
		t.Errorf("expected committed update, got %+v", got)
	}
}

func testNode(id, userID string, priority models.Priority) *models.MemoryNode {
	return &models.MemoryNode{
		ID:                 id,
		UserID:             userID,
		Domain:             "general",
		Priority:           priority,
		NodeType:           models.CategoryEvent,
		Content:            "content of " + id,
		Confidence:         0.7,
		ReinforcementCount: 1,
		RootAlignment:      models.AlignmentNeutral,
		VectorSynced:       true,
		CreatedAt:          1000,
		LastUsedAt:         1000,
	}
}

func TestNodeInsertAndGet(t *testing.T) {
	db := openTestDB(t)
	nodes := NewNodeStore(db)

	n := testNode("n1", "u1", models.PriorityLeaf)
	n.RootAlignment = models.AlignmentAligned
	if err := nodes.Insert(n); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := nodes.GetByID("n1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected node")
	}
	if got.Priority != models.PriorityLeaf || got.NodeType != models.CategoryEvent {
		t.Errorf("enum round trip failed: %+v", got)
	}
	if got.RootAlignment != models.AlignmentAligned {
		t.Errorf("expected aligned, got %s", got.RootAlignment)
	}
	if !got.VectorSynced {
		t.Error("expected vector_synced true")
	}

	missing, err := nodes.GetByID("nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing node")
	}
}

func TestNodeReinforce(t *testing.T) {
	db := openTestDB(t)
	nodes := NewNodeStore(db)

	if err := nodes.Insert(testNode("n1", "u1", models.PriorityLeaf)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := nodes.Reinforce("n1", 3, 0.9, models.AlignmentAligned, models.PriorityBranch, 2000); err != nil {
		t.Fatalf("reinforce failed: %v", err)
	}

	got, _ := nodes.GetByID("n1")
	if got.ReinforcementCount != 3 || got.Confidence != 0.9 {
		t.Errorf("expected count 3 conf 0.9, got %d %f", got.ReinforcementCount, got.Confidence)
	}
	if got.Priority != models.PriorityBranch || got.LastUsedAt != 2000 {
		t.Errorf("expected BRANCH at 2000, got %s %d", got.Priority, got.LastUsedAt)
	}

	if err := nodes.Reinforce("missing", 1, 0.5, models.AlignmentNeutral, models.PriorityLeaf, 1); err == nil {
		t.Error("reinforcing a missing node should fail")
	}
}

func TestNodeMarkVectorSynced(t *testing.T) {
	db := openTestDB(t)
	nodes := NewNodeStore(db)

	if err := nodes.Insert(testNode("n1", "u1", models.PriorityLeaf)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := nodes.MarkVectorSynced("n1", false); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	got, _ := nodes.GetByID("n1")
	if got.VectorSynced {
		t.Error("expected vector_synced false")
	}
}

func TestContentByPriority(t *testing.T) {
	db := openTestDB(t)
	nodes := NewNodeStore(db)

	for _, n := range []*models.MemoryNode{
		testNode("a", "u1", models.PriorityStem),
		testNode("b", "u1", models.PriorityLeaf),
		testNode("c", "u1", models.PriorityStem),
		testNode("d", "u2", models.PriorityStem),
	} {
		if err := nodes.Insert(n); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	got, err := nodes.ContentByPriority("u1", models.PriorityStem)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(got) != 2 || got[0] != "content of a" || got[1] != "content of c" {
		t.Errorf("expected insertion-ordered stem content for u1, got %v", got)
	}
}

func TestContentByPriorityDomains(t *testing.T) {
	db := openTestDB(t)
	nodes := NewNodeStore(db)

	work := testNode("w", "u1", models.PriorityBranch)
	work.Domain = "work"
	food := testNode("f", "u1", models.PriorityBranch)
	food.Domain = "food"
	for _, n := range []*models.MemoryNode{work, food} {
		if err := nodes.Insert(n); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	got, err := nodes.ContentByPriorityDomains("u1", models.PriorityBranch, []string{"food"})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(got) != 1 || got[0] != "content of f" {
		t.Errorf("expected food branch only, got %v", got)
	}

	empty, err := nodes.ContentByPriorityDomains("u1", models.PriorityBranch, nil)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("no domains should yield no rows, got %v", empty)
	}
}

func TestExpiryAndStalenessQueries(t *testing.T) {
	db := openTestDB(t)
	nodes := NewNodeStore(db)

	oldLeaf := testNode("old-leaf", "u1", models.PriorityLeaf)
	oldLeaf.CreatedAt = 100
	newLeaf := testNode("new-leaf", "u1", models.PriorityLeaf)
	newLeaf.CreatedAt = 900
	staleBranch := testNode("stale-branch", "u1", models.PriorityBranch)
	staleBranch.LastUsedAt = 100
	freshBranch := testNode("fresh-branch", "u1", models.PriorityBranch)
	freshBranch.LastUsedAt = 900
	for _, n := range []*models.MemoryNode{oldLeaf, newLeaf, staleBranch, freshBranch} {
		if err := nodes.Insert(n); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	expired, err := nodes.ExpiredLeafIDs("u1", 500)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(expired) != 1 || expired[0] != "old-leaf" {
		t.Errorf("expected [old-leaf], got %v", expired)
	}

	stale, err := nodes.StaleBranchIDs("u1", 500)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(stale) != 1 || stale[0] != "stale-branch" {
		t.Errorf("expected [stale-branch], got %v", stale)
	}

	deleted, err := nodes.DeleteByIDs(expired)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}
	if got, _ := nodes.GetByID("old-leaf"); got != nil {
		t.Error("expected old-leaf gone")
	}

	demoted, err := nodes.DemoteToLeaf(stale)
	if err != nil {
		t.Fatalf("demote failed: %v", err)
	}
	if demoted != 1 {
		t.Errorf("expected 1 demoted, got %d", demoted)
	}
	got, _ := nodes.GetByID("stale-branch")
	if got.Priority != models.PriorityLeaf {
		t.Errorf("expected LEAF after demotion, got %s", got.Priority)
	}
}

func TestCountByUserAndNodeCount(t *testing.T) {
	db := openTestDB(t)
	nodes := NewNodeStore(db)

	for _, n := range []*models.MemoryNode{
		testNode("a", "u1", models.PriorityStem),
		testNode("b", "u1", models.PriorityLeaf),
		testNode("c", "u1", models.PriorityLeaf),
	} {
		if err := nodes.Insert(n); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	counts, err := nodes.CountByUser("u1")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if counts[models.PriorityStem] != 1 || counts[models.PriorityLeaf] != 2 {
		t.Errorf("unexpected counts: %v", counts)
	}

	total, err := db.NodeCount()
	if err != nil {
		t.Fatalf("node count failed: %v", err)
	}
	if total != 3 {
		t.Errorf("expected 3 total, got %d", total)
	}
}

func TestEmbeddingCacheRoundTrip(t *testing.T) {
	db := openTestDB(t)
	cache := NewEmbeddingCacheStore(db)

	got, err := cache.Get("missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for missing entry")
	}

	entry := &EmbeddingCacheEntry{
		ContentHash: "abc123",
		Embedding:   []byte{1, 2, 3, 4},
		Dimension:   1,
		Model:       "nomic-embed-text",
	}
	if err := cache.Put(entry); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err = cache.Get("abc123")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || len(got.Embedding) != 4 || got.Model != "nomic-embed-text" {
		t.Errorf("unexpected entry: %+v", got)
	}

	// Replace with new bytes
	entry.Embedding = []byte{9, 9}
	if err := cache.Put(entry); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	got, _ = cache.Get("abc123")
	if len(got.Embedding) != 2 {
		t.Errorf("expected replaced embedding, got %v", got.Embedding)
	}
}
