package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rootedlabs/trellis/internal/models"
)

func TestDecayExpiresOldLeaves(t *testing.T) {
	nodes := newFakeNodes()
	old := &models.MemoryNode{
		ID: "old", UserID: "u1", Priority: models.PriorityLeaf,
		CreatedAt: testTime.Add(-49 * time.Hour).Unix(),
	}
	fresh := &models.MemoryNode{
		ID: "fresh", UserID: "u1", Priority: models.PriorityLeaf,
		CreatedAt: testTime.Add(-47 * time.Hour).Unix(),
	}
	for _, n := range []*models.MemoryNode{old, fresh} {
		if err := nodes.Insert(n); err != nil {
			t.Fatal(err)
		}
	}
	index := &fakeIndex{}
	e := newTestEngine(&fakeRoots{}, nodes, index, &fakeGatekeeper{}, &fakeAligner{})

	expired, demoted, err := e.Decay(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if expired != 1 || demoted != 0 {
		t.Errorf("expected 1 expired, 0 demoted; got %d, %d", expired, demoted)
	}
	if _, ok := nodes.nodes["old"]; ok {
		t.Error("expired leaf should be deleted")
	}
	if _, ok := nodes.nodes["fresh"]; !ok {
		t.Error("fresh leaf should survive")
	}
	if len(index.deleted) != 1 || len(index.deleted[0]) != 1 || index.deleted[0][0] != "old" {
		t.Errorf("expected vector delete of [old], got %v", index.deleted)
	}
}

func TestDecayDemotesStaleBranches(t *testing.T) {
	nodes := newFakeNodes()
	stale := &models.MemoryNode{
		ID: "stale", UserID: "u1", Priority: models.PriorityBranch,
		CreatedAt:  testTime.Add(-30 * 24 * time.Hour).Unix(),
		LastUsedAt: testTime.Add(-8 * 24 * time.Hour).Unix(),
	}
	active := &models.MemoryNode{
		ID: "active", UserID: "u1", Priority: models.PriorityBranch,
		CreatedAt:  testTime.Add(-30 * 24 * time.Hour).Unix(),
		LastUsedAt: testTime.Add(-6 * 24 * time.Hour).Unix(),
	}
	for _, n := range []*models.MemoryNode{stale, active} {
		if err := nodes.Insert(n); err != nil {
			t.Fatal(err)
		}
	}
	e := newTestEngine(&fakeRoots{}, nodes, &fakeIndex{}, &fakeGatekeeper{}, &fakeAligner{})

	expired, demoted, err := e.Decay(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if expired != 0 || demoted != 1 {
		t.Errorf("expected 0 expired, 1 demoted; got %d, %d", expired, demoted)
	}
	if nodes.nodes["stale"].Priority != models.PriorityLeaf {
		t.Error("stale branch should be demoted to LEAF")
	}
	if nodes.nodes["active"].Priority != models.PriorityBranch {
		t.Error("active branch should stay BRANCH")
	}
}

func TestDecaySwallowsVectorDeleteFailure(t *testing.T) {
	nodes := newFakeNodes()
	old := &models.MemoryNode{
		ID: "old", UserID: "u1", Priority: models.PriorityLeaf,
		CreatedAt: testTime.Add(-72 * time.Hour).Unix(),
	}
	if err := nodes.Insert(old); err != nil {
		t.Fatal(err)
	}
	index := &fakeIndex{deleteErr: errors.New("qdrant down")}
	e := newTestEngine(&fakeRoots{}, nodes, index, &fakeGatekeeper{}, &fakeAligner{})

	expired, _, err := e.Decay(context.Background(), "u1")
	if err != nil {
		t.Fatalf("vector cleanup failure must not escalate, got %v", err)
	}
	if expired != 1 {
		t.Errorf("expected 1 expired, got %d", expired)
	}
	if _, ok := nodes.nodes["old"]; ok {
		t.Error("relational delete should proceed despite vector failure")
	}
}
