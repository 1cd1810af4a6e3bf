package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rootedlabs/trellis/internal/metrics"
	"github.com/rootedlabs/trellis/internal/models"
	"github.com/rootedlabs/trellis/internal/privacy"
	"github.com/rootedlabs/trellis/internal/semantic"
	"github.com/rootedlabs/trellis/internal/vectorstore"
)

// ErrVectorWrite marks a node whose relational row committed but whose
// vector-index twin failed to write. The node exists with vector_synced=0
// and must not be counted as stored.
var ErrVectorWrite = errors.New("vector index write failed")

// RootStore is the engine's view of RootProfile persistence.
type RootStore interface {
	GetProfile(userID string) (*models.RootProfile, error)
	CreateProfile(p *models.RootProfile) error
	UpdateProfile(p *models.RootProfile, cutoff int64) (bool, error)
}

// NodeStore is the engine's view of MemoryNode persistence.
type NodeStore interface {
	Insert(n *models.MemoryNode) error
	GetByID(id string) (*models.MemoryNode, error)
	Reinforce(id string, count int, confidence float64, alignment models.Alignment, priority models.Priority, lastUsedAt int64) error
	MarkVectorSynced(id string, synced bool) error
	ContentByPriority(userID string, priority models.Priority) ([]string, error)
	ContentByPriorityDomains(userID string, priority models.Priority, domains []string) ([]string, error)
	ExpiredLeafIDs(userID string, cutoff int64) ([]string, error)
	StaleBranchIDs(userID string, cutoff int64) ([]string, error)
	DeleteByIDs(ids []string) (int64, error)
	DemoteToLeaf(ids []string) (int64, error)
}

// VectorIndex is the engine's view of the similarity index.
type VectorIndex interface {
	Add(ctx context.Context, id, text string, meta models.VectorMeta) error
	Query(ctx context.Context, text string, k int, filter map[string]any) ([]vectorstore.Neighbor, error)
	Delete(ctx context.Context, ids []string) error
}

// Gatekeeper judges root eligibility. Failures inside the implementation
// must degrade to a not-eligible verdict, never an error.
type Gatekeeper interface {
	Evaluate(ctx context.Context, c models.MemoryCandidate) semantic.Verdict
}

// Aligner classifies a candidate against the persona anchor. Failures inside
// the implementation must degrade to neutral.
type Aligner interface {
	Classify(ctx context.Context, content string, profile *models.RootProfile) models.Alignment
}

// Params holds the lifecycle tunables.
type Params struct {
	// SimilarityThreshold is the max cosine distance at which a nearest
	// neighbor counts as the same fact.
	SimilarityThreshold float64
	// ReinforceStep is added to confidence on each reinforcement, capped at 1.0.
	ReinforceStep float64
	// PromotionCount is the reinforcement count at which a LEAF node is
	// promoted to BRANCH.
	PromotionCount int
	// StemConfidence is the confidence a BRANCH node must exceed to be
	// promoted to STEM.
	StemConfidence float64
	// LeafTopK is how many LEAF neighbors retrieval pulls from the index.
	LeafTopK int
	TTL      TTLPolicy
}

// DefaultParams returns the standard tunables.
func DefaultParams() Params {
	return Params{
		SimilarityThreshold: 0.25,
		ReinforceStep:       0.1,
		PromotionCount:      3,
		StemConfidence:      0.95,
		LeafTopK:            5,
		TTL:                 DefaultTTLPolicy(),
	}
}

// Engine is the memory lifecycle core: candidate gating, tier classification,
// alignment enforcement, reinforcement/dedup, decay, and retrieval assembly.
// It holds no per-user state; all state lives in the injected stores.
type Engine struct {
	roots      RootStore
	nodes      NodeStore
	index      VectorIndex
	gatekeeper Gatekeeper
	aligner    Aligner
	params     Params
	logger     *slog.Logger
	metrics    metrics.Collector
	now        func() time.Time
}

func New(roots RootStore, nodes NodeStore, index VectorIndex,
	gatekeeper Gatekeeper, aligner Aligner,
	params Params, logger *slog.Logger, collector metrics.Collector) *Engine {

	if collector == nil {
		collector = metrics.NewNoopCollector()
	}
	return &Engine{
		roots:      roots,
		nodes:      nodes,
		index:      index,
		gatekeeper: gatekeeper,
		aligner:    aligner,
		params:     params,
		logger:     logger,
		metrics:    collector,
		now:        time.Now,
	}
}

// Outcome labels reported per candidate.
const (
	outcomeRootCreated = "root_created"
	outcomeRootUpdated = "root_updated"
	outcomeRateLimited = "rate_limited"
	outcomeDiscarded   = "discarded"
	outcomeReinforced  = "reinforced"
	outcomeInserted    = "inserted"
)

// ProcessCandidates runs each candidate through the full lifecycle: privacy
// scrub, root-eligibility gate, storage-worthiness gate, alignment, tier
// classification, and reinforce-or-insert. Candidates are handled one at a
// time in extraction order; a relational or vector-write failure aborts the
// batch with the stats accumulated so far.
func (e *Engine) ProcessCandidates(ctx context.Context, userID string, candidates []models.MemoryCandidate) (models.ProcessStats, error) {
	start := e.now()
	var stats models.ProcessStats

	profile, err := e.roots.GetProfile(userID)
	if err != nil {
		return stats, err
	}

	for _, c := range candidates {
		stats.Processed++

		c.CoreContent = privacy.Scrub(c.CoreContent)
		if privacy.FullyPrivate(c.CoreContent) {
			stats.Discarded++
			e.metrics.RecordOutcome("process", outcomeDiscarded)
			continue
		}

		if rootEligible(c) {
			verdict := e.gatekeeper.Evaluate(ctx, c)
			if verdict.Eligible {
				outcome, updated, err := e.applyRootUpdate(userID, profile, verdict)
				if err != nil {
					return stats, err
				}
				if updated != nil {
					profile = updated
				}
				if outcome == outcomeRateLimited {
					stats.SkippedRateLimit++
				} else {
					stats.RootUpdates++
				}
				e.metrics.RecordOutcome("process", outcome)
				// A root-bound candidate never also becomes a node.
				continue
			}
		}

		if !storageWorthy(c) {
			stats.Discarded++
			e.metrics.RecordOutcome("process", outcomeDiscarded)
			continue
		}

		alignment := e.aligner.Classify(ctx, c.CoreContent, profile)
		if alignment == models.AlignmentRedefining {
			stats.Redefining++
		}
		priority := resolveAlignment(classifyPriority(c), alignment)

		outcome, err := e.reinforceOrInsert(ctx, userID, c, priority, alignment)
		if err != nil {
			return stats, err
		}
		if outcome == outcomeReinforced {
			stats.Reinforced++
		} else {
			stats.NewMemories++
		}
		e.metrics.RecordOutcome("process", outcome)
	}

	e.metrics.RecordDuration("process", e.now().Sub(start).Milliseconds())
	return stats, nil
}
