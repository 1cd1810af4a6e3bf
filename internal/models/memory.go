package models

// RootProfile is the single persona anchor per user. It is mutated only by
// the candidate gate's root-eligibility path and never deleted by the engine.
type RootProfile struct {
	UserID          string            `json:"userId"`
	PersonaSummary  string            `json:"personaSummary"`
	Traits          map[string]string `json:"traits"`
	Values          []string          `json:"values"`
	ConfidenceScore float64           `json:"confidenceScore"`
	CreatedAt       int64             `json:"createdAt"`
	LastUpdatedAt   int64             `json:"lastUpdatedAt"`
}

// MemoryCandidate is one extracted fact. Candidates are ephemeral: consumed
// once by the engine, then discarded or converted into a MemoryNode or a
// RootProfile mutation.
type MemoryCandidate struct {
	Category    Category   `json:"category"`
	TimeScale   TimeScale  `json:"time_scale"`
	Importance  Importance `json:"importance"`
	CoreContent string     `json:"core_content"`
	Confidence  float64    `json:"confidence"`
	Domain      string     `json:"domain"`
}

// MemoryNode is a durable fact in one of the STEM/BRANCH/LEAF tiers. Every
// node has a vector-index twin keyed by the same ID; VectorSynced records
// whether that twin was successfully written.
type MemoryNode struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	Domain             string    `json:"domain"`
	Priority           Priority  `json:"priority"`
	NodeType           Category  `json:"nodeType"`
	Content            string    `json:"content"`
	Confidence         float64   `json:"confidence"`
	ReinforcementCount int       `json:"reinforcementCount"`
	RootAlignment      Alignment `json:"rootAlignment"`
	VectorSynced       bool      `json:"vectorSynced"`
	CreatedAt          int64     `json:"createdAt"`
	LastUsedAt         int64     `json:"lastUsedAt"`
}

// VectorMeta is the metadata projection stored alongside each vector-index
// entry. It mirrors the node fields retrieval filters on.
type VectorMeta struct {
	UserID        string    `json:"user_id"`
	Domain        string    `json:"domain"`
	Priority      Priority  `json:"priority"`
	Type          Category  `json:"type"`
	RootAlignment Alignment `json:"root_alignment"`
}

// MemoryMap is the query-scoped four-tier snapshot assembled at retrieval
// time. It is built fresh per call and never persisted.
type MemoryMap struct {
	Root   *RootProfile `json:"root"`
	Stem   []string     `json:"stem"`
	Branch []string     `json:"branch"`
	Leaf   []string     `json:"leaf"`
}

// ProcessStats summarizes the outcome of one ProcessCandidates call.
type ProcessStats struct {
	Processed        int `json:"processed"`
	RootUpdates      int `json:"root_updates"`
	NewMemories      int `json:"new_memories"`
	Reinforced       int `json:"reinforced"`
	Discarded        int `json:"discarded"`
	SkippedRateLimit int `json:"skipped_rate_limit"`
	Redefining       int `json:"redefining"`
}
