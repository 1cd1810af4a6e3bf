package models

// Category classifies what kind of fact a candidate expresses.
type Category string

const (
	CategoryIdentity Category = "identity"
	CategoryHabit    Category = "habit"
	CategoryEmotion  Category = "emotion"
	CategoryEvent    Category = "event"
	CategoryBelief   Category = "belief"
)

var ValidCategories = map[Category]bool{
	CategoryIdentity: true,
	CategoryHabit:    true,
	CategoryEmotion:  true,
	CategoryEvent:    true,
	CategoryBelief:   true,
}

func (c Category) IsValid() bool {
	return ValidCategories[c]
}

// TimeScale captures how durable the analyzer judged a fact to be.
type TimeScale string

const (
	TimeScaleOneTime  TimeScale = "one_time"
	TimeScaleRepeated TimeScale = "repeated"
	TimeScaleLongTerm TimeScale = "long_term"
)

func (t TimeScale) IsValid() bool {
	return t == TimeScaleOneTime || t == TimeScaleRepeated || t == TimeScaleLongTerm
}

// Importance is the analyzer's coarse salience judgment.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

func (i Importance) IsValid() bool {
	return i == ImportanceLow || i == ImportanceMedium || i == ImportanceHigh
}

// Priority is the storage tier of a memory node.
type Priority string

const (
	PriorityStem   Priority = "STEM"
	PriorityBranch Priority = "BRANCH"
	PriorityLeaf   Priority = "LEAF"
)

func (p Priority) IsValid() bool {
	return p == PriorityStem || p == PriorityBranch || p == PriorityLeaf
}

// Alignment is the relationship of a fact to the persona anchor.
type Alignment string

const (
	AlignmentAligned       Alignment = "aligned"
	AlignmentNeutral       Alignment = "neutral"
	AlignmentContradictory Alignment = "contradictory"
	AlignmentRedefining    Alignment = "redefining"
)

var ValidAlignments = map[Alignment]bool{
	AlignmentAligned:       true,
	AlignmentNeutral:       true,
	AlignmentContradictory: true,
	AlignmentRedefining:    true,
}

func (a Alignment) IsValid() bool {
	return ValidAlignments[a]
}

// --- API payloads ---

// ChatRequest is the payload for POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is returned from POST /chat.
type ChatResponse struct {
	Response   string       `json:"response"`
	MemoryUsed *MemoryMap   `json:"memoryUsed"`
	Stats      ProcessStats `json:"stats"`
}

// ProcessRequest is the payload for POST /memory/process.
type ProcessRequest struct {
	Candidates []MemoryCandidate `json:"candidates"`
}

// RetrieveRequest is the payload for POST /memory/retrieve.
type RetrieveRequest struct {
	Query   string   `json:"query"`
	Domains []string `json:"domains"`
}

// DecayResponse is returned from POST /memory/decay.
type DecayResponse struct {
	Expired int `json:"expired"`
	Demoted int `json:"demoted"`
}

// HealthResponse is returned from GET /health.
type HealthResponse struct {
	Status    string       `json:"status"`
	Ollama    ServiceCheck `json:"ollama"`
	Qdrant    ServiceCheck `json:"qdrant"`
	DB        ServiceCheck `json:"db"`
	NodeCount int          `json:"nodeCount"`
}

type ServiceCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
