package engine

import "time"

// Default lifecycle windows.
const (
	DefaultLeafTTL         = 48 * time.Hour
	DefaultBranchStaleness = 7 * 24 * time.Hour
	DefaultRootCooldown    = 10 * time.Minute
)

// TTLPolicy computes the cutoff timestamps the lifecycle sweeps and the root
// cooldown compare against. Pure functions of the supplied clock value so
// tests can pin time.
type TTLPolicy struct {
	LeafTTL         time.Duration
	BranchStaleness time.Duration
	RootCooldown    time.Duration
}

// DefaultTTLPolicy returns the standard windows: 48h LEAF expiry, 7d BRANCH
// staleness, 10m root cooldown.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		LeafTTL:         DefaultLeafTTL,
		BranchStaleness: DefaultBranchStaleness,
		RootCooldown:    DefaultRootCooldown,
	}
}

// LeafExpiryCutoff returns the creation timestamp before which LEAF nodes
// are expired.
func (p TTLPolicy) LeafExpiryCutoff(now time.Time) int64 {
	return now.Add(-p.LeafTTL).Unix()
}

// BranchStaleCutoff returns the last-used timestamp before which BRANCH
// nodes are demoted.
func (p TTLPolicy) BranchStaleCutoff(now time.Time) int64 {
	return now.Add(-p.BranchStaleness).Unix()
}

// CooldownCutoff returns the last-updated timestamp at or before which a
// root update is permitted.
func (p TTLPolicy) CooldownCutoff(now time.Time) int64 {
	return now.Add(-p.RootCooldown).Unix()
}
