package dispatch

import (
	"sort"

	"github.com/pitops/minedispatch/core/fleet"
	"github.com/pitops/minedispatch/core/model"
)

// Matcher turns a fleet snapshot into a conflict-free set of candidates.
//
// The algorithm is a greedy approximation of maximum-weight bipartite
// matching: candidates are sorted by score and accepted top-down, skipping
// any pair whose loader or hauler is already taken. This trades optimality
// for speed and predictability, which is acceptable at realistic fleet
// sizes of tens of units.
type Matcher struct {
	Scorer Scorer
	// MaxMatches caps the accepted candidates per round.
	MaxMatches int
	// MinIdleMinutes gates idle loaders back into dispatch.
	MinIdleMinutes float64
	// MinWaitMinutes lets a still-assigned hauler be poached once it has
	// waited this long.
	MinWaitMinutes float64
}

// NewMatcher returns a matcher with the reference thresholds.
func NewMatcher(cfg Config) Matcher {
	return Matcher{
		Scorer:         NewScorer(cfg),
		MaxMatches:     cfg.MaxMatches,
		MinIdleMinutes: 2,
		MinWaitMinutes: 3,
	}
}

// eligibleLoader gates loaders into automatic dispatch: only working or
// sufficiently idle units digging ROM material qualify.
func (m Matcher) eligibleLoader(l model.Loader) bool {
	switch l.Status {
	case model.StatusActive:
	case model.StatusIdle:
		if l.IdleTimeMinutes <= m.MinIdleMinutes {
			return false
		}
	default:
		return false
	}
	return l.CurrentMaterial.Category() == model.CategoryROM
}

func (m Matcher) eligibleHauler(h model.Hauler) bool {
	return h.Status == model.StatusIdle ||
		h.WaitTimeMinutes > m.MinWaitMinutes ||
		h.AssignedLoaderID == ""
}

// Candidates scores the full cross-product of eligible pairs. The snapshot
// is ordered by equipment id, so generation order is lexicographic on
// (loaderID, haulerID); combined with the stable sort in Match this is the
// documented deterministic tie-break.
func (m Matcher) Candidates(snap fleet.Snapshot) []Candidate {
	var out []Candidate
	for _, l := range snap.Loaders {
		if !m.eligibleLoader(l) {
			continue
		}
		for _, h := range snap.Haulers {
			if !m.eligibleHauler(h) {
				continue
			}
			out = append(out, m.Scorer.Score(l, h))
		}
	}
	return out
}

// Match selects a conflict-free subset of the scored candidates, at most
// MaxMatches pairs, no equipment id used twice.
func (m Matcher) Match(snap fleet.Snapshot) []Candidate {
	cands := m.Candidates(snap)
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Score > cands[j].Score })

	usedLoaders := make(map[string]bool)
	usedHaulers := make(map[string]bool)
	var accepted []Candidate
	for _, c := range cands {
		if usedLoaders[c.LoaderID] || usedHaulers[c.HaulerID] {
			continue
		}
		accepted = append(accepted, c)
		usedLoaders[c.LoaderID] = true
		usedHaulers[c.HaulerID] = true
		if m.MaxMatches > 0 && len(accepted) == m.MaxMatches {
			break
		}
	}
	return accepted
}
