package search

import (
	"time"

	"github.com/Aman-CERP/amanmcp-memory/internal/store"
)

// decayFactor buckets a fact's age into the four multiplicative decay
// brackets of SPEC_FULL.md §4.4.
func decayFactor(age time.Duration) float64 {
	switch {
	case age <= 24*time.Hour:
		return 1.0
	case age <= 7*24*time.Hour:
		return 0.95
	case age <= 30*24*time.Hour:
		return 0.85
	default:
		return 0.70
	}
}

// minHeatDelta is the smallest heat change worth writing back; below this
// the decay sweep skips the row entirely (SPEC_FULL.md §4.4).
const minHeatDelta = 0.001

// HeatBoost is added to a fact's heat on every search hit, clamped to
// HeatCeil (SPEC_FULL.md §4.4 post-retrieval annotation).
const HeatBoost = 0.2

// ApplyDecay runs the bucketed decay sweep over every fact in project,
// called before the fetch step of every search (SPEC_FULL.md §4.4: "Heat
// decay runs before the fetch, across the whole project"). last_accessed
// keeps its prior value — decay is not an access — except that a fact never
// accessed gets its own timestamp written there.
func ApplyDecay(st *store.Store, project string, now time.Time) error {
	facts, err := st.ListFactsByProject(project)
	if err != nil {
		return err
	}
	for _, f := range facts {
		accessed := f.Timestamp
		if f.LastAccessed != nil {
			accessed = *f.LastAccessed
		}
		factor := decayFactor(now.Sub(accessed))
		newHeat := store.ClampHeat(f.Heat * factor)
		if abs(newHeat-f.Heat) < minHeatDelta {
			continue
		}
		if err := st.UpdateHeat(f.ID, newHeat, accessed); err != nil {
			return err
		}
	}
	return nil
}

// Boost applies the +0.2 access boost to a fact accessed by a search hit.
func Boost(st *store.Store, id string, currentHeat float64, now time.Time) error {
	return st.UpdateHeat(id, store.ClampHeat(currentHeat+HeatBoost), now)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
