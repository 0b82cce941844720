package pool

// PoolSetDiff describes the changes between two pool-set snapshots.
type PoolSetDiff struct {
	Additions []Pool   `json:"additions,omitempty"`
	Updates   []Pool   `json:"updates,omitempty"`
	Deletions []string `json:"deletions,omitempty"`
}

// IsEmpty returns true if the diff contains no changes.
func (d PoolSetDiff) IsEmpty() bool {
	return len(d.Additions) == 0 && len(d.Updates) == 0 && len(d.Deletions) == 0
}

// Differ calculates the difference between two pool-set snapshots.
// Both slices are converted to maps keyed by pool ID for O(1) lookups; the new
// map yields additions and updates, the old map yields deletions.
func Differ(old, new []Pool) PoolSetDiff {
	oldPoolsMap := make(map[string]Pool, len(old))
	for _, p := range old {
		oldPoolsMap[p.ID] = p
	}

	newPoolsMap := make(map[string]Pool, len(new))
	for _, p := range new {
		newPoolsMap[p.ID] = p
	}

	var additions []Pool
	var updates []Pool
	var deletions []string

	for newID, newPool := range newPoolsMap {
		oldPool, exists := oldPoolsMap[newID]
		if !exists {
			additions = append(additions, newPool)
			continue
		}

		// Manual field comparison on the values that change across blocks:
		// reserves move on every swap, LP supply on every deposit/withdrawal.
		// This is significantly faster than reflect.DeepEqual.
		if oldPool.BaseReserve.Cmp(newPool.BaseReserve) != 0 ||
			oldPool.TokenReserve.Cmp(newPool.TokenReserve) != 0 ||
			oldPool.LPSupply.Cmp(newPool.LPSupply) != 0 ||
			oldPool.FeeBps != newPool.FeeBps {
			updates = append(updates, newPool)
		}
	}

	for oldID := range oldPoolsMap {
		if _, exists := newPoolsMap[oldID]; !exists {
			deletions = append(deletions, oldID)
		}
	}

	return PoolSetDiff{
		Additions: additions,
		Updates:   updates,
		Deletions: deletions,
	}
}
