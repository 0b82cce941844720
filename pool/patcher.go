package pool

// Patcher constructs a new pool-set snapshot by applying a diff to a previous
// one. Every pool carried into the result is deep-copied so the new snapshot
// shares no *big.Int memory with the previous state or with the diff.
func Patcher(prevState []Pool, diff PoolSetDiff) ([]Pool, error) {
	newStateMap := make(map[string]Pool, len(prevState))
	for _, p := range prevState {
		newStateMap[p.ID] = DeepCopy(p)
	}

	for _, poolIDToDelete := range diff.Deletions {
		delete(newStateMap, poolIDToDelete)
	}

	for _, updatedPool := range diff.Updates {
		newStateMap[updatedPool.ID] = DeepCopy(updatedPool)
	}

	for _, addedPool := range diff.Additions {
		newStateMap[addedPool.ID] = DeepCopy(addedPool)
	}

	finalState := make([]Pool, 0, len(newStateMap))
	for _, p := range newStateMap {
		finalState = append(finalState, p)
	}

	return finalState, nil
}
