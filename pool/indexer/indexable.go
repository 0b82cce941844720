package indexer

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/puckydev/puckswap-client-go/pool"
)

// Indexer builds indexed views over raw pool-set snapshots.
type Indexer struct{}

// New creates a new Indexer.
func New() *Indexer {
	return &Indexer{}
}

// Index creates an indexed pool set from a raw slice of pools.
func (i *Indexer) Index(pools []pool.Pool) IndexedPools {
	return NewIndexablePoolSet(pools)
}

// IndexablePoolSet provides fast, indexed access to one pool-set snapshot.
type IndexablePoolSet struct {
	byID    map[string]pool.Pool
	byAsset map[pool.AssetID]mapset.Set[string]
	all     []pool.Pool
}

// NewIndexablePoolSet creates a new indexed pool set.
func NewIndexablePoolSet(pools []pool.Pool) *IndexablePoolSet {
	byID := make(map[string]pool.Pool, len(pools))
	byAsset := make(map[pool.AssetID]mapset.Set[string])

	for _, p := range pools {
		byID[p.ID] = p

		ids, ok := byAsset[p.Asset]
		if !ok {
			ids = mapset.NewThreadUnsafeSet[string]()
			byAsset[p.Asset] = ids
		}
		ids.Add(p.ID)
	}

	return &IndexablePoolSet{
		byID:    byID,
		byAsset: byAsset,
		all:     pools,
	}
}

// GetByID retrieves a pool by its unique ID.
func (ips *IndexablePoolSet) GetByID(id string) (pool.Pool, bool) {
	p, ok := ips.byID[id]
	return p, ok
}

// GetByAsset returns every pool whose paired asset matches. Multiple pools per
// asset can exist while a deprecated fee tier is being drained.
func (ips *IndexablePoolSet) GetByAsset(asset pool.AssetID) []pool.Pool {
	ids, ok := ips.byAsset[asset]
	if !ok {
		return nil
	}

	pools := make([]pool.Pool, 0, ids.Cardinality())
	ids.Each(func(id string) bool {
		if p, found := ips.byID[id]; found {
			pools = append(pools, p)
		}
		return false
	})
	return pools
}

// All returns a defensive copy of the slice of all pools.
func (ips *IndexablePoolSet) All() []pool.Pool {
	allCopy := make([]pool.Pool, len(ips.all))
	copy(allCopy, ips.all)
	return allCopy
}
