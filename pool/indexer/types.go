package indexer

import "github.com/puckydev/puckswap-client-go/pool"

// IndexedPools defines the methods for accessing an indexed pool-set snapshot.
type IndexedPools interface {
	GetByID(id string) (pool.Pool, bool)
	GetByAsset(asset pool.AssetID) []pool.Pool
	All() []pool.Pool
}
