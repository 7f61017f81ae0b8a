package domain

import "context"

// PoolRepository is the abstraction for any kind of database intended to
// persist Pools.
type PoolRepository interface {
	// AddPool adds a new pool to the repository.
	AddPool(ctx context.Context, pool PoolState) error
	// GetPoolByID returns the pool with the given id.
	GetPoolByID(ctx context.Context, id string) (*PoolState, error)
	// GetAllPools returns all pools sorted by insertion sequence.
	GetAllPools(ctx context.Context) ([]PoolState, error)
	// UpdatePool updates the state of a pool. The closure function let's to
	// commit multiple changes to a certain pool in a transactional way.
	UpdatePool(
		ctx context.Context,
		id string, updateFn func(p *PoolState) (*PoolState, error),
	) error
}
