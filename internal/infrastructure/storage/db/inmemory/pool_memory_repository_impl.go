package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/tdex-network/tdex-amm/internal/core/domain"
)

// PoolRepositoryImpl represents an in memory storage
type PoolRepositoryImpl struct {
	pools map[string]domain.PoolState

	lock *sync.RWMutex
}

// NewPoolRepositoryImpl returns a new empty PoolRepositoryImpl
func NewPoolRepositoryImpl() *PoolRepositoryImpl {
	return &PoolRepositoryImpl{
		pools: map[string]domain.PoolState{},
		lock:  &sync.RWMutex{},
	}
}

func (r *PoolRepositoryImpl) AddPool(_ context.Context, pool domain.PoolState) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.pools[pool.ID]; ok {
		return domain.ErrPoolAlreadyExists
	}
	r.pools[pool.ID] = copyPool(pool)
	return nil
}

func (r *PoolRepositoryImpl) GetPoolByID(
	_ context.Context, id string,
) (*domain.PoolState, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	pool, ok := r.pools[id]
	if !ok {
		return nil, domain.ErrPoolNotFound
	}
	pool = copyPool(pool)
	return &pool, nil
}

func (r *PoolRepositoryImpl) GetAllPools(_ context.Context) ([]domain.PoolState, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	pools := make([]domain.PoolState, 0, len(r.pools))
	for _, pool := range r.pools {
		pools = append(pools, copyPool(pool))
	}
	sort.SliceStable(pools, func(i, j int) bool {
		return pools[i].Sequence < pools[j].Sequence
	})
	return pools, nil
}

// UpdatePool updates data to a pool identified by its id passing an update
// function. Nothing is stored if the function fails.
func (r *PoolRepositoryImpl) UpdatePool(
	_ context.Context,
	id string, updateFn func(p *domain.PoolState) (*domain.PoolState, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	pool, ok := r.pools[id]
	if !ok {
		return domain.ErrPoolNotFound
	}
	pool = copyPool(pool)

	updatedPool, err := updateFn(&pool)
	if err != nil {
		return err
	}
	r.pools[id] = copyPool(*updatedPool)
	return nil
}

func copyPool(pool domain.PoolState) domain.PoolState {
	balances := make(map[string]uint64, len(pool.Ledger.Balances))
	for holder, balance := range pool.Ledger.Balances {
		balances[holder] = balance
	}
	pool.Ledger.Balances = balances
	return pool
}
