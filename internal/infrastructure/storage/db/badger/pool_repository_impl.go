package dbbadger

import (
	"context"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/tdex-amm/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type poolRepositoryImpl struct {
	store *badgerhold.Store
}

// NewPoolRepositoryImpl initialize a badger implementation of the
// domain.PoolRepository.
func NewPoolRepositoryImpl(store *badgerhold.Store) domain.PoolRepository {
	return &poolRepositoryImpl{store}
}

func (r *poolRepositoryImpl) AddPool(
	_ context.Context, pool domain.PoolState,
) error {
	if err := r.store.Insert(pool.ID, &pool); err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrPoolAlreadyExists
		}
		return err
	}
	return nil
}

func (r *poolRepositoryImpl) GetPoolByID(
	_ context.Context, id string,
) (*domain.PoolState, error) {
	var pool domain.PoolState
	if err := r.store.Get(id, &pool); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrPoolNotFound
		}
		return nil, err
	}
	return normalize(&pool), nil
}

func (r *poolRepositoryImpl) GetAllPools(
	_ context.Context,
) ([]domain.PoolState, error) {
	var pools []domain.PoolState
	if err := r.store.Find(&pools, nil); err != nil {
		return nil, err
	}

	for i := range pools {
		normalize(&pools[i])
	}
	sort.SliceStable(pools, func(i, j int) bool {
		return pools[i].Sequence < pools[j].Sequence
	})
	return pools, nil
}

func (r *poolRepositoryImpl) UpdatePool(
	_ context.Context,
	id string, updateFn func(p *domain.PoolState) (*domain.PoolState, error),
) error {
	return r.store.Badger().Update(func(tx *badger.Txn) error {
		var pool domain.PoolState
		if err := r.store.TxGet(tx, id, &pool); err != nil {
			if err == badgerhold.ErrNotFound {
				return domain.ErrPoolNotFound
			}
			return err
		}

		updatedPool, err := updateFn(normalize(&pool))
		if err != nil {
			return err
		}
		return r.store.TxUpdate(tx, id, updatedPool)
	})
}

// normalize restores the empty balance map that the encoder drops.
func normalize(pool *domain.PoolState) *domain.PoolState {
	if pool.Ledger.Balances == nil {
		pool.Ledger.Balances = make(map[string]uint64)
	}
	return pool
}
