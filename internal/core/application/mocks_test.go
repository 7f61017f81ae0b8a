package application

import (
	"context"
	"errors"
	"sync"

	"github.com/tdex-network/tdex-amm/internal/core/domain"
	"github.com/tdex-network/tdex-amm/internal/infrastructure/storage/db/inmemory"
)

var errRepositoryUnavailable = errors.New("repository unavailable")

/*
 * PoolRepository
 */

// failingPoolRepository wraps an in-memory repository and makes the next
// failAdd calls to AddPool fail, the next dropAdd ones silently discard the
// pool and the next failUpdate calls to UpdatePool fail.
type failingPoolRepository struct {
	domain.PoolRepository

	failAdd    int
	dropAdd    int
	failUpdate int

	lock sync.Mutex
}

func (r *failingPoolRepository) AddPool(
	ctx context.Context, pool domain.PoolState,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.failAdd > 0 {
		r.failAdd--
		return errRepositoryUnavailable
	}
	if r.dropAdd > 0 {
		r.dropAdd--
		return nil
	}
	return r.PoolRepository.AddPool(ctx, pool)
}

func (r *failingPoolRepository) UpdatePool(
	ctx context.Context,
	id string, updateFn func(p *domain.PoolState) (*domain.PoolState, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.failUpdate > 0 {
		r.failUpdate--
		return errRepositoryUnavailable
	}
	return r.PoolRepository.UpdatePool(ctx, id, updateFn)
}

type failingRepoManager struct {
	repo *failingPoolRepository
}

func newFailingRepoManager() *failingRepoManager {
	return &failingRepoManager{
		repo: &failingPoolRepository{
			PoolRepository: inmemory.NewPoolRepositoryImpl(),
		},
	}
}

func (m *failingRepoManager) PoolRepository() domain.PoolRepository {
	return m.repo
}

func (m *failingRepoManager) Close() {}
