package inmemory

import (
	"github.com/tdex-network/tdex-amm/internal/core/domain"
	"github.com/tdex-network/tdex-amm/internal/core/ports"
)

type RepoManager struct {
	poolRepository domain.PoolRepository
}

func NewRepoManager() ports.RepoManager {
	return &RepoManager{
		poolRepository: NewPoolRepositoryImpl(),
	}
}

func (d *RepoManager) PoolRepository() domain.PoolRepository {
	return d.poolRepository
}

func (d *RepoManager) Close() {}
