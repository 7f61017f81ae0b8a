package ports

import "github.com/tdex-network/tdex-amm/internal/core/domain"

// RepoManager interface defines the methods for accessing the repositories
// of the service.
type RepoManager interface {
	PoolRepository() domain.PoolRepository
	Close()
}
