package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-amm/internal/core/domain"
	"github.com/tdex-network/tdex-amm/internal/core/ports"
	dbbadger "github.com/tdex-network/tdex-amm/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/tdex-amm/internal/infrastructure/storage/db/inmemory"
)

var ctx = context.Background()

type poolRepository struct {
	Name        string
	RepoManager ports.RepoManager
}

func TestPoolRepositoryImplementations(t *testing.T) {
	repositories := createPoolRepositories(t)

	for i := range repositories {
		repo := repositories[i]

		t.Run(repo.Name, func(t *testing.T) {
			t.Parallel()

			t.Run("testAddAndGetPool", func(t *testing.T) {
				t.Parallel()
				testAddAndGetPool(t, repo.RepoManager.PoolRepository())
			})

			t.Run("testGetAllPools", func(t *testing.T) {
				testGetAllPools(t, repo.RepoManager.PoolRepository())
			})

			t.Run("testUpdatePool", func(t *testing.T) {
				t.Parallel()
				testUpdatePool(t, repo.RepoManager.PoolRepository())
			})

			t.Run("testUpdatePoolRollback", func(t *testing.T) {
				t.Parallel()
				testUpdatePoolRollback(t, repo.RepoManager.PoolRepository())
			})
		})
	}
}

func testAddAndGetPool(t *testing.T, repo domain.PoolRepository) {
	pool := makeRandomPool(0)

	err := repo.AddPool(ctx, pool)
	require.NoError(t, err)

	err = repo.AddPool(ctx, pool)
	require.ErrorIs(t, err, domain.ErrPoolAlreadyExists)

	storedPool, err := repo.GetPoolByID(ctx, pool.ID)
	require.NoError(t, err)
	require.NotNil(t, storedPool)
	require.Equal(t, pool, *storedPool)

	// Stored pools are copies.
	storedPool.Ledger.Balances["alice"] = 0
	storedPool, err = repo.GetPoolByID(ctx, pool.ID)
	require.NoError(t, err)
	require.Equal(t, pool.Ledger.Balances, storedPool.Ledger.Balances)

	_, err = repo.GetPoolByID(ctx, "unknown")
	require.ErrorIs(t, err, domain.ErrPoolNotFound)
}

func testGetAllPools(t *testing.T, repo domain.PoolRepository) {
	pools, err := repo.GetAllPools(ctx)
	require.NoError(t, err)
	count := len(pools)

	// Pools are inserted in reverse order on purpose.
	for _, sequence := range []uint64{1002, 1001, 1000} {
		err := repo.AddPool(ctx, makeRandomPool(sequence))
		require.NoError(t, err)
	}

	pools, err = repo.GetAllPools(ctx)
	require.NoError(t, err)
	require.Len(t, pools, count+3)
	for i := 1; i < len(pools); i++ {
		require.LessOrEqual(t, pools[i-1].Sequence, pools[i].Sequence)
	}
	require.Equal(t, uint64(1002), pools[len(pools)-1].Sequence)
}

func testUpdatePool(t *testing.T, repo domain.PoolRepository) {
	pool := makeRandomPool(0)
	// Pools without liquidity have an empty ledger.
	pool.Ledger.TotalShares = 0
	pool.Ledger.Balances = map[string]uint64{}

	err := repo.AddPool(ctx, pool)
	require.NoError(t, err)

	err = repo.UpdatePool(
		ctx, pool.ID, func(p *domain.PoolState) (*domain.PoolState, error) {
			require.NotNil(t, p.Ledger.Balances)
			p.ReserveA += 1e8
			p.TreasuryFeeA += 1e6
			p.Ledger.TotalShares = 10
			p.Ledger.Balances["bob"] = 10
			return p, nil
		},
	)
	require.NoError(t, err)

	storedPool, err := repo.GetPoolByID(ctx, pool.ID)
	require.NoError(t, err)
	require.Equal(t, pool.ReserveA+1e8, storedPool.ReserveA)
	require.Equal(t, uint64(1e6), storedPool.TreasuryFeeA)
	require.Equal(t, map[string]uint64{"bob": 10}, storedPool.Ledger.Balances)

	err = repo.UpdatePool(
		ctx, "unknown", func(p *domain.PoolState) (*domain.PoolState, error) {
			return p, nil
		},
	)
	require.ErrorIs(t, err, domain.ErrPoolNotFound)
}

func testUpdatePoolRollback(t *testing.T, repo domain.PoolRepository) {
	pool := makeRandomPool(0)
	err := repo.AddPool(ctx, pool)
	require.NoError(t, err)

	expectedErr := errors.New("something went wrong")
	err = repo.UpdatePool(
		ctx, pool.ID, func(p *domain.PoolState) (*domain.PoolState, error) {
			p.ReserveA = 0
			p.Ledger.Balances["alice"] = 0
			return nil, expectedErr
		},
	)
	require.ErrorIs(t, err, expectedErr)

	storedPool, err := repo.GetPoolByID(ctx, pool.ID)
	require.NoError(t, err)
	require.Equal(t, pool, *storedPool)
}

func createPoolRepositories(t *testing.T) []poolRepository {
	badgerRepoManager, err := dbbadger.NewRepoManager(t.TempDir(), nil)
	require.NoError(t, err)
	badgerInMemoryRepoManager, err := dbbadger.NewRepoManager("", nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		badgerRepoManager.Close()
		badgerInMemoryRepoManager.Close()
	})

	return []poolRepository{
		{
			Name:        "badger",
			RepoManager: badgerRepoManager,
		},
		{
			Name:        "badger_inmemory",
			RepoManager: badgerInMemoryRepoManager,
		},
		{
			Name:        "inmemory",
			RepoManager: inmemory.NewRepoManager(),
		},
	}
}
