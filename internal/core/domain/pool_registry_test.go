package domain_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-amm/internal/core/domain"
)

func newTestRegistry(t *testing.T, gw domain.AssetTransferGateway) *domain.PoolRegistry {
	registry, err := domain.NewPoolRegistry(gw, owner, defaultSlippage)
	require.NoError(t, err)
	return registry
}

func TestNewPoolRegistry(t *testing.T) {
	t.Parallel()

	_, err := domain.NewPoolRegistry(newMockGateway(), "", defaultSlippage)
	require.ErrorIs(t, err, domain.ErrInvalidAccount)

	_, err = domain.NewPoolRegistry(newMockGateway(), owner, 100*1e8+1)
	require.ErrorIs(t, err, domain.ErrInvalidSlippage)
}

func TestCreatePool(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, newMockGateway())

	pool, created, err := registry.CreatePool(ctx, assetB, assetA, treasury, 3)
	require.NoError(t, err)
	require.True(t, created)
	require.True(t, pool.IsActive())
	require.Equal(t, domain.PoolKey{AssetA: assetA, AssetB: assetB, FeeNumerator: 3}, pool.Key())
	require.Equal(t, domain.NewPoolKey(assetA, assetB, 3).ShareToken(), pool.GetShareToken())
	require.Equal(t, uint64(0), pool.Sequence())

	// Both argument orders resolve to the same pool, and calling again is
	// idempotent.
	for _, pair := range [][2]string{{assetA, assetB}, {assetB, assetA}} {
		other, created, err := registry.CreatePool(ctx, pair[0], pair[1], treasury, 3)
		require.NoError(t, err)
		require.False(t, created)
		require.Equal(t, pool.ID(), other.ID())
	}
	require.Len(t, registry.GetAllPools(), 1)

	anotherTier, created, err := registry.CreatePool(ctx, assetA, assetB, treasury, 1)
	require.NoError(t, err)
	require.True(t, created)
	require.NotEqual(t, pool.ID(), anotherTier.ID())
	require.NotEqual(t, pool.GetShareToken(), anotherTier.GetShareToken())
	require.Equal(t, uint64(1), anotherTier.Sequence())

	otherPair, _, err := registry.CreatePool(ctx, assetA, assetC, treasury, 3)
	require.NoError(t, err)

	pools := registry.GetAllPools()
	require.Len(t, pools, 3)
	require.Equal(t, pool.ID(), pools[0].ID())
	require.Equal(t, anotherTier.ID(), pools[1].ID())
	require.Equal(t, otherPair.ID(), pools[2].ID())

	// The returned slice is a copy.
	pools[0] = nil
	require.NotNil(t, registry.GetAllPools()[0])

	require.Equal(t, pool, registry.GetPool(assetB, assetA, 3))
	require.Equal(t, anotherTier, registry.GetPoolByID(anotherTier.ID()))
	require.Nil(t, registry.GetPool(assetA, assetB, 5))
	require.Nil(t, registry.GetPoolByID("unknown"))
	require.Len(t, registry.GetPools(assetB, assetA), 2)
	require.Empty(t, registry.GetPools(assetB, assetC))
}

func TestFailingCreatePool(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, newMockGateway())

	tests := []struct {
		name          string
		assetA        string
		assetB        string
		fee           uint64
		expectedError error
	}{
		{"same_asset", assetA, assetA, 1, domain.ErrSameAsset},
		{"null_asset", assetA, "0x0000", 1, domain.ErrInvalidAsset},
		{"zero_fee", assetA, assetB, 0, domain.ErrInvalidFee},
	}
	for _, tt := range tests {
		_, _, err := registry.CreatePool(ctx, tt.assetA, tt.assetB, treasury, tt.fee)
		require.ErrorIs(t, err, tt.expectedError, tt.name)
	}

	gw := &mockGateway{}
	gw.On("EnsureAssetRegistered", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.StatusUnavailable)
	failing := newTestRegistry(t, gw)

	_, _, err := failing.CreatePool(ctx, assetA, assetB, treasury, 1)
	require.ErrorIs(t, err, domain.ErrTransferFailure)
	require.Empty(t, failing.GetAllPools())
}

func TestConcurrentCreatePool(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, newMockGateway())

	ids := make([]string, 10)
	wg := &sync.WaitGroup{}
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pool, _, err := registry.CreatePool(ctx, assetA, assetB, treasury, 1)
			if err == nil {
				ids[i] = pool.ID()
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, registry.GetAllPools(), 1)
	for _, id := range ids {
		require.Equal(t, registry.GetAllPools()[0].ID(), id)
	}
}

func TestRecommendedPoolForSwap(t *testing.T) {
	t.Parallel()

	gw := newMockGateway()
	registry := newTestRegistry(t, gw)

	// Fee tiers are created in reverse order so that the cheapest pool is the
	// last one.
	pools := make([]*domain.Pool, 0)
	for _, fee := range []uint64{5, 3, 1} {
		pool, _, err := registry.CreatePool(ctx, assetA, assetB, treasury, fee)
		require.NoError(t, err)
		_, err = pool.AddLiquidity(ctx, alice, 200*1e8, 220*1e8)
		require.NoError(t, err)
		pools = append(pools, pool)
	}
	otherPair, _, err := registry.CreatePool(ctx, assetA, assetC, treasury, 1)
	require.NoError(t, err)
	_, err = otherPair.AddLiquidity(ctx, alice, 1e8, 1e12)
	require.NoError(t, err)

	t.Run("best_output", func(t *testing.T) {
		rec := registry.RecommendedPoolForSwap(assetA, assetB, 1e8)
		require.True(t, rec.Found())
		require.Equal(t, pools[2].ID(), rec.Pool.ID())
		require.Equal(t, uint64(108363600), rec.AmountOut())

		for _, pool := range registry.GetPools(assetA, assetB) {
			quote, err := pool.GetOutGivenIn(assetA, 1e8)
			require.NoError(t, err)
			require.GreaterOrEqual(t, rec.AmountOut(), quote.AmountOut)
		}
	})

	t.Run("tie_goes_to_earliest", func(t *testing.T) {
		// With such a small amount the fee rounds down to zero in every tier.
		rec := registry.RecommendedPoolForSwap(assetB, assetA, 10)
		require.True(t, rec.Found())
		require.Equal(t, pools[0].ID(), rec.Pool.ID())
		require.Equal(t, uint64(9), rec.AmountOut())
	})

	t.Run("deeper_pool_wins", func(t *testing.T) {
		// Liquidity added to the most expensive tier makes it the best one.
		_, err := pools[0].AddLiquidity(ctx, alice, 2000*1e8, 2200*1e8)
		require.NoError(t, err)
		defer func() {
			_, _, err := pools[0].RemoveLiquidity(ctx, alice, pools[0].BalanceOf(alice))
			require.NoError(t, err)
		}()

		rec := registry.RecommendedPoolForSwap(assetA, assetB, 50*1e8)
		require.True(t, rec.Found())
		require.Equal(t, pools[0].ID(), rec.Pool.ID())
	})

	t.Run("no_match", func(t *testing.T) {
		tests := []struct {
			name     string
			assetIn  string
			assetOut string
			amount   uint64
		}{
			{"unknown_pair", assetB, assetC, 1e8},
			{"same_asset", assetA, assetA, 1e8},
			{"zero_amount", assetA, assetB, 0},
			{"amount_too_low", assetB, assetA, 1},
		}
		for _, tt := range tests {
			rec := registry.RecommendedPoolForSwap(tt.assetIn, tt.assetOut, tt.amount)
			require.False(t, rec.Found(), tt.name)
			require.Nil(t, rec.Quote, tt.name)
			require.Zero(t, rec.AmountOut(), tt.name)
		}
	})
}

func TestRecommendedPoolForSwapSkipsEmptyPools(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, newMockGateway())

	_, _, err := registry.CreatePool(ctx, assetA, assetB, treasury, 1)
	require.NoError(t, err)
	funded, _, err := registry.CreatePool(ctx, assetA, assetB, treasury, 5)
	require.NoError(t, err)
	_, err = funded.AddLiquidity(ctx, alice, 100*1e8, 100*1e8)
	require.NoError(t, err)

	rec := registry.RecommendedPoolForSwap(assetA, assetB, 1e8)
	require.True(t, rec.Found())
	require.Equal(t, funded.ID(), rec.Pool.ID())
}

func TestRegistryRestorePool(t *testing.T) {
	t.Parallel()

	gw := newMockGateway()
	source := newTestRegistry(t, gw)
	for _, fee := range []uint64{3, 1} {
		_, _, err := source.CreatePool(ctx, assetA, assetB, treasury, fee)
		require.NoError(t, err)
	}

	registry := newTestRegistry(t, gw)
	for _, pool := range source.GetAllPools() {
		restored, err := domain.RestorePool(pool.State(), gw)
		require.NoError(t, err)
		require.NoError(t, registry.RestorePool(restored))
	}
	require.Len(t, registry.GetAllPools(), 2)
	require.Equal(t, uint64(3), registry.GetAllPools()[0].GetFee())

	restored, err := domain.RestorePool(source.GetAllPools()[0].State(), gw)
	require.NoError(t, err)
	require.ErrorIs(t, registry.RestorePool(restored), domain.ErrPoolAlreadyExists)
	require.ErrorIs(
		t, registry.RestorePool(domain.NewPool(gw)), domain.ErrPoolNotInitialized,
	)

	// Pools created after restoring come after the restored ones.
	pool, created, err := registry.CreatePool(ctx, assetA, assetC, treasury, 1)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, uint64(2), pool.Sequence())
}

func TestRegistryLookupsDuringPendingSwap(t *testing.T) {
	t.Parallel()

	started, release := make(chan struct{}), make(chan struct{})
	gw := &mockGateway{}
	gw.On(
		"TransferInto", mock.Anything, mock.Anything, mock.Anything, "slow", mock.Anything,
	).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(domain.StatusSuccess)
	withSuccess(gw)

	registry := newTestRegistry(t, gw)
	busy, _, err := registry.CreatePool(ctx, assetA, assetB, treasury, 1)
	require.NoError(t, err)
	_, err = busy.AddLiquidity(ctx, alice, 100*1e8, 100*1e8)
	require.NoError(t, err)
	idle, _, err := registry.CreatePool(ctx, assetA, assetC, treasury, 1)
	require.NoError(t, err)
	_, err = idle.AddLiquidity(ctx, alice, 100*1e8, 100*1e8)
	require.NoError(t, err)

	swapped := make(chan error, 1)
	go func() {
		_, err := busy.SwapToken(ctx, "slow", assetA, 1e8, nil)
		swapped <- err
	}()
	<-started

	type lookupResult struct {
		pairPools, allPools []*domain.Pool
		rec                 domain.Recommendation
	}
	lookups := make(chan lookupResult, 1)
	go func() {
		lookups <- lookupResult{
			pairPools: registry.GetPools(assetA, assetC),
			allPools:  registry.GetAllPools(),
			rec:       registry.RecommendedPoolForSwap(assetA, assetC, 1e8),
		}
	}()

	select {
	case res := <-lookups:
		require.Len(t, res.pairPools, 1)
		require.Len(t, res.allPools, 2)
		require.True(t, res.rec.Found())
		require.Equal(t, idle.ID(), res.rec.Pool.ID())
	case <-time.After(5 * time.Second):
		t.Fatal("registry lookups blocked by a pending swap on another pair")
	}

	close(release)
	require.NoError(t, <-swapped)
}

func TestCreatePoolWithStore(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, newMockGateway())
	errStore := errors.New("store unavailable")

	pool, created, err := registry.CreatePoolWithStore(
		ctx, assetA, assetB, treasury, 1,
		func(domain.PoolState) error { return errStore },
	)
	require.ErrorIs(t, err, errStore)
	require.False(t, created)
	require.Nil(t, pool)
	require.Nil(t, registry.GetPool(assetA, assetB, 1))
	require.Empty(t, registry.GetAllPools())

	var stored []domain.PoolState
	store := func(state domain.PoolState) error {
		stored = append(stored, state)
		return nil
	}
	pool, created, err = registry.CreatePoolWithStore(ctx, assetA, assetB, treasury, 1, store)
	require.NoError(t, err)
	require.True(t, created)
	require.Len(t, stored, 1)
	require.Equal(t, pool.State(), stored[0])
	require.Equal(t, uint64(0), stored[0].Sequence)

	// Existing pools are returned without storing them again.
	same, created, err := registry.CreatePoolWithStore(ctx, assetB, assetA, treasury, 1, store)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, pool.ID(), same.ID())
	require.Len(t, stored, 1)
}
