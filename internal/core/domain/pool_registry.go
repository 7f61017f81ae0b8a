package domain

import (
	"context"
	"sync"

	"github.com/tdex-network/tdex-amm/pkg/marketmaking"
	"golang.org/x/sync/errgroup"
)

// Recommendation is the advisory result of PoolRegistry's best price search.
// A zero value means that no registered pool can serve the swap.
type Recommendation struct {
	Pool  *Pool
	Quote *marketmaking.SwapQuote
}

// Found returns whether a pool has been recommended.
func (r Recommendation) Found() bool {
	return r.Pool != nil
}

// AmountOut returns the net output of the recommended pool, 0 if none.
func (r Recommendation) AmountOut() uint64 {
	if r.Quote == nil {
		return 0
	}
	return r.Quote.AmountOut
}

// PoolStoreFunc persists the snapshot of a newly created pool. It's called
// before the pool gets indexed, a failure discards the pool.
type PoolStoreFunc func(state PoolState) error

type registryEntry struct {
	key  PoolKey
	pool *Pool
}

// PoolRegistry creates and indexes pools by canonical asset pair and fee
// tier. The index is append-only and safe for concurrent use, pools it
// returns serialize their own operations.
// The registry lock never wraps a pool lock, so lookups are not held up by
// in-flight swaps.
type PoolRegistry struct {
	gateway         AssetTransferGateway
	owner           string
	defaultSlippage uint64

	entries      []registryEntry
	poolsByKey   map[PoolKey]*Pool
	poolsByID    map[string]*Pool
	nextSequence uint64

	lock *sync.RWMutex
}

// NewPoolRegistry returns an empty registry. Pools it creates move assets
// through gateway, are owned by owner and start with defaultSlippage as
// tolerance.
func NewPoolRegistry(
	gateway AssetTransferGateway, owner string, defaultSlippage uint64,
) (*PoolRegistry, error) {
	if owner == "" {
		return nil, ErrInvalidAccount
	}
	if !isValidSlippage(defaultSlippage) {
		return nil, ErrInvalidSlippage
	}
	return &PoolRegistry{
		gateway:         gateway,
		owner:           owner,
		defaultSlippage: defaultSlippage,
		poolsByKey:      make(map[PoolKey]*Pool),
		poolsByID:       make(map[string]*Pool),
		lock:            &sync.RWMutex{},
	}, nil
}

// Owner returns the account owning the pools created by the registry.
func (r *PoolRegistry) Owner() string {
	return r.owner
}

// CreatePool returns the pool for the given pair and fee tier, creating and
// initializing it if it does not exist yet. The boolean result reports
// whether the pool has been created by this call.
func (r *PoolRegistry) CreatePool(
	ctx context.Context, assetA, assetB, treasury string, feeNumerator uint64,
) (*Pool, bool, error) {
	return r.CreatePoolWithStore(ctx, assetA, assetB, treasury, feeNumerator, nil)
}

// CreatePoolWithStore is like CreatePool, but hands the snapshot of a newly
// created pool to store before making it visible. If store fails the pool is
// not indexed and a later call can create it again. store runs with the
// index locked for writing, so it must not call back into the registry.
func (r *PoolRegistry) CreatePoolWithStore(
	ctx context.Context, assetA, assetB, treasury string, feeNumerator uint64,
	store PoolStoreFunc,
) (*Pool, bool, error) {
	if err := validatePair(assetA, assetB, feeNumerator); err != nil {
		return nil, false, err
	}
	key := NewPoolKey(assetA, assetB, feeNumerator)

	if pool := r.GetPool(assetA, assetB, feeNumerator); pool != nil {
		return pool, false, nil
	}

	// Initialization calls the gateway, so it's done outside of the critical
	// section. Concurrent callers racing for the same key get the pool of the
	// first one that completes.
	pool := NewPool(r.gateway)
	if err := pool.Initialize(ctx, PoolInitArgs{
		Owner:           r.owner,
		AssetA:          key.AssetA,
		AssetB:          key.AssetB,
		Treasury:        treasury,
		FeeNumerator:    feeNumerator,
		Ledger:          NewLiquidityShareLedger(key.ShareToken()),
		DefaultSlippage: r.defaultSlippage,
	}); err != nil {
		return nil, false, err
	}
	state := pool.State()

	r.lock.Lock()
	defer r.lock.Unlock()

	if existing, ok := r.poolsByKey[key]; ok {
		return existing, false, nil
	}

	// The pool is not shared yet, its sequence can be set without locking it.
	state.Sequence = r.nextSequence
	pool.sequence = state.Sequence
	if store != nil {
		if err := store(state); err != nil {
			return nil, false, err
		}
	}
	r.add(key, state.Sequence, pool)
	return pool, true, nil
}

// GetPool returns the pool for the given pair and fee tier, or nil if not
// found. The order of the assets does not matter.
func (r *PoolRegistry) GetPool(assetA, assetB string, feeNumerator uint64) *Pool {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.poolsByKey[NewPoolKey(assetA, assetB, feeNumerator)]
}

// GetPoolByID returns the pool with the given id, or nil if not found.
func (r *PoolRegistry) GetPoolByID(id string) *Pool {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.poolsByID[id]
}

// GetAllPools returns all pools in insertion order.
func (r *PoolRegistry) GetAllPools() []*Pool {
	r.lock.RLock()
	defer r.lock.RUnlock()

	pools := make([]*Pool, 0, len(r.entries))
	for _, e := range r.entries {
		pools = append(pools, e.pool)
	}
	return pools
}

// GetPools returns, in insertion order, the pools of every fee tier for the
// given unordered pair.
func (r *PoolRegistry) GetPools(assetA, assetB string) []*Pool {
	r.lock.RLock()
	defer r.lock.RUnlock()

	pools := make([]*Pool, 0)
	for _, e := range r.entries {
		if e.key.HasPair(assetA, assetB) {
			pools = append(pools, e.pool)
		}
	}
	return pools
}

// RestorePool indexes an already initialized pool, like one rebuilt from a
// persisted snapshot. Pools must be restored in their original insertion
// order.
func (r *PoolRegistry) RestorePool(pool *Pool) error {
	if pool == nil || !pool.IsActive() {
		return ErrPoolNotInitialized
	}
	key, sequence := pool.Key(), pool.Sequence()

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.poolsByKey[key]; ok {
		return ErrPoolAlreadyExists
	}
	if _, ok := r.poolsByID[pool.ID()]; ok {
		return ErrPoolAlreadyExists
	}
	r.add(key, sequence, pool)
	return nil
}

// RecommendedPoolForSwap quotes amountIn of assetIn on every pool of the
// pair, whatever the fee tier, and returns the one giving the strictly
// greatest output. Ties go to the earliest created pool. Pools that cannot
// serve the swap are skipped, and a zero Recommendation is returned if none
// can.
func (r *PoolRegistry) RecommendedPoolForSwap(
	assetIn, assetOut string, amountIn uint64,
) Recommendation {
	if assetIn == assetOut || amountIn == 0 {
		return Recommendation{}
	}
	candidates := r.GetPools(assetIn, assetOut)
	if len(candidates) == 0 {
		return Recommendation{}
	}

	quotes := make([]*marketmaking.SwapQuote, len(candidates))
	g := &errgroup.Group{}
	for i := range candidates {
		i := i
		g.Go(func() error {
			quote, err := candidates[i].GetOutGivenIn(assetIn, amountIn)
			if err != nil {
				return nil
			}
			quotes[i] = quote
			return nil
		})
	}
	// Quote errors only exclude a pool from the ranking, no goroutine fails.
	_ = g.Wait()

	best := Recommendation{}
	for i, quote := range quotes {
		if quote == nil {
			continue
		}
		if best.Quote == nil || quote.AmountOut > best.Quote.AmountOut {
			best = Recommendation{Pool: candidates[i], Quote: quote}
		}
	}
	return best
}

func (r *PoolRegistry) add(key PoolKey, sequence uint64, pool *Pool) {
	if sequence >= r.nextSequence {
		r.nextSequence = sequence + 1
	}
	r.entries = append(r.entries, registryEntry{key: key, pool: pool})
	r.poolsByKey[key] = pool
	r.poolsByID[pool.ID()] = pool
}
