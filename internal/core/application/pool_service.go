package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-amm/internal/core/domain"
	"github.com/tdex-network/tdex-amm/internal/core/ports"
)

type PoolService interface {
	CreatePool(
		ctx context.Context, assetA, assetB, treasury string, feeNumerator uint64,
	) (*PoolInfo, error)
	ListPools(ctx context.Context) ([]PoolInfo, error)
	GetPool(ctx context.Context, poolID string) (*PoolInfo, error)
	FindPool(
		ctx context.Context, assetA, assetB string, feeNumerator uint64,
	) (*PoolInfo, error)
	AddLiquidity(
		ctx context.Context, poolID, caller string, amountA, amountB uint64,
	) (uint64, error)
	RemoveLiquidity(
		ctx context.Context, poolID, caller string, shares uint64,
	) (uint64, uint64, error)
	Swap(
		ctx context.Context, poolID, caller, assetIn string, amountIn uint64,
		slippage *uint64,
	) (*domain.SwapReceipt, error)
	PreviewSwapOut(
		ctx context.Context, poolID, assetIn string, amountIn uint64,
	) (*SwapPreview, error)
	PreviewSwapIn(
		ctx context.Context, poolID, assetOut string, amountOut uint64,
	) (*SwapPreview, error)
	RecommendPool(
		ctx context.Context, assetIn, assetOut string, amountIn uint64,
	) (*PoolRecommendation, error)
	SetSlippage(
		ctx context.Context, poolID, caller string, slippage uint64,
	) error
	GetShareBalance(
		ctx context.Context, poolID, holder string,
	) (uint64, error)
}

type poolService struct {
	registry        *domain.PoolRegistry
	repository      domain.PoolRepository
	metrics         *metrics
	defaultTreasury string
	feeTiers        map[uint64]struct{}

	poolLocks map[string]*sync.Mutex
	lock      *sync.Mutex
}

// NewPoolService restores every pool persisted in the repository and
// returns a service that keeps them in sync with the operations it
// executes. Metrics are registered with registerer if not nil.
func NewPoolService(
	ctx context.Context,
	repoManager ports.RepoManager,
	gateway domain.AssetTransferGateway,
	cfg Config,
	registerer prometheus.Registerer,
) (PoolService, error) {
	return newPoolService(ctx, repoManager, gateway, cfg, registerer)
}

func newPoolService(
	ctx context.Context,
	repoManager ports.RepoManager,
	gateway domain.AssetTransferGateway,
	cfg Config,
	registerer prometheus.Registerer,
) (*poolService, error) {
	if repoManager == nil {
		return nil, ErrMissingRepository
	}
	if gateway == nil {
		return nil, ErrMissingGateway
	}

	registry, err := domain.NewPoolRegistry(gateway, cfg.Owner, cfg.DefaultSlippage)
	if err != nil {
		return nil, err
	}

	feeTiers := make(map[uint64]struct{}, len(cfg.FeeTiers))
	for _, tier := range cfg.FeeTiers {
		feeTiers[tier] = struct{}{}
	}

	svc := &poolService{
		registry:        registry,
		repository:      repoManager.PoolRepository(),
		metrics:         newMetrics(registerer),
		defaultTreasury: cfg.DefaultTreasury,
		feeTiers:        feeTiers,
		poolLocks:       make(map[string]*sync.Mutex),
		lock:            &sync.Mutex{},
	}
	if err := svc.restorePools(ctx, gateway); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *poolService) CreatePool(
	ctx context.Context, assetA, assetB, treasury string, feeNumerator uint64,
) (*PoolInfo, error) {
	if len(s.feeTiers) > 0 {
		if _, ok := s.feeTiers[feeNumerator]; !ok {
			s.metrics.recordFailure(opCreatePool, ErrFeeTierNotAllowed)
			return nil, ErrFeeTierNotAllowed
		}
	}
	if treasury == "" {
		treasury = s.defaultTreasury
	}
	if treasury == "" {
		s.metrics.recordFailure(opCreatePool, ErrMissingTreasury)
		return nil, ErrMissingTreasury
	}

	pool, created, err := s.registry.CreatePoolWithStore(
		ctx, assetA, assetB, treasury, feeNumerator,
		func(state domain.PoolState) error {
			if err := s.repository.AddPool(ctx, state); err != nil {
				return fmt.Errorf("failed to persist pool %s: %w", state.ID, err)
			}
			return nil
		},
	)
	if err != nil {
		s.metrics.recordFailure(opCreatePool, err)
		log.WithError(err).WithFields(log.Fields{
			"asset_a": assetA,
			"asset_b": assetB,
			"fee":     feeNumerator,
		}).Warn("failed to create pool")
		return nil, err
	}

	if created {
		state := pool.State()
		s.metrics.pools.Inc()
		s.metrics.updatePool(state)
		log.WithFields(log.Fields{
			"pool":     state.ID,
			"asset_a":  state.AssetA,
			"asset_b":  state.AssetB,
			"fee":      state.FeeNumerator,
			"sequence": state.Sequence,
		}).Info("pool created")
	}

	info := newPoolInfo(pool)
	return &info, nil
}

func (s *poolService) ListPools(_ context.Context) ([]PoolInfo, error) {
	pools := s.registry.GetAllPools()
	infos := make([]PoolInfo, 0, len(pools))
	for _, pool := range pools {
		infos = append(infos, newPoolInfo(pool))
	}
	return infos, nil
}

func (s *poolService) GetPool(
	_ context.Context, poolID string,
) (*PoolInfo, error) {
	pool, err := s.getPool(poolID)
	if err != nil {
		return nil, err
	}
	info := newPoolInfo(pool)
	return &info, nil
}

func (s *poolService) FindPool(
	_ context.Context, assetA, assetB string, feeNumerator uint64,
) (*PoolInfo, error) {
	pool := s.registry.GetPool(assetA, assetB, feeNumerator)
	if pool == nil {
		return nil, domain.ErrPoolNotFound
	}
	info := newPoolInfo(pool)
	return &info, nil
}

func (s *poolService) AddLiquidity(
	ctx context.Context, poolID, caller string, amountA, amountB uint64,
) (uint64, error) {
	pool, err := s.getPool(poolID)
	if err != nil {
		return 0, err
	}

	unlock := s.lockPool(poolID)
	defer unlock()

	shares, err := pool.AddLiquidity(ctx, caller, amountA, amountB)
	if err != nil {
		s.metrics.recordFailure(opAddLiquidity, err)
		log.WithError(err).WithFields(log.Fields{
			"pool":   poolID,
			"caller": caller,
		}).Warn("failed to add liquidity")
		return 0, err
	}
	persistErr := s.persist(ctx, pool)

	s.metrics.recordLiquidityEvent(poolID, liquidityAdded)
	log.WithFields(log.Fields{
		"pool":     poolID,
		"caller":   caller,
		"amount_a": amountA,
		"amount_b": amountB,
		"shares":   shares,
	}).Info("liquidity added")
	return shares, persistErr
}

func (s *poolService) RemoveLiquidity(
	ctx context.Context, poolID, caller string, shares uint64,
) (uint64, uint64, error) {
	pool, err := s.getPool(poolID)
	if err != nil {
		return 0, 0, err
	}

	unlock := s.lockPool(poolID)
	defer unlock()

	amountA, amountB, err := pool.RemoveLiquidity(ctx, caller, shares)
	if err != nil {
		s.metrics.recordFailure(opRemoveLiquidity, err)
		log.WithError(err).WithFields(log.Fields{
			"pool":   poolID,
			"caller": caller,
		}).Warn("failed to remove liquidity")
		return 0, 0, err
	}
	persistErr := s.persist(ctx, pool)

	s.metrics.recordLiquidityEvent(poolID, liquidityRemoved)
	log.WithFields(log.Fields{
		"pool":     poolID,
		"caller":   caller,
		"shares":   shares,
		"amount_a": amountA,
		"amount_b": amountB,
	}).Info("liquidity removed")
	return amountA, amountB, persistErr
}

func (s *poolService) Swap(
	ctx context.Context, poolID, caller, assetIn string, amountIn uint64,
	slippage *uint64,
) (*domain.SwapReceipt, error) {
	pool, err := s.getPool(poolID)
	if err != nil {
		return nil, err
	}

	unlock := s.lockPool(poolID)
	defer unlock()

	receipt, err := pool.SwapToken(ctx, caller, assetIn, amountIn, slippage)
	if err != nil {
		s.metrics.recordFailure(opSwap, err)
		log.WithError(err).WithFields(log.Fields{
			"pool":      poolID,
			"caller":    caller,
			"asset_in":  assetIn,
			"amount_in": amountIn,
		}).Warn("swap rejected")
		return nil, err
	}
	persistErr := s.persist(ctx, pool)

	s.metrics.recordSwap(receipt)
	log.WithFields(log.Fields{
		"swap":       receipt.ID,
		"pool":       poolID,
		"asset_in":   receipt.AssetIn,
		"amount_in":  receipt.AmountIn,
		"amount_out": receipt.AmountOut,
		"fee":        receipt.Fee,
	}).Info("swap executed")
	return receipt, persistErr
}

func (s *poolService) PreviewSwapOut(
	_ context.Context, poolID, assetIn string, amountIn uint64,
) (*SwapPreview, error) {
	pool, err := s.getPool(poolID)
	if err != nil {
		return nil, err
	}
	quote, err := pool.GetOutGivenIn(assetIn, amountIn)
	if err != nil {
		return nil, err
	}
	preview := newSwapPreview(poolID, assetIn, otherAsset(pool, assetIn), quote)
	return &preview, nil
}

func (s *poolService) PreviewSwapIn(
	_ context.Context, poolID, assetOut string, amountOut uint64,
) (*SwapPreview, error) {
	pool, err := s.getPool(poolID)
	if err != nil {
		return nil, err
	}
	quote, err := pool.GetInGivenOut(assetOut, amountOut)
	if err != nil {
		return nil, err
	}
	preview := newSwapPreview(poolID, otherAsset(pool, assetOut), assetOut, quote)
	return &preview, nil
}

func (s *poolService) RecommendPool(
	_ context.Context, assetIn, assetOut string, amountIn uint64,
) (*PoolRecommendation, error) {
	recommendation := s.registry.RecommendedPoolForSwap(assetIn, assetOut, amountIn)
	if !recommendation.Found() {
		return &PoolRecommendation{}, nil
	}

	info := newPoolInfo(recommendation.Pool)
	preview := newSwapPreview(info.ID, assetIn, assetOut, recommendation.Quote)
	return &PoolRecommendation{Pool: &info, Preview: &preview}, nil
}

func (s *poolService) SetSlippage(
	ctx context.Context, poolID, caller string, slippage uint64,
) error {
	pool, err := s.getPool(poolID)
	if err != nil {
		return err
	}

	unlock := s.lockPool(poolID)
	defer unlock()

	if err := pool.SetSlippage(caller, slippage); err != nil {
		s.metrics.recordFailure(opSetSlippage, err)
		log.WithError(err).WithFields(log.Fields{
			"pool":   poolID,
			"caller": caller,
		}).Warn("failed to update slippage")
		return err
	}
	persistErr := s.persist(ctx, pool)

	log.WithFields(log.Fields{
		"pool":     poolID,
		"slippage": slippage,
	}).Info("pool slippage updated")
	return persistErr
}

func (s *poolService) GetShareBalance(
	_ context.Context, poolID, holder string,
) (uint64, error) {
	pool, err := s.getPool(poolID)
	if err != nil {
		return 0, err
	}
	return pool.BalanceOf(holder), nil
}

func (s *poolService) restorePools(
	ctx context.Context, gateway domain.AssetTransferGateway,
) error {
	states, err := s.repository.GetAllPools(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pools: %w", err)
	}

	for _, state := range states {
		pool, err := domain.RestorePool(state, gateway)
		if err != nil {
			return fmt.Errorf("failed to restore pool %s: %w", state.ID, err)
		}
		if err := s.registry.RestorePool(pool); err != nil {
			return fmt.Errorf("failed to restore pool %s: %w", state.ID, err)
		}
		s.metrics.pools.Inc()
		s.metrics.updatePool(state)
	}

	if len(states) > 0 {
		log.Infof("restored %d pools", len(states))
	}
	return nil
}

// persist must be called while holding the pool lock so that snapshots are
// stored in the same order operations are executed. A pool missing from the
// repository is added back with its whole state. The returned error wraps
// ErrStateNotPersisted.
func (s *poolService) persist(ctx context.Context, pool *domain.Pool) error {
	state := pool.State()
	err := s.repository.UpdatePool(
		ctx, state.ID,
		func(_ *domain.PoolState) (*domain.PoolState, error) {
			return &state, nil
		},
	)
	if errors.Is(err, domain.ErrPoolNotFound) {
		err = s.repository.AddPool(ctx, state)
	}
	if err != nil {
		s.metrics.recordFailure(opPersist, err)
		log.WithError(err).WithField("pool", state.ID).
			Error("failed to persist pool state")
		return fmt.Errorf("%w: pool %s: %v", ErrStateNotPersisted, state.ID, err)
	}
	s.metrics.updatePool(state)
	return nil
}

func (s *poolService) getPool(poolID string) (*domain.Pool, error) {
	pool := s.registry.GetPoolByID(poolID)
	if pool == nil {
		return nil, domain.ErrPoolNotFound
	}
	return pool, nil
}

func (s *poolService) lockPool(poolID string) func() {
	s.lock.Lock()
	poolLock, ok := s.poolLocks[poolID]
	if !ok {
		poolLock = &sync.Mutex{}
		s.poolLocks[poolID] = poolLock
	}
	s.lock.Unlock()

	poolLock.Lock()
	return poolLock.Unlock
}

func otherAsset(pool *domain.Pool, asset string) string {
	assetA, assetB := pool.GetTokenPairAddress()
	if asset == assetA {
		return assetB
	}
	return assetA
}
