package domain

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/tdex-network/tdex-amm/pkg/marketmaking"
	"github.com/tdex-network/tdex-amm/pkg/marketmaking/formula"
	"github.com/tdex-network/tdex-amm/pkg/mathutil"
)

// PoolInitArgs groups the arguments of Pool.Initialize.
type PoolInitArgs struct {
	// Owner is the account allowed to change the default slippage.
	Owner  string
	AssetA string
	AssetB string
	// Treasury is the account fees are credited to. Immutable.
	Treasury string
	// FeeNumerator over mathutil.FeePrecision().
	FeeNumerator uint64
	Ledger       *LiquidityShareLedger
	// DefaultSlippage over mathutil.SlippagePrecision().
	DefaultSlippage uint64
}

// SwapReceipt summarizes a committed swap.
type SwapReceipt struct {
	ID        string
	PoolID    string
	Caller    string
	AssetIn   string
	AssetOut  string
	AmountIn  uint64
	Fee       uint64
	AmountOut uint64
	Slippage  uint64
	ReserveA  uint64
	ReserveB  uint64
}

// Pool is a reserve of two assets that lets the holder of one receive the
// other according to the constant product formula. Every operation runs to
// completion, gateway calls included, before another one can see the state
// it mutates. Reserves and shares are updated only after all the gateway
// legs of an operation succeeded.
type Pool struct {
	id       string
	sequence uint64
	status   PoolStatus
	owner    string
	assetA   string
	assetB   string
	treasury string
	reserveA uint64
	reserveB uint64
	// fee retained in reserves and credited to treasury, per asset.
	treasuryFeeA uint64
	treasuryFeeB uint64
	feeNumerator uint64
	slippage     uint64
	ledger       *LiquidityShareLedger

	gateway AssetTransferGateway
	formula marketmaking.MakingFormula
	lock    *sync.RWMutex
}

// NewPool returns an uninitialized pool moving assets through the given
// gateway.
func NewPool(gateway AssetTransferGateway) *Pool {
	return &Pool{
		id:      uuid.New().String(),
		status:  PoolStatusUninitialized,
		gateway: gateway,
		formula: formula.ConstantProduct{},
		lock:    &sync.RWMutex{},
	}
}

// Initialize activates the pool. It can be called only once.
func (p *Pool) Initialize(ctx context.Context, args PoolInitArgs) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.status == PoolStatusActive {
		return ErrPoolAlreadyInitialized
	}
	if err := validatePair(args.AssetA, args.AssetB, args.FeeNumerator); err != nil {
		return err
	}
	if args.Treasury == "" || args.Owner == "" {
		return ErrInvalidAccount
	}
	if !isValidSlippage(args.DefaultSlippage) {
		return ErrInvalidSlippage
	}
	if args.Ledger == nil {
		return ErrMissingLedger
	}
	if owner := args.Ledger.Owner(); owner != "" && owner != p.id {
		return ErrLedgerInUse
	}

	assetA, assetB := CanonicalPair(args.AssetA, args.AssetB)

	s := &settlement{}
	s.add(
		p.registerAssetLeg(assetA),
		p.registerAssetLeg(assetB),
		p.registerAssetLeg(args.Ledger.Token()),
	)
	if err := s.run(ctx); err != nil {
		return err
	}
	if err := args.Ledger.bind(p.id); err != nil {
		return err
	}

	p.ledger = args.Ledger
	p.owner = args.Owner
	p.assetA = assetA
	p.assetB = assetB
	p.treasury = args.Treasury
	p.feeNumerator = args.FeeNumerator
	p.slippage = args.DefaultSlippage
	p.status = PoolStatusActive
	return nil
}

// AddLiquidity deposits amountA of asset A and amountB of asset B from
// caller and mints the corresponding shares to it.
// The first deposit mints floor(sqrt(amountA * amountB)) shares, the next
// ones mint shares pro-rata to the asset A reserve (or asset B if A is
// empty). The ratio of the deposit is not enforced, depositing at a ratio
// different from the reserves' one moves the pool price.
func (p *Pool) AddLiquidity(
	ctx context.Context, caller string, amountA, amountB uint64,
) (uint64, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if err := p.requireActive(); err != nil {
		return 0, err
	}
	if caller == "" {
		return 0, ErrInvalidAccount
	}
	if amountA == 0 || amountB == 0 {
		return 0, ErrInvalidAmount
	}

	shares, err := p.sharesForDeposit(amountA, amountB)
	if err != nil {
		return 0, err
	}
	reserveA, errA := mathutil.SafeAdd(p.reserveA, amountA)
	reserveB, errB := mathutil.SafeAdd(p.reserveB, amountB)
	_, errS := mathutil.SafeAdd(p.ledger.TotalSupply(), shares)
	if errA != nil || errB != nil || errS != nil {
		return 0, ErrAmountTooBig
	}

	s := &settlement{}
	s.add(
		p.transferInLeg(p.assetA, caller, amountA),
		p.transferInLeg(p.assetB, caller, amountB),
		p.mintSharesLeg(caller, shares),
	)
	if err := s.run(ctx); err != nil {
		return 0, err
	}

	if err := p.ledger.Mint(p.id, caller, shares); err != nil {
		return 0, err
	}
	p.reserveA = reserveA
	p.reserveB = reserveB
	return shares, nil
}

// RemoveLiquidity burns shares of caller and pays out the pro-rata amounts
// of both reserves.
func (p *Pool) RemoveLiquidity(
	ctx context.Context, caller string, shares uint64,
) (uint64, uint64, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if err := p.requireActive(); err != nil {
		return 0, 0, err
	}
	if caller == "" {
		return 0, 0, ErrInvalidAccount
	}
	if shares == 0 {
		return 0, 0, ErrInvalidAmount
	}
	if shares > p.ledger.BalanceOf(caller) {
		return 0, 0, ErrInsufficientBalance
	}

	totalShares := p.ledger.TotalSupply()
	amountA, err := mathutil.MulDivFloor(shares, p.reserveA, totalShares)
	if err != nil {
		return 0, 0, err
	}
	amountB, err := mathutil.MulDivFloor(shares, p.reserveB, totalShares)
	if err != nil {
		return 0, 0, err
	}
	if amountA == 0 && amountB == 0 {
		return 0, 0, ErrAmountTooLow
	}

	s := &settlement{}
	s.add(p.burnSharesLeg(caller, shares))
	if amountA > 0 {
		s.add(p.transferOutLeg(p.assetA, caller, amountA))
	}
	if amountB > 0 {
		s.add(p.transferOutLeg(p.assetB, caller, amountB))
	}
	if err := s.run(ctx); err != nil {
		return 0, 0, err
	}

	if err := p.ledger.Burn(p.id, caller, shares); err != nil {
		return 0, 0, err
	}
	p.reserveA -= amountA
	p.reserveB -= amountB
	return amountA, amountB, nil
}

// SwapToken sells amountIn of tokenIn to the pool in exchange for the other
// asset. The swap is rejected if its slippage exceeds slippageOverride, or
// the pool default tolerance if nil. The fee stays in the reserves and is
// credited to the treasury accounting.
func (p *Pool) SwapToken(
	ctx context.Context, caller, tokenIn string, amountIn uint64,
	slippageOverride *uint64,
) (*SwapReceipt, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if err := p.requireActive(); err != nil {
		return nil, err
	}
	if caller == "" {
		return nil, ErrInvalidAccount
	}
	if !p.isPoolAsset(tokenIn) {
		return nil, ErrUnsupportedToken
	}
	if amountIn == 0 {
		return nil, ErrInvalidAmount
	}

	threshold := p.slippage
	if slippageOverride != nil {
		if !isValidSlippage(*slippageOverride) {
			return nil, ErrInvalidSlippage
		}
		threshold = *slippageOverride
	}

	quote, err := p.outGivenIn(tokenIn, amountIn)
	if err != nil {
		return nil, err
	}
	if quote.Slippage > threshold {
		return nil, &SlippageBreachedError{
			Message:           "slippage tolerance exceeded",
			ComputedSlippage:  quote.Slippage,
			ThresholdSlippage: threshold,
		}
	}

	tokenOut := p.otherAsset(tokenIn)
	s := &settlement{}
	s.add(
		p.transferInLeg(tokenIn, caller, amountIn),
		p.transferOutLeg(tokenOut, caller, quote.AmountOut),
	)
	if err := s.run(ctx); err != nil {
		return nil, err
	}

	if tokenIn == p.assetA {
		p.reserveA, p.reserveB = quote.ResultingBalanceIn, quote.ResultingBalanceOut
		p.treasuryFeeA += quote.Fee
	} else {
		p.reserveB, p.reserveA = quote.ResultingBalanceIn, quote.ResultingBalanceOut
		p.treasuryFeeB += quote.Fee
	}

	return &SwapReceipt{
		ID:        uuid.New().String(),
		PoolID:    p.id,
		Caller:    caller,
		AssetIn:   tokenIn,
		AssetOut:  tokenOut,
		AmountIn:  amountIn,
		Fee:       quote.Fee,
		AmountOut: quote.AmountOut,
		Slippage:  quote.Slippage,
		ReserveA:  p.reserveA,
		ReserveB:  p.reserveB,
	}, nil
}

// SetSlippage changes the default slippage tolerance. Owner only.
func (p *Pool) SetSlippage(caller string, slippage uint64) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if err := p.requireActive(); err != nil {
		return err
	}
	if caller != p.owner {
		return ErrUnauthorized
	}
	if !isValidSlippage(slippage) {
		return ErrInvalidSlippage
	}
	p.slippage = slippage
	return nil
}

func (p *Pool) sharesForDeposit(amountA, amountB uint64) (uint64, error) {
	totalShares := p.ledger.TotalSupply()

	var shares uint64
	var err error
	switch {
	case totalShares == 0:
		shares = mathutil.SqrtFloor(amountA, amountB)
	case p.reserveA > 0:
		shares, err = mathutil.MulDivFloor(amountA, totalShares, p.reserveA)
	case p.reserveB > 0:
		shares, err = mathutil.MulDivFloor(amountB, totalShares, p.reserveB)
	default:
		return 0, ErrInsufficientLiquidity
	}
	if err != nil {
		return 0, ErrAmountTooBig
	}
	if shares == 0 {
		return 0, ErrAmountTooLow
	}
	return shares, nil
}

func (p *Pool) requireActive() error {
	if p.status != PoolStatusActive {
		return ErrPoolNotInitialized
	}
	return nil
}

func (p *Pool) isPoolAsset(asset string) bool {
	return asset != "" && (asset == p.assetA || asset == p.assetB)
}

func (p *Pool) otherAsset(asset string) string {
	if asset == p.assetA {
		return p.assetB
	}
	return p.assetA
}

func isValidFee(feeNumerator uint64) bool {
	return feeNumerator > 0 && feeNumerator < mathutil.FeePrecision()
}

func isValidSlippage(slippage uint64) bool {
	return slippage <= mathutil.SlippagePrecision()
}
