package domain

import (
	"errors"
	"sync"

	"github.com/tdex-network/tdex-amm/pkg/marketmaking"
	"github.com/tdex-network/tdex-amm/pkg/marketmaking/formula"
	"github.com/tdex-network/tdex-amm/pkg/mathutil"
)

// PairInfo bundles the public information of a pool.
type PairInfo struct {
	AssetA string
	AssetB string
	// SpotPriceA is how much asset B is given for one unit of asset A, in
	// Precision units. SpotPriceB is the opposite.
	SpotPriceA   uint64
	SpotPriceB   uint64
	Precision    uint64
	FeeNumerator uint64
	FeePrecision uint64
	ReserveA     uint64
	ReserveB     uint64
}

// PoolState is the serializable snapshot of a pool.
type PoolState struct {
	ID           string
	Sequence     uint64
	Status       PoolStatus
	Owner        string
	AssetA       string
	AssetB       string
	Treasury     string
	ReserveA     uint64
	ReserveB     uint64
	TreasuryFeeA uint64
	TreasuryFeeB uint64
	FeeNumerator uint64
	Slippage     uint64
	Ledger       LedgerState
}

// Key returns the canonical registry key of the snapshot.
func (s PoolState) Key() PoolKey {
	return NewPoolKey(s.AssetA, s.AssetB, s.FeeNumerator)
}

// GetOutGivenIn returns the quote for selling amountIn of tokenIn to the
// pool without mutating it.
func (p *Pool) GetOutGivenIn(
	tokenIn string, amountIn uint64,
) (*marketmaking.SwapQuote, error) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	if err := p.requireActive(); err != nil {
		return nil, err
	}
	if !p.isPoolAsset(tokenIn) {
		return nil, ErrUnsupportedToken
	}
	return p.outGivenIn(tokenIn, amountIn)
}

// GetInGivenOut returns the quote for buying at least amountOut of tokenOut
// from the pool without mutating it.
func (p *Pool) GetInGivenOut(
	tokenOut string, amountOut uint64,
) (*marketmaking.SwapQuote, error) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	if err := p.requireActive(); err != nil {
		return nil, err
	}
	if !p.isPoolAsset(tokenOut) {
		return nil, ErrUnsupportedToken
	}

	quote, err := p.formula.InGivenOut(p.formulaOpts(p.otherAsset(tokenOut)), amountOut)
	if err != nil {
		return nil, quoteError(err)
	}
	return quote, nil
}

// GetSpotPrice returns how much of the other asset is given for one unit of
// token, in GetPrecisionValue() units, rounded down. It is zero while the
// pool has no liquidity.
func (p *Pool) GetSpotPrice(token string) (uint64, error) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	if !p.isPoolAsset(token) {
		return 0, ErrUnsupportedToken
	}
	return p.spotPrice(token), nil
}

// GetPairQty returns the reserves of asset A and asset B.
func (p *Pool) GetPairQty() (uint64, uint64) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.reserveA, p.reserveB
}

// GetPrecisionValue returns the fixed decimal unit of amounts and prices.
func (p *Pool) GetPrecisionValue() uint64 {
	return mathutil.Scale()
}

// GetFee returns the fee numerator, over mathutil.FeePrecision().
func (p *Pool) GetFee() uint64 {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.feeNumerator
}

// GetSlippage returns the default slippage tolerance, over
// mathutil.SlippagePrecision().
func (p *Pool) GetSlippage() uint64 {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.slippage
}

func (p *Pool) GetPairInfo() PairInfo {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return PairInfo{
		AssetA:       p.assetA,
		AssetB:       p.assetB,
		SpotPriceA:   p.spotPrice(p.assetA),
		SpotPriceB:   p.spotPrice(p.assetB),
		Precision:    mathutil.Scale(),
		FeeNumerator: p.feeNumerator,
		FeePrecision: mathutil.FeePrecision(),
		ReserveA:     p.reserveA,
		ReserveB:     p.reserveB,
	}
}

// GetTokenPairAddress returns the canonically ordered assets of the pool.
func (p *Pool) GetTokenPairAddress() (string, string) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.assetA, p.assetB
}

func (p *Pool) GetShareToken() string {
	p.lock.RLock()
	defer p.lock.RUnlock()

	if p.ledger == nil {
		return ""
	}
	return p.ledger.Token()
}

func (p *Pool) GetTreasury() string {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.treasury
}

// GetTreasuryFees returns the fees credited to the treasury in asset A and
// asset B. They are part of the reserves.
func (p *Pool) GetTreasuryFees() (uint64, uint64) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.treasuryFeeA, p.treasuryFeeB
}

// BalanceOf returns the shares held by holder.
func (p *Pool) BalanceOf(holder string) uint64 {
	p.lock.RLock()
	defer p.lock.RUnlock()

	if p.ledger == nil {
		return 0
	}
	return p.ledger.BalanceOf(holder)
}

func (p *Pool) TotalShares() uint64 {
	p.lock.RLock()
	defer p.lock.RUnlock()

	if p.ledger == nil {
		return 0
	}
	return p.ledger.TotalSupply()
}

func (p *Pool) ID() string {
	return p.id
}

// Sequence returns the insertion position of the pool in its registry.
func (p *Pool) Sequence() uint64 {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.sequence
}

func (p *Pool) Key() PoolKey {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return PoolKey{AssetA: p.assetA, AssetB: p.assetB, FeeNumerator: p.feeNumerator}
}

func (p *Pool) IsActive() bool {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.status == PoolStatusActive
}

// State returns a snapshot of the pool.
func (p *Pool) State() PoolState {
	p.lock.RLock()
	defer p.lock.RUnlock()

	state := PoolState{
		ID:           p.id,
		Sequence:     p.sequence,
		Status:       p.status,
		Owner:        p.owner,
		AssetA:       p.assetA,
		AssetB:       p.assetB,
		Treasury:     p.treasury,
		ReserveA:     p.reserveA,
		ReserveB:     p.reserveB,
		TreasuryFeeA: p.treasuryFeeA,
		TreasuryFeeB: p.treasuryFeeB,
		FeeNumerator: p.feeNumerator,
		Slippage:     p.slippage,
	}
	if p.ledger != nil {
		state.Ledger = p.ledger.State()
	}
	return state
}

// RestorePool rebuilds an active pool from a snapshot.
func RestorePool(state PoolState, gateway AssetTransferGateway) (*Pool, error) {
	if state.Status != PoolStatusActive || state.ID == "" {
		return nil, ErrCorruptedState
	}
	if err := validatePair(state.AssetA, state.AssetB, state.FeeNumerator); err != nil {
		return nil, err
	}
	if assetA, _ := CanonicalPair(state.AssetA, state.AssetB); assetA != state.AssetA {
		return nil, ErrCorruptedState
	}
	ledger, err := RestoreLedger(state.Ledger)
	if err != nil {
		return nil, err
	}
	if ledger.Owner() != state.ID {
		return nil, ErrCorruptedState
	}

	return &Pool{
		id:           state.ID,
		sequence:     state.Sequence,
		status:       state.Status,
		owner:        state.Owner,
		assetA:       state.AssetA,
		assetB:       state.AssetB,
		treasury:     state.Treasury,
		reserveA:     state.ReserveA,
		reserveB:     state.ReserveB,
		treasuryFeeA: state.TreasuryFeeA,
		treasuryFeeB: state.TreasuryFeeB,
		feeNumerator: state.FeeNumerator,
		slippage:     state.Slippage,
		ledger:       ledger,
		gateway:      gateway,
		formula:      formula.ConstantProduct{},
		lock:         &sync.RWMutex{},
	}, nil
}

func (p *Pool) outGivenIn(
	tokenIn string, amountIn uint64,
) (*marketmaking.SwapQuote, error) {
	quote, err := p.formula.OutGivenIn(p.formulaOpts(tokenIn), amountIn)
	if err != nil {
		return nil, quoteError(err)
	}
	return quote, nil
}

func (p *Pool) formulaOpts(tokenIn string) marketmaking.FormulaOpts {
	balanceIn, balanceOut := p.reserveA, p.reserveB
	if tokenIn == p.assetB {
		balanceIn, balanceOut = balanceOut, balanceIn
	}
	return marketmaking.FormulaOpts{
		BalanceIn:    balanceIn,
		BalanceOut:   balanceOut,
		FeeNumerator: p.feeNumerator,
	}
}

func (p *Pool) spotPrice(token string) uint64 {
	opts := p.formulaOpts(token)
	if opts.BalanceIn == 0 || opts.BalanceOut == 0 {
		return 0
	}
	price, err := mathutil.MulDivFloor(opts.BalanceOut, mathutil.Scale(), opts.BalanceIn)
	if err != nil {
		return 0
	}
	return price
}

func quoteError(err error) error {
	switch {
	case errors.Is(err, formula.ErrBalanceTooLow):
		return ErrInsufficientLiquidity
	case errors.Is(err, formula.ErrAmountTooLow):
		return ErrAmountTooLow
	case errors.Is(err, formula.ErrAmountTooBig):
		return ErrAmountTooBig
	case errors.Is(err, mathutil.ErrInvalidFee):
		return ErrInvalidFee
	default:
		return err
	}
}
