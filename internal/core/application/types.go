package application

import (
	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-amm/internal/core/domain"
	"github.com/tdex-network/tdex-amm/pkg/marketmaking"
	"github.com/tdex-network/tdex-amm/pkg/mathutil"
)

// Config holds the settings of the pool service.
type Config struct {
	// Owner is the account allowed to change the slippage tolerance of pools.
	Owner string
	// DefaultSlippage is the tolerance new pools start with, over
	// mathutil.SlippagePrecision().
	DefaultSlippage uint64
	// DefaultTreasury receives the fees of pools created without an explicit
	// treasury.
	DefaultTreasury string
	// FeeTiers restricts the fee numerators pools can be created with. Any
	// valid fee is allowed if empty.
	FeeTiers []uint64
}

// PoolInfo is the public view of a pool.
type PoolInfo struct {
	ID           string
	Sequence     uint64
	AssetA       string
	AssetB       string
	FeeNumerator uint64
	FeePrecision uint64
	ReserveA     uint64
	ReserveB     uint64
	// SpotPriceA is how much asset B is given for one asset A.
	SpotPriceA decimal.Decimal
	// SpotPriceB is how much asset A is given for one asset B.
	SpotPriceB decimal.Decimal
	// Slippage is the default tolerance as a percentage.
	Slippage     decimal.Decimal
	Treasury     string
	TreasuryFeeA uint64
	TreasuryFeeB uint64
	ShareToken   string
	TotalShares  uint64
}

func newPoolInfo(pool *domain.Pool) PoolInfo {
	state := pool.State()
	info := pool.GetPairInfo()
	return PoolInfo{
		ID:           state.ID,
		Sequence:     state.Sequence,
		AssetA:       state.AssetA,
		AssetB:       state.AssetB,
		FeeNumerator: state.FeeNumerator,
		FeePrecision: info.FeePrecision,
		ReserveA:     state.ReserveA,
		ReserveB:     state.ReserveB,
		SpotPriceA:   mathutil.ToDecimal(info.SpotPriceA),
		SpotPriceB:   mathutil.ToDecimal(info.SpotPriceB),
		Slippage:     slippageToPercentage(state.Slippage),
		Treasury:     state.Treasury,
		TreasuryFeeA: state.TreasuryFeeA,
		TreasuryFeeB: state.TreasuryFeeB,
		ShareToken:   state.Ledger.Token,
		TotalShares:  state.Ledger.TotalShares,
	}
}

// SwapPreview is the outcome of a swap, computed without executing it.
type SwapPreview struct {
	PoolID    string
	AssetIn   string
	AssetOut  string
	AmountIn  uint64
	Fee       uint64
	AmountOut uint64
	// Price is the execution price, that is AmountOut/AmountIn.
	Price decimal.Decimal
	// Slippage is the realized slippage as a percentage.
	Slippage decimal.Decimal
}

func newSwapPreview(
	poolID, assetIn, assetOut string, quote *marketmaking.SwapQuote,
) SwapPreview {
	return SwapPreview{
		PoolID:    poolID,
		AssetIn:   assetIn,
		AssetOut:  assetOut,
		AmountIn:  quote.AmountIn,
		Fee:       quote.Fee,
		AmountOut: quote.AmountOut,
		Price:     mathutil.Div(quote.AmountOut, quote.AmountIn),
		Slippage:  slippageToPercentage(quote.Slippage),
	}
}

// PoolRecommendation is the advisory outcome of the best price search
// across fee tiers. Pool is nil if no pool can serve the swap.
type PoolRecommendation struct {
	Pool    *PoolInfo
	Preview *SwapPreview
}

func (r PoolRecommendation) Found() bool {
	return r.Pool != nil
}

func slippageToPercentage(slippage uint64) decimal.Decimal {
	return mathutil.ToDecimal(slippage).Truncate(8)
}

// SlippageFromPercentage converts a percentage into a slippage numerator
// over mathutil.SlippagePrecision().
func SlippageFromPercentage(percentage decimal.Decimal) (uint64, error) {
	return mathutil.FromDecimal(percentage)
}
