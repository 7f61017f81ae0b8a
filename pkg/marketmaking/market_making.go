package marketmaking

import "github.com/shopspring/decimal"

// FormulaOpts defines the parameters needed to calculate prices and amounts
// for one direction of a pool: BalanceIn is the reserve of the asset being
// sold to the pool, BalanceOut the reserve of the asset being bought.
type FormulaOpts struct {
	BalanceIn  uint64
	BalanceOut uint64
	// Fee expressed as numerator over mathutil.FeePrecision(), always charged
	// on the way in.
	FeeNumerator uint64
}

// SwapQuote is the breakdown of a swap computed by a MakingFormula.
// It is never persisted, callers consume it right away.
type SwapQuote struct {
	// AmountIn is the gross amount paid to the pool, fee included.
	AmountIn uint64
	// Fee is the portion of AmountIn retained as trading fee.
	Fee uint64
	// NetAmountIn is AmountIn less Fee, the amount that actually prices the swap.
	NetAmountIn uint64
	// AmountOut is the amount the pool pays out.
	AmountOut uint64
	// ResultingBalanceIn/Out are the reserves after the swap.
	ResultingBalanceIn  uint64
	ResultingBalanceOut uint64
	// Slippage between spot and execution price, over mathutil.SlippagePrecision().
	Slippage uint64
}

// MakingFormula defines the interface for implementing the formula to derive
// the spot price and the amounts of a swap.
type MakingFormula interface {
	SpotPrice(opts FormulaOpts) (spotPrice decimal.Decimal, err error)
	OutGivenIn(opts FormulaOpts, amountIn uint64) (*SwapQuote, error)
	InGivenOut(opts FormulaOpts, amountOut uint64) (*SwapQuote, error)
}
