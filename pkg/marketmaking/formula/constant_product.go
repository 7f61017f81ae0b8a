// Package formula defines the formulas that implements the MakingFormula interface
package formula

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-amm/pkg/marketmaking"
	"github.com/tdex-network/tdex-amm/pkg/mathutil"
)

var (
	// ErrAmountTooLow ...
	ErrAmountTooLow = errors.New("provided amount is too low")
	// ErrAmountTooBig ...
	ErrAmountTooBig = errors.New("provided amount is too big")
	// ErrBalanceTooLow ...
	ErrBalanceTooLow = errors.New("reserve balance amount is too low")
)

// ConstantProduct defines an AMM strategy where the product of the reserves
// (x * y = k) is preserved or increased by every swap. All amounts are
// integers in mathutil.Scale() units and every division rounds down.
type ConstantProduct struct{}

// SpotPrice calculates the spot price (without fees), that is how much of
// the out asset is given for one unit of the in asset.
func (ConstantProduct) SpotPrice(
	opts marketmaking.FormulaOpts,
) (spotPrice decimal.Decimal, err error) {
	if opts.BalanceIn == 0 || opts.BalanceOut == 0 {
		err = ErrBalanceTooLow
		return
	}

	spotPrice = mathutil.Div(opts.BalanceOut, opts.BalanceIn)
	return
}

// OutGivenIn returns the amount of out asset that will be exchanged for the
// given gross amountIn. The fee is charged on the way in:
//
//	fee       = floor(amountIn * feeNumerator / feePrecision)
//	amountOut = floor(balanceOut * (amountIn - fee) / (balanceIn + amountIn - fee))
func (c ConstantProduct) OutGivenIn(
	opts marketmaking.FormulaOpts, amountIn uint64,
) (*marketmaking.SwapQuote, error) {
	if opts.BalanceIn == 0 || opts.BalanceOut == 0 {
		return nil, ErrBalanceTooLow
	}
	if amountIn == 0 {
		return nil, ErrAmountTooLow
	}

	netAmountIn, fee, err := mathutil.LessFee(amountIn, opts.FeeNumerator)
	if err != nil {
		return nil, err
	}
	if netAmountIn == 0 {
		return nil, ErrAmountTooLow
	}

	newBalanceIn, err := mathutil.SafeAdd(opts.BalanceIn, netAmountIn)
	if err != nil {
		return nil, ErrAmountTooBig
	}
	amountOut, err := mathutil.MulDivFloor(opts.BalanceOut, netAmountIn, newBalanceIn)
	if err != nil {
		return nil, err
	}
	if amountOut == 0 {
		return nil, ErrAmountTooLow
	}

	// fee stays in the pool
	resultingBalanceIn, err := mathutil.SafeAdd(opts.BalanceIn, amountIn)
	if err != nil {
		return nil, ErrAmountTooBig
	}

	return &marketmaking.SwapQuote{
		AmountIn:            amountIn,
		Fee:                 fee,
		NetAmountIn:         netAmountIn,
		AmountOut:           amountOut,
		ResultingBalanceIn:  resultingBalanceIn,
		ResultingBalanceOut: opts.BalanceOut - amountOut,
		Slippage:            c.Slippage(opts, amountIn, amountOut),
	}, nil
}

// InGivenOut returns the quote of the gross amountIn that buys at least the
// desired amountOut. The net amount is the smallest one that buys amountOut
// and the gross one is the smallest that leaves that net amount once the
// fee is charged. The returned quote is the one OutGivenIn produces for
// that amountIn, hence its AmountOut may exceed the requested one by
// rounding dust.
func (c ConstantProduct) InGivenOut(
	opts marketmaking.FormulaOpts, amountOut uint64,
) (*marketmaking.SwapQuote, error) {
	if opts.BalanceIn == 0 || opts.BalanceOut == 0 {
		return nil, ErrBalanceTooLow
	}
	if amountOut == 0 {
		return nil, ErrAmountTooLow
	}
	if amountOut >= opts.BalanceOut {
		return nil, ErrAmountTooBig
	}

	netAmountIn, err := mathutil.MulDivCeil(
		opts.BalanceIn, amountOut, opts.BalanceOut-amountOut,
	)
	if err != nil {
		return nil, ErrAmountTooBig
	}
	amountIn, _, err := mathutil.PlusFee(netAmountIn, opts.FeeNumerator)
	if err != nil {
		if errors.Is(err, mathutil.ErrOverflow) {
			return nil, ErrAmountTooBig
		}
		return nil, err
	}

	return c.OutGivenIn(opts, amountIn)
}

// Slippage returns the relative deviation between the spot price
// (balanceOut/balanceIn) and the execution price (amountOut/amountIn),
// expressed over mathutil.SlippagePrecision().
func (ConstantProduct) Slippage(
	opts marketmaking.FormulaOpts, amountIn, amountOut uint64,
) uint64 {
	if opts.BalanceIn == 0 || opts.BalanceOut == 0 || amountIn == 0 {
		return 0
	}

	expected := new(big.Int).Mul(
		new(big.Int).SetUint64(amountIn), new(big.Int).SetUint64(opts.BalanceOut),
	)
	realized := new(big.Int).Mul(
		new(big.Int).SetUint64(amountOut), new(big.Int).SetUint64(opts.BalanceIn),
	)
	deviation := new(big.Int).Sub(expected, realized)
	deviation.Abs(deviation)
	deviation.Mul(deviation, new(big.Int).SetUint64(mathutil.SlippagePrecision()))
	deviation.Quo(deviation, expected)

	if !deviation.IsUint64() {
		return mathutil.SlippagePrecision()
	}
	return deviation.Uint64()
}
