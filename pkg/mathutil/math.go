package mathutil

import (
	"errors"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	feePrecision = uint64(100)
)

var (
	//BigOne represents a single unit of an asset with precision 8
	BigOne = uint64(math.Pow10(8))
	//BigOneDecimal represents a single unit of an asset with precision 8 as decimal.Decimal
	BigOneDecimal = decimal.NewFromInt(int64(BigOne))

	// ErrDivisionByZero ...
	ErrDivisionByZero = errors.New("division by zero")
	// ErrOverflow is returned when a result does not fit 64 bits
	ErrOverflow = errors.New("result overflows uint64")
)

func init() {
	decimal.DivisionPrecision = 8
}

// Scale returns the fixed decimal unit every amount is expressed in.
func Scale() uint64 {
	return BigOne
}

// FeePrecision returns the denominator a fee numerator is interpreted against.
func FeePrecision() uint64 {
	return feePrecision
}

// SlippagePrecision returns the denominator of a slippage numerator, ie. a
// percentage with 8 decimals (5% = 5 * 10^8).
func SlippagePrecision() uint64 {
	return feePrecision * BigOne
}

// MulDivFloor computes floor(a*b/denominator) with a 128+ bit intermediate.
func MulDivFloor(a, b, denominator uint64) (uint64, error) {
	if denominator == 0 {
		return 0, ErrDivisionByZero
	}
	num := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	return toUint64(num.Quo(num, new(big.Int).SetUint64(denominator)))
}

// MulDivCeil computes ceil(a*b/denominator) with a 128+ bit intermediate.
func MulDivCeil(a, b, denominator uint64) (uint64, error) {
	if denominator == 0 {
		return 0, ErrDivisionByZero
	}
	num := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	den := new(big.Int).SetUint64(denominator)
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if r.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return toUint64(q)
}

// SqrtFloor returns floor(sqrt(a*b)), the geometric mean of the two amounts.
func SqrtFloor(a, b uint64) uint64 {
	prod := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	// sqrt of a product of two uint64 always fits 64 bits.
	return prod.Sqrt(prod).Uint64()
}

// SafeAdd returns x + y or ErrOverflow.
func SafeAdd(x, y uint64) (uint64, error) {
	z := x + y
	if z < x {
		return 0, ErrOverflow
	}
	return z, nil
}

func toUint64(z *big.Int) (uint64, error) {
	if !z.IsUint64() {
		return 0, ErrOverflow
	}
	return z.Uint64(), nil
}

// Div takes two uint64 numbers and divides them x / y and returns the result as decimal.Decimal
func Div(x, y uint64) (z decimal.Decimal) {
	X, Y := decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0), decimal.NewFromBigInt(new(big.Int).SetUint64(y), 0)
	z = X.Div(Y)
	return
}

// ToDecimal converts an amount expressed in Scale units to its decimal value
// (ie. 150000000 -> 1.5).
func ToDecimal(amount uint64) decimal.Decimal {
	return Div(amount, BigOne)
}

// FromDecimal converts a decimal value to an amount expressed in Scale units,
// truncating any digit beyond the 8th decimal.
func FromDecimal(d decimal.Decimal) (uint64, error) {
	if d.IsNegative() {
		return 0, errors.New("amount must not be negative")
	}
	return toUint64(d.Mul(BigOneDecimal).Truncate(0).BigInt())
}
