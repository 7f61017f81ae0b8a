package mathutil

import "errors"

// ErrInvalidFee ...
var ErrInvalidFee = errors.New("fee numerator must be lower than fee precision")

// LessFee calculates an amount with the fee subtracted given a fee expressed
// as numerator over FeePrecision (ie. 1 = 1%). The fee is rounded down.
func LessFee(amount, feeNumerator uint64) (withoutFee, calculatedFee uint64, err error) {
	if feeNumerator >= feePrecision {
		return 0, 0, ErrInvalidFee
	}
	calculatedFee, err = MulDivFloor(amount, feeNumerator, feePrecision)
	if err != nil {
		return 0, 0, err
	}
	return amount - calculatedFee, calculatedFee, nil
}

// PlusFee returns the smallest gross amount that, once LessFee is applied,
// leaves at least the given net amount, along with the fee charged on it.
// Since LessFee rounds the fee down, that is
// floor((amount-1) * FeePrecision / (FeePrecision-feeNumerator)) + 1.
func PlusFee(amount, feeNumerator uint64) (withFee, calculatedFee uint64, err error) {
	if feeNumerator >= feePrecision {
		return 0, 0, ErrInvalidFee
	}
	if amount == 0 {
		return 0, 0, nil
	}
	withFee, err = MulDivFloor(amount-1, feePrecision, feePrecision-feeNumerator)
	if err != nil {
		return 0, 0, err
	}
	if withFee, err = SafeAdd(withFee, 1); err != nil {
		return 0, 0, err
	}
	calculatedFee, err = MulDivFloor(withFee, feeNumerator, feePrecision)
	if err != nil {
		return 0, 0, err
	}
	return withFee, calculatedFee, nil
}
