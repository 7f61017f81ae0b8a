package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is the category of every input validation error, which
	// is always returned before any state is touched.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidAsset ...
	ErrInvalidAsset = fmt.Errorf("%w: asset must not be null", ErrInvalidInput)
	// ErrSameAsset ...
	ErrSameAsset = fmt.Errorf("%w: pair assets must be different", ErrInvalidInput)
	// ErrInvalidFee ...
	ErrInvalidFee = fmt.Errorf(
		"%w: fee numerator must be positive and lower than fee precision",
		ErrInvalidInput,
	)
	// ErrInvalidAmount ...
	ErrInvalidAmount = fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	// ErrInvalidSlippage ...
	ErrInvalidSlippage = fmt.Errorf("%w: slippage exceeds 100%%", ErrInvalidInput)
	// ErrInvalidAccount is returned for a null caller, holder or treasury.
	ErrInvalidAccount = fmt.Errorf("%w: account must not be null", ErrInvalidInput)
	// ErrMissingLedger ...
	ErrMissingLedger = fmt.Errorf("%w: missing liquidity share ledger", ErrInvalidInput)
	// ErrLedgerInUse is returned when initializing a pool with a ledger owned
	// by another pool.
	ErrLedgerInUse = fmt.Errorf("%w: ledger is owned by another pool", ErrInvalidInput)
	// ErrUnsupportedToken ...
	ErrUnsupportedToken = fmt.Errorf("%w: unsupported token", ErrInvalidInput)
	// ErrAmountTooLow is returned when an amount is too small to produce any
	// output once rounded down.
	ErrAmountTooLow = fmt.Errorf("%w: amount is too low", ErrInvalidInput)
	// ErrAmountTooBig ...
	ErrAmountTooBig = fmt.Errorf("%w: amount is too big", ErrInvalidInput)
	// ErrInsufficientLiquidity is returned for operations on pools with empty
	// reserves.
	ErrInsufficientLiquidity = fmt.Errorf("%w: insufficient liquidity", ErrInvalidInput)

	// ErrInsufficientBalance ...
	ErrInsufficientBalance = errors.New("insufficient share balance")
	// ErrPoolAlreadyInitialized ...
	ErrPoolAlreadyInitialized = errors.New("pool is already initialized")
	// ErrPoolNotInitialized ...
	ErrPoolNotInitialized = errors.New("pool is not initialized")
	// ErrPoolNotFound ...
	ErrPoolNotFound = errors.New("pool not found")
	// ErrPoolAlreadyExists is returned when restoring a pool whose key is
	// already indexed.
	ErrPoolAlreadyExists = errors.New("pool already exists")
	// ErrUnauthorized ...
	ErrUnauthorized = errors.New("caller is not allowed to perform this operation")
	// ErrSlippageBreached ...
	ErrSlippageBreached = errors.New("slippage breached")
	// ErrTransferFailure ...
	ErrTransferFailure = errors.New("transfer failure")
	// ErrCorruptedState is returned when restoring an inconsistent snapshot.
	ErrCorruptedState = errors.New("corrupted pool state")
)

// SlippageBreachedError is returned by a swap whose realized slippage is
// greater than the applicable tolerance. Both values are expressed over
// mathutil.SlippagePrecision().
type SlippageBreachedError struct {
	Message           string
	ComputedSlippage  uint64
	ThresholdSlippage uint64
}

func (e *SlippageBreachedError) Error() string {
	return fmt.Sprintf(
		"%s: computed %d, threshold %d",
		e.Message, e.ComputedSlippage, e.ThresholdSlippage,
	)
}

func (e *SlippageBreachedError) Unwrap() error {
	return ErrSlippageBreached
}

// TransferError is returned when the gateway reports a failure on a leg of
// an operation. Legs already executed are reverted before returning, a
// non-nil RollbackErr reports those that could not be.
type TransferError struct {
	Leg         TransferLeg
	Asset       string
	Status      Status
	RollbackErr error
}

func (e *TransferError) Error() string {
	msg := fmt.Sprintf(
		"transfer failure on %s leg for asset %s: %s", e.Leg, e.Asset, e.Status,
	)
	if e.RollbackErr != nil {
		msg = fmt.Sprintf("%s (%s)", msg, e.RollbackErr)
	}
	return msg
}

func (e *TransferError) Unwrap() error {
	return ErrTransferFailure
}
