package domain

import "context"

// Status is the outcome of an AssetTransferGateway call. Anything other than
// StatusSuccess is a hard failure for the calling pool.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusInsufficientFunds
	StatusAssetNotRegistered
	StatusUnavailable
)

func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusInsufficientFunds:
		return "insufficient funds"
	case StatusAssetNotRegistered:
		return "asset not registered"
	case StatusUnavailable:
		return "gateway unavailable"
	default:
		return "failure"
	}
}

// AssetTransferGateway performs the actual movement of assets on behalf of a
// pool. The pool never owns the gateway, it only consumes its results.
type AssetTransferGateway interface {
	// EnsureAssetRegistered makes the asset usable by the pool account. It is
	// invoked before the first use of an asset and must be idempotent.
	EnsureAssetRegistered(ctx context.Context, pool, asset string) Status
	// TransferInto moves amount of asset from the given account to the pool.
	TransferInto(
		ctx context.Context, pool, asset, from string, amount uint64,
	) Status
	// TransferOut moves amount of asset from the pool to the given account.
	TransferOut(
		ctx context.Context, pool, asset, to string, amount uint64,
	) Status
	// MintShareRepresentation credits the external representation of pool
	// shares to the given account.
	MintShareRepresentation(
		ctx context.Context, shareToken, to string, amount uint64,
	) Status
	// BurnShareRepresentation debits the external representation of pool
	// shares from the given account.
	BurnShareRepresentation(
		ctx context.Context, shareToken, from string, amount uint64,
	) Status
}
