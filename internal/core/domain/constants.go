package domain

// PoolStatus is the lifecycle state of a pool.
type PoolStatus int

const (
	PoolStatusUninitialized PoolStatus = iota
	PoolStatusActive
)

func (s PoolStatus) String() string {
	switch s {
	case PoolStatusActive:
		return "active"
	default:
		return "uninitialized"
	}
}

// TransferLeg names a single gateway call of an operation.
type TransferLeg string

const (
	LegRegisterAsset TransferLeg = "register_asset"
	LegTransferIn    TransferLeg = "transfer_in"
	LegTransferOut   TransferLeg = "transfer_out"
	LegMintShares    TransferLeg = "mint_shares"
	LegBurnShares    TransferLeg = "burn_shares"
)
