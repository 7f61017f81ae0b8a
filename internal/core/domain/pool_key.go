package domain

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
)

// PoolKey identifies a pool by its canonically ordered asset pair and fee
// tier. (A, B, fee) and (B, A, fee) map to the same key.
type PoolKey struct {
	AssetA       string
	AssetB       string
	FeeNumerator uint64
}

// NewPoolKey returns the canonical key for the given pair and fee tier.
func NewPoolKey(assetA, assetB string, feeNumerator uint64) PoolKey {
	assetA, assetB = CanonicalPair(assetA, assetB)
	return PoolKey{AssetA: assetA, AssetB: assetB, FeeNumerator: feeNumerator}
}

func (k PoolKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.AssetA, k.AssetB, k.FeeNumerator)
}

// ShareToken derives the deterministic identifier of the liquidity share
// token of the pool with this key.
func (k PoolKey) ShareToken() string {
	return hex.EncodeToString(btcutil.Hash160([]byte(k.String())))
}

// HasPair returns whether the key refers to the given unordered pair.
func (k PoolKey) HasPair(assetA, assetB string) bool {
	assetA, assetB = CanonicalPair(assetA, assetB)
	return k.AssetA == assetA && k.AssetB == assetB
}

// CanonicalPair orders the assets of a pair by identifier.
func CanonicalPair(assetA, assetB string) (string, string) {
	if assetB < assetA {
		return assetB, assetA
	}
	return assetA, assetB
}

// IsValidAsset returns false for null identifiers, ie. empty or made of
// zeros only (with optional 0x prefix).
func IsValidAsset(asset string) bool {
	trimmed := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(asset)), "0x")
	return len(trimmed) > 0 && strings.Trim(trimmed, "0") != ""
}

func validatePair(assetA, assetB string, feeNumerator uint64) error {
	if !IsValidAsset(assetA) || !IsValidAsset(assetB) {
		return ErrInvalidAsset
	}
	if assetA == assetB {
		return ErrSameAsset
	}
	if !isValidFee(feeNumerator) {
		return ErrInvalidFee
	}
	return nil
}
