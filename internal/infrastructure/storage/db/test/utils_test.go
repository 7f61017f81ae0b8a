package db_test

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/tdex-network/tdex-amm/internal/core/domain"
)

func makeRandomPool(sequence uint64) domain.PoolState {
	assetA, assetB := domain.CanonicalPair(randomHex(32), randomHex(32))
	id := uuid.New().String()
	return domain.PoolState{
		ID:           id,
		Sequence:     sequence,
		Status:       domain.PoolStatusActive,
		Owner:        "owner",
		AssetA:       assetA,
		AssetB:       assetB,
		Treasury:     "treasury",
		ReserveA:     200 * 1e8,
		ReserveB:     220 * 1e8,
		FeeNumerator: 1,
		Slippage:     5 * 1e8,
		Ledger: domain.LedgerState{
			Token:       randomHex(20),
			Owner:       id,
			TotalShares: 20976176963,
			Balances:    map[string]uint64{"alice": 20976176963},
		},
	}
}

func randomHex(len int) string {
	return hex.EncodeToString(randomBytes(len))
}

func randomBytes(len int) []byte {
	b := make([]byte, len)
	//nolint
	rand.Read(b)
	return b
}
