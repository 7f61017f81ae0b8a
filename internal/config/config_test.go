package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-amm/internal/core/application"
)

func TestInitConfig(t *testing.T) {
	datadir := t.TempDir()
	t.Setenv("TDEX_AMM_DATADIR", datadir)

	err := InitConfig()
	require.NoError(t, err)
	require.DirExists(t, filepath.Join(datadir, DbLocation))
	require.Equal(t, filepath.Join(datadir, DbLocation), GetDbDir())

	cfg := GetServiceConfig()
	require.Equal(t, application.Config{
		Owner:           "operator",
		DefaultSlippage: 5e8,
		DefaultTreasury: "treasury",
		FeeTiers:        []uint64{1, 3, 5},
	}, cfg)

	t.Setenv("TDEX_AMM_DB_TYPE", application.DBInMemory)
	t.Setenv("TDEX_AMM_DEFAULT_SLIPPAGE", "0.125")
	t.Setenv("TDEX_AMM_FEE_TIERS", " 3, 10 ")
	err = InitConfig()
	require.NoError(t, err)
	require.Empty(t, GetDbDir())
	require.Equal(t, uint64(125e7), GetDefaultSlippage())
	require.Equal(t, []uint64{3, 10}, GetFeeTiers())
}

func TestFailingInitConfig(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"invalid_db_type", DBTypeKey, "postgres"},
		{"invalid_log_level", LogLevelKey, "7"},
		{"negative_slippage", DefaultSlippageKey, "-0.01"},
		{"slippage_too_high", DefaultSlippageKey, "1.5"},
		{"malformed_slippage", DefaultSlippageKey, "five"},
		{"malformed_fee_tiers", FeeTiersKey, "1,a"},
		{"fee_tier_too_high", FeeTiersKey, "1,100"},
		{"zero_fee_tier", FeeTiersKey, "0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TDEX_AMM_DATADIR", t.TempDir())
			t.Setenv("TDEX_AMM_"+tt.key, tt.value)

			err := InitConfig()
			require.Error(t, err)
		})
	}
}
