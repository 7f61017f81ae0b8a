package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	assetA = strings.Repeat("a", 64)
	assetB = strings.Repeat("b", 64)
)

func runCLICommand(t *testing.T, args ...string) (string, error) {
	app := newApp()
	buf := &bytes.Buffer{}
	app.Writer = buf
	err := app.Run(append([]string{"tdexamm"}, args...))
	return buf.String(), err
}

func TestCLI(t *testing.T) {
	t.Setenv("TDEX_AMM_DATADIR", t.TempDir())

	for _, asset := range []string{assetA, assetB} {
		_, err := runCLICommand(
			t, "account", "fund", "--account", "alice", "--asset", asset,
			"--amount", "1000",
		)
		require.NoError(t, err)
	}

	out, err := runCLICommand(
		t, "pool", "new", "--asset_a", assetB, "--asset_b", assetA, "--fee", "1",
	)
	require.NoError(t, err)
	pool := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(out), &pool))
	require.Equal(t, assetA, pool["AssetA"])
	poolID := pool["ID"].(string)

	_, err = runCLICommand(
		t, "pool", "new", "--asset_a", assetA, "--asset_b", assetB, "--fee", "2",
	)
	require.Error(t, err)

	out, err = runCLICommand(
		t, "pool", "deposit", "--pool", poolID, "--caller", "alice",
		"--amount_a", "200", "--amount_b", "220",
	)
	require.NoError(t, err)
	require.JSONEq(t, `{"shares": 20976176963}`, out)

	out, err = runCLICommand(
		t, "preview", "--pool", poolID, "--asset", assetA, "--amount", "1",
	)
	require.NoError(t, err)
	preview := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(out), &preview))
	require.Equal(t, float64(108363600), preview["AmountOut"])

	out, err = runCLICommand(
		t, "--metrics", "swap", "--pool", poolID, "--caller", "alice",
		"--asset_in", assetA, "--amount_in", "1",
	)
	require.NoError(t, err)
	require.Contains(t, out, `"AmountOut": 108363600`)
	require.Contains(t, out, "tdexamm_pool_swaps_total")

	_, err = runCLICommand(
		t, "swap", "--pool", poolID, "--caller", "alice",
		"--asset_in", assetA, "--amount_in", "50",
	)
	require.Error(t, err)

	out, err = runCLICommand(
		t, "recommend", "--asset_in", assetB, "--asset_out", assetA,
		"--amount_in", "1",
	)
	require.NoError(t, err)
	require.Contains(t, out, poolID)

	_, err = runCLICommand(
		t, "recommend", "--asset_in", assetB, "--asset_out", strings.Repeat("c", 64),
		"--amount_in", "1",
	)
	require.ErrorIs(t, err, errNoPoolForSwap)

	_, err = runCLICommand(
		t, "pool", "deposit", "--pool", poolID, "--caller", "alice",
		"--amount_a", "1",
	)
	var usageErr *invalidUsageError
	require.True(t, errors.As(err, &usageErr))
	require.Equal(t, "deposit", usageErr.command)

	_, err = runCLICommand(t, "swap", "--pool", poolID, "--caller", "alice", "--asset_in", assetA)
	require.True(t, errors.As(err, &usageErr))
	require.Equal(t, "swap", usageErr.command)

	// State survives across invocations.
	out, err = runCLICommand(t, "pool", "info", "--pool", poolID)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &pool))
	require.Equal(t, float64(201e8), pool["ReserveA"])

	_, err = runCLICommand(
		t, "pool", "updateslippage", "--pool", poolID, "--caller", "alice",
		"--slippage", "10",
	)
	require.Error(t, err)
	_, err = runCLICommand(
		t, "pool", "updateslippage", "--pool", poolID, "--caller", "operator",
		"--slippage", "10",
	)
	require.NoError(t, err)

	out, err = runCLICommand(
		t, "pool", "withdraw", "--pool", poolID, "--caller", "alice",
		"--shares", "100",
	)
	require.NoError(t, err)
	amounts := map[string]uint64{}
	require.NoError(t, json.Unmarshal([]byte(out), &amounts))
	require.NotZero(t, amounts["amount_a"])
	require.NotZero(t, amounts["amount_b"])

	out, err = runCLICommand(t, "account", "balance", "--account", "alice")
	require.NoError(t, err)
	balances := make([]map[string]interface{}, 0)
	require.NoError(t, json.Unmarshal([]byte(out), &balances))
	require.Len(t, balances, 3)

	out, err = runCLICommand(t, "pool", "list")
	require.NoError(t, err)
	pools := make([]map[string]interface{}, 0)
	require.NoError(t, json.Unmarshal([]byte(out), &pools))
	require.Len(t, pools, 1)
}
