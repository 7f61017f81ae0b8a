package domain_test

import (
	"context"
	"strings"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/tdex-amm/internal/core/domain"
)

var (
	assetA   = strings.Repeat("a", 64)
	assetB   = strings.Repeat("b", 64)
	assetC   = strings.Repeat("c", 64)
	owner    = "owner"
	treasury = "treasury"
	alice    = "alice"
	bob      = "bob"

	defaultSlippage = uint64(5 * 100000000)
)

/*
 * AssetTransferGateway
 */
type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) EnsureAssetRegistered(
	ctx context.Context, pool, asset string,
) domain.Status {
	args := m.Called(ctx, pool, asset)
	return args.Get(0).(domain.Status)
}

func (m *mockGateway) TransferInto(
	ctx context.Context, pool, asset, from string, amount uint64,
) domain.Status {
	args := m.Called(ctx, pool, asset, from, amount)
	return args.Get(0).(domain.Status)
}

func (m *mockGateway) TransferOut(
	ctx context.Context, pool, asset, to string, amount uint64,
) domain.Status {
	args := m.Called(ctx, pool, asset, to, amount)
	return args.Get(0).(domain.Status)
}

func (m *mockGateway) MintShareRepresentation(
	ctx context.Context, shareToken, to string, amount uint64,
) domain.Status {
	args := m.Called(ctx, shareToken, to, amount)
	return args.Get(0).(domain.Status)
}

func (m *mockGateway) BurnShareRepresentation(
	ctx context.Context, shareToken, from string, amount uint64,
) domain.Status {
	args := m.Called(ctx, shareToken, from, amount)
	return args.Get(0).(domain.Status)
}

// newMockGateway returns a gateway mock that succeeds on every call.
func newMockGateway() *mockGateway {
	return withSuccess(&mockGateway{})
}

// withSuccess makes every call not matching an expectation already set on
// gw succeed.
func withSuccess(gw *mockGateway) *mockGateway {
	anything := mock.Anything
	gw.On("EnsureAssetRegistered", anything, anything, anything).Return(domain.StatusSuccess)
	gw.On("TransferInto", anything, anything, anything, anything, anything).Return(domain.StatusSuccess)
	gw.On("TransferOut", anything, anything, anything, anything, anything).Return(domain.StatusSuccess)
	gw.On("MintShareRepresentation", anything, anything, anything, anything).Return(domain.StatusSuccess)
	gw.On("BurnShareRepresentation", anything, anything, anything, anything).Return(domain.StatusSuccess)
	return gw
}

func newTestPool(gw domain.AssetTransferGateway, fee uint64) *domain.Pool {
	pool := domain.NewPool(gw)
	if err := pool.Initialize(context.Background(), domain.PoolInitArgs{
		Owner:           owner,
		AssetA:          assetA,
		AssetB:          assetB,
		Treasury:        treasury,
		FeeNumerator:    fee,
		Ledger:          domain.NewLiquidityShareLedger("shares"),
		DefaultSlippage: defaultSlippage,
	}); err != nil {
		panic(err)
	}
	return pool
}

func newTestPoolWithLiquidity(
	gw domain.AssetTransferGateway, fee, amountA, amountB uint64,
) *domain.Pool {
	pool := newTestPool(gw, fee)
	if _, err := pool.AddLiquidity(
		context.Background(), alice, amountA, amountB,
	); err != nil {
		panic(err)
	}
	return pool
}
