package gateway

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-amm/internal/core/domain"
)

var (
	// ErrInsufficientFunds ...
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidTransfer ...
	ErrInvalidTransfer = errors.New("invalid transfer")
	// ErrMissingStore ...
	ErrMissingStore = errors.New("missing balance store")
)

// Balance is the amount of an asset held by an account.
type Balance struct {
	Account string
	Asset   string
	Amount  uint64
}

// BalanceStore is the abstraction for any kind of database intended to keep
// track of account balances. Every method is atomic, a failing one leaves
// the store untouched.
type BalanceStore interface {
	// RegisterAsset marks the asset as usable by the account. Registering an
	// asset twice is a no-op.
	RegisterAsset(ctx context.Context, account, asset string) error
	// IsAssetRegistered returns whether the asset is usable by the account.
	IsAssetRegistered(ctx context.Context, account, asset string) (bool, error)
	// Transfer moves amount of asset between two accounts. It fails with
	// ErrInsufficientFunds if the sender balance is lower than amount.
	Transfer(ctx context.Context, asset, from, to string, amount uint64) error
	// Mint credits amount of asset to the account out of thin air.
	Mint(ctx context.Context, asset, to string, amount uint64) error
	// Burn debits amount of asset from the account. It fails with
	// ErrInsufficientFunds if the balance is lower than amount.
	Burn(ctx context.Context, asset, from string, amount uint64) error
	// GetBalance returns the balance of asset for the account.
	GetBalance(ctx context.Context, account, asset string) (uint64, error)
	// GetBalances returns all the non-zero balances of the account.
	GetBalances(ctx context.Context, account string) ([]Balance, error)
	Close()
}

// LedgerGateway moves assets between accounts of a BalanceStore on behalf
// of pools. The pool id is used as the pool account.
type LedgerGateway struct {
	store BalanceStore
}

// NewLedgerGateway returns a gateway backed by the given store.
func NewLedgerGateway(store BalanceStore) (*LedgerGateway, error) {
	if store == nil {
		return nil, ErrMissingStore
	}
	return &LedgerGateway{store}, nil
}

// Store returns the underlying balance store.
func (g *LedgerGateway) Store() BalanceStore {
	return g.store
}

// Fund credits an external account with amount of asset. It's meant for
// operators and tests to provide accounts with funds to trade.
func (g *LedgerGateway) Fund(
	ctx context.Context, account, asset string, amount uint64,
) error {
	if account == "" || asset == "" || amount == 0 {
		return ErrInvalidTransfer
	}
	return g.store.Mint(ctx, asset, account, amount)
}

func (g *LedgerGateway) EnsureAssetRegistered(
	ctx context.Context, pool, asset string,
) domain.Status {
	if err := g.store.RegisterAsset(ctx, pool, asset); err != nil {
		return g.failure("register asset", err)
	}
	return domain.StatusSuccess
}

func (g *LedgerGateway) TransferInto(
	ctx context.Context, pool, asset, from string, amount uint64,
) domain.Status {
	if status := g.checkRegistered(ctx, pool, asset); !status.IsSuccess() {
		return status
	}
	if err := g.store.Transfer(ctx, asset, from, pool, amount); err != nil {
		return g.failure(fmt.Sprintf("transfer %s from %s", asset, from), err)
	}
	return domain.StatusSuccess
}

func (g *LedgerGateway) TransferOut(
	ctx context.Context, pool, asset, to string, amount uint64,
) domain.Status {
	if status := g.checkRegistered(ctx, pool, asset); !status.IsSuccess() {
		return status
	}
	if err := g.store.Transfer(ctx, asset, pool, to, amount); err != nil {
		return g.failure(fmt.Sprintf("transfer %s to %s", asset, to), err)
	}
	return domain.StatusSuccess
}

func (g *LedgerGateway) MintShareRepresentation(
	ctx context.Context, shareToken, to string, amount uint64,
) domain.Status {
	if err := g.store.Mint(ctx, shareToken, to, amount); err != nil {
		return g.failure(fmt.Sprintf("mint shares %s", shareToken), err)
	}
	return domain.StatusSuccess
}

func (g *LedgerGateway) BurnShareRepresentation(
	ctx context.Context, shareToken, from string, amount uint64,
) domain.Status {
	if err := g.store.Burn(ctx, shareToken, from, amount); err != nil {
		return g.failure(fmt.Sprintf("burn shares %s", shareToken), err)
	}
	return domain.StatusSuccess
}

func (g *LedgerGateway) checkRegistered(
	ctx context.Context, pool, asset string,
) domain.Status {
	ok, err := g.store.IsAssetRegistered(ctx, pool, asset)
	if err != nil {
		return g.failure("check asset registration", err)
	}
	if !ok {
		return domain.StatusAssetNotRegistered
	}
	return domain.StatusSuccess
}

func (g *LedgerGateway) failure(op string, err error) domain.Status {
	if errors.Is(err, ErrInsufficientFunds) {
		log.Debugf("gateway: %s: %s", op, err)
		return domain.StatusInsufficientFunds
	}
	log.WithError(err).Warnf("gateway: failed to %s", op)
	return domain.StatusFailure
}
