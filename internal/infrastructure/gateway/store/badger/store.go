package badgerstore

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/tdex-amm/internal/infrastructure/gateway"
	dbbadger "github.com/tdex-network/tdex-amm/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/tdex-amm/pkg/mathutil"
	"github.com/timshannon/badgerhold/v4"
)

const balancesDir = "balances"

type balance struct {
	Account string
	Asset   string
	Amount  uint64
}

type assetRegistration struct {
	Account string
	Asset   string
}

type balanceStore struct {
	store  *badgerhold.Store
	stopGC func()
}

// NewBalanceStore opens (or creates if not exists) a badger
// gateway.BalanceStore under the given base directory. An empty base
// directory makes the store live in memory only.
func NewBalanceStore(
	baseDbDir string, logger badger.Logger,
) (gateway.BalanceStore, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, balancesDir)
	}

	store, stopGC, err := dbbadger.OpenStore(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening balances db: %w", err)
	}
	return &balanceStore{store, stopGC}, nil
}

func (s *balanceStore) RegisterAsset(_ context.Context, account, asset string) error {
	if account == "" || asset == "" {
		return gateway.ErrInvalidTransfer
	}

	return s.store.Upsert(
		balanceKey(account, asset), assetRegistration{account, asset},
	)
}

func (s *balanceStore) IsAssetRegistered(
	_ context.Context, account, asset string,
) (bool, error) {
	var registration assetRegistration
	if err := s.store.Get(balanceKey(account, asset), &registration); err != nil {
		if err == badgerhold.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *balanceStore) Transfer(
	_ context.Context, asset, from, to string, amount uint64,
) error {
	if asset == "" || from == "" || to == "" || amount == 0 {
		return gateway.ErrInvalidTransfer
	}

	return s.store.Badger().Update(func(tx *badger.Txn) error {
		fromBalance, err := s.getBalance(tx, from, asset)
		if err != nil {
			return err
		}
		if fromBalance < amount {
			return gateway.ErrInsufficientFunds
		}
		if from == to {
			return nil
		}
		toBalance, err := s.getBalance(tx, to, asset)
		if err != nil {
			return err
		}
		newToBalance, err := mathutil.SafeAdd(toBalance, amount)
		if err != nil {
			return err
		}

		if err := s.setBalance(tx, from, asset, fromBalance-amount); err != nil {
			return err
		}
		return s.setBalance(tx, to, asset, newToBalance)
	})
}

func (s *balanceStore) Mint(
	_ context.Context, asset, to string, amount uint64,
) error {
	if asset == "" || to == "" || amount == 0 {
		return gateway.ErrInvalidTransfer
	}

	return s.store.Badger().Update(func(tx *badger.Txn) error {
		toBalance, err := s.getBalance(tx, to, asset)
		if err != nil {
			return err
		}
		newBalance, err := mathutil.SafeAdd(toBalance, amount)
		if err != nil {
			return err
		}
		return s.setBalance(tx, to, asset, newBalance)
	})
}

func (s *balanceStore) Burn(
	_ context.Context, asset, from string, amount uint64,
) error {
	if asset == "" || from == "" || amount == 0 {
		return gateway.ErrInvalidTransfer
	}

	return s.store.Badger().Update(func(tx *badger.Txn) error {
		fromBalance, err := s.getBalance(tx, from, asset)
		if err != nil {
			return err
		}
		if fromBalance < amount {
			return gateway.ErrInsufficientFunds
		}
		return s.setBalance(tx, from, asset, fromBalance-amount)
	})
}

func (s *balanceStore) GetBalance(
	_ context.Context, account, asset string,
) (uint64, error) {
	var amount uint64
	err := s.store.Badger().View(func(tx *badger.Txn) error {
		var err error
		amount, err = s.getBalance(tx, account, asset)
		return err
	})
	return amount, err
}

func (s *balanceStore) GetBalances(
	_ context.Context, account string,
) ([]gateway.Balance, error) {
	var records []balance
	query := badgerhold.Where("Account").Eq(account).SortBy("Asset")
	if err := s.store.Find(&records, query); err != nil {
		return nil, err
	}

	balances := make([]gateway.Balance, 0, len(records))
	for _, r := range records {
		balances = append(balances, gateway.Balance{
			Account: r.Account,
			Asset:   r.Asset,
			Amount:  r.Amount,
		})
	}
	return balances, nil
}

func (s *balanceStore) Close() {
	s.stopGC()
	s.store.Close()
}

func (s *balanceStore) getBalance(
	tx *badger.Txn, account, asset string,
) (uint64, error) {
	var b balance
	if err := s.store.TxGet(tx, balanceKey(account, asset), &b); err != nil {
		if err == badgerhold.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return b.Amount, nil
}

func (s *balanceStore) setBalance(
	tx *badger.Txn, account, asset string, amount uint64,
) error {
	key := balanceKey(account, asset)
	if amount == 0 {
		if err := s.store.TxDelete(tx, key, balance{}); err != nil &&
			err != badgerhold.ErrNotFound {
			return err
		}
		return nil
	}
	return s.store.TxUpsert(tx, key, balance{account, asset, amount})
}

func balanceKey(account, asset string) string {
	return fmt.Sprintf("%s/%s", account, asset)
}
