package inmemorystore

import (
	"context"
	"sort"
	"sync"

	"github.com/tdex-network/tdex-amm/internal/infrastructure/gateway"
	"github.com/tdex-network/tdex-amm/pkg/mathutil"
)

type balanceKey struct {
	account string
	asset   string
}

type balanceStore struct {
	balances   map[balanceKey]uint64
	registered map[balanceKey]bool

	lock *sync.RWMutex
}

// NewBalanceStore returns an empty in-memory gateway.BalanceStore.
func NewBalanceStore() gateway.BalanceStore {
	return &balanceStore{
		balances:   make(map[balanceKey]uint64),
		registered: make(map[balanceKey]bool),
		lock:       &sync.RWMutex{},
	}
}

func (s *balanceStore) RegisterAsset(_ context.Context, account, asset string) error {
	if account == "" || asset == "" {
		return gateway.ErrInvalidTransfer
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.registered[balanceKey{account, asset}] = true
	return nil
}

func (s *balanceStore) IsAssetRegistered(
	_ context.Context, account, asset string,
) (bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.registered[balanceKey{account, asset}], nil
}

func (s *balanceStore) Transfer(
	_ context.Context, asset, from, to string, amount uint64,
) error {
	if asset == "" || from == "" || to == "" || amount == 0 {
		return gateway.ErrInvalidTransfer
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	fromKey, toKey := balanceKey{from, asset}, balanceKey{to, asset}
	if s.balances[fromKey] < amount {
		return gateway.ErrInsufficientFunds
	}
	if from == to {
		return nil
	}
	newBalance, err := mathutil.SafeAdd(s.balances[toKey], amount)
	if err != nil {
		return err
	}

	s.debit(fromKey, amount)
	s.balances[toKey] = newBalance
	return nil
}

func (s *balanceStore) Mint(
	_ context.Context, asset, to string, amount uint64,
) error {
	if asset == "" || to == "" || amount == 0 {
		return gateway.ErrInvalidTransfer
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	key := balanceKey{to, asset}
	newBalance, err := mathutil.SafeAdd(s.balances[key], amount)
	if err != nil {
		return err
	}
	s.balances[key] = newBalance
	return nil
}

func (s *balanceStore) Burn(
	_ context.Context, asset, from string, amount uint64,
) error {
	if asset == "" || from == "" || amount == 0 {
		return gateway.ErrInvalidTransfer
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	key := balanceKey{from, asset}
	if s.balances[key] < amount {
		return gateway.ErrInsufficientFunds
	}
	s.debit(key, amount)
	return nil
}

func (s *balanceStore) GetBalance(
	_ context.Context, account, asset string,
) (uint64, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.balances[balanceKey{account, asset}], nil
}

func (s *balanceStore) GetBalances(
	_ context.Context, account string,
) ([]gateway.Balance, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	balances := make([]gateway.Balance, 0)
	for key, amount := range s.balances {
		if key.account == account {
			balances = append(balances, gateway.Balance{
				Account: key.account,
				Asset:   key.asset,
				Amount:  amount,
			})
		}
	}
	sort.SliceStable(balances, func(i, j int) bool {
		return balances[i].Asset < balances[j].Asset
	})
	return balances, nil
}

func (s *balanceStore) Close() {}

func (s *balanceStore) debit(key balanceKey, amount uint64) {
	if s.balances[key] == amount {
		delete(s.balances, key)
		return
	}
	s.balances[key] -= amount
}
