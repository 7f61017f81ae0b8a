package domain

import (
	"github.com/tdex-network/tdex-amm/pkg/mathutil"
)

// LedgerState is the serializable form of a LiquidityShareLedger.
type LedgerState struct {
	Token       string
	Owner       string
	TotalShares uint64
	Balances    map[string]uint64
}

// LiquidityShareLedger keeps the bookkeeping of the shares representing the
// proportional ownership of a pool. Shares are created and destroyed only by
// the owning pool, the sum of all balances always equals the total supply.
// The ledger is not safe for concurrent use, the owning pool serializes the
// access to it.
type LiquidityShareLedger struct {
	token       string
	owner       string
	totalShares uint64
	balances    map[string]uint64
}

// NewLiquidityShareLedger returns an empty ledger for the given share token.
func NewLiquidityShareLedger(token string) *LiquidityShareLedger {
	return &LiquidityShareLedger{
		token:    token,
		balances: make(map[string]uint64),
	}
}

// Token returns the identifier of the share token.
func (l *LiquidityShareLedger) Token() string {
	return l.token
}

// Owner returns the id of the pool allowed to mint and burn shares.
func (l *LiquidityShareLedger) Owner() string {
	return l.owner
}

// Mint increases the balance of holder and the total supply by amount.
func (l *LiquidityShareLedger) Mint(caller, holder string, amount uint64) error {
	if err := l.validate(caller, holder, amount); err != nil {
		return err
	}

	totalShares, err := mathutil.SafeAdd(l.totalShares, amount)
	if err != nil {
		return ErrAmountTooBig
	}

	l.totalShares = totalShares
	l.balances[holder] += amount
	return nil
}

// Burn decreases the balance of holder and the total supply by amount.
func (l *LiquidityShareLedger) Burn(caller, holder string, amount uint64) error {
	if err := l.validate(caller, holder, amount); err != nil {
		return err
	}

	balance := l.balances[holder]
	if amount > balance {
		return ErrInsufficientBalance
	}

	l.totalShares -= amount
	if balance == amount {
		delete(l.balances, holder)
		return nil
	}
	l.balances[holder] = balance - amount
	return nil
}

// BalanceOf returns the shares held by holder.
func (l *LiquidityShareLedger) BalanceOf(holder string) uint64 {
	return l.balances[holder]
}

// TotalSupply returns the overall amount of shares.
func (l *LiquidityShareLedger) TotalSupply() uint64 {
	return l.totalShares
}

// State returns a copy of the ledger.
func (l *LiquidityShareLedger) State() LedgerState {
	balances := make(map[string]uint64, len(l.balances))
	for holder, balance := range l.balances {
		balances[holder] = balance
	}
	return LedgerState{
		Token:       l.token,
		Owner:       l.owner,
		TotalShares: l.totalShares,
		Balances:    balances,
	}
}

// RestoreLedger rebuilds a ledger from its state, making sure balances sum
// up to the total supply.
func RestoreLedger(state LedgerState) (*LiquidityShareLedger, error) {
	balances := make(map[string]uint64, len(state.Balances))
	sum := uint64(0)
	for holder, balance := range state.Balances {
		if balance == 0 {
			continue
		}
		var err error
		if sum, err = mathutil.SafeAdd(sum, balance); err != nil {
			return nil, ErrCorruptedState
		}
		balances[holder] = balance
	}
	if sum != state.TotalShares {
		return nil, ErrCorruptedState
	}

	return &LiquidityShareLedger{
		token:       state.Token,
		owner:       state.Owner,
		totalShares: state.TotalShares,
		balances:    balances,
	}, nil
}

func (l *LiquidityShareLedger) bind(owner string) error {
	if l.owner != "" && l.owner != owner {
		return ErrLedgerInUse
	}
	l.owner = owner
	return nil
}

func (l *LiquidityShareLedger) validate(caller, holder string, amount uint64) error {
	if l.owner == "" || caller != l.owner {
		return ErrUnauthorized
	}
	if holder == "" {
		return ErrInvalidAccount
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	return nil
}
