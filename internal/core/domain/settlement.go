package domain

import (
	"context"
	"fmt"
	"strings"
)

type settlementLeg struct {
	leg    TransferLeg
	asset  string
	exec   func(ctx context.Context) Status
	revert func(ctx context.Context) Status
}

// settlement runs the gateway legs of an operation in order. At the first
// failing leg, the ones already executed are reverted in reverse order so
// that the operation leaves no effect on external balances.
type settlement struct {
	legs []settlementLeg
}

func (s *settlement) add(legs ...settlementLeg) {
	s.legs = append(s.legs, legs...)
}

func (s *settlement) run(ctx context.Context) error {
	for i, l := range s.legs {
		if status := l.exec(ctx); !status.IsSuccess() {
			return &TransferError{
				Leg:         l.leg,
				Asset:       l.asset,
				Status:      status,
				RollbackErr: s.revert(ctx, s.legs[:i]),
			}
		}
	}
	return nil
}

func (s *settlement) revert(ctx context.Context, done []settlementLeg) error {
	failed := make([]string, 0)
	for i := len(done) - 1; i >= 0; i-- {
		l := done[i]
		if l.revert == nil {
			continue
		}
		if status := l.revert(ctx); !status.IsSuccess() {
			failed = append(failed, fmt.Sprintf("%s %s: %s", l.leg, l.asset, status))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to revert legs: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (p *Pool) registerAssetLeg(asset string) settlementLeg {
	return settlementLeg{
		leg:   LegRegisterAsset,
		asset: asset,
		exec: func(ctx context.Context) Status {
			return p.gateway.EnsureAssetRegistered(ctx, p.id, asset)
		},
	}
}

func (p *Pool) transferInLeg(asset, from string, amount uint64) settlementLeg {
	return settlementLeg{
		leg:   LegTransferIn,
		asset: asset,
		exec: func(ctx context.Context) Status {
			return p.gateway.TransferInto(ctx, p.id, asset, from, amount)
		},
		revert: func(ctx context.Context) Status {
			return p.gateway.TransferOut(ctx, p.id, asset, from, amount)
		},
	}
}

func (p *Pool) transferOutLeg(asset, to string, amount uint64) settlementLeg {
	return settlementLeg{
		leg:   LegTransferOut,
		asset: asset,
		exec: func(ctx context.Context) Status {
			return p.gateway.TransferOut(ctx, p.id, asset, to, amount)
		},
		revert: func(ctx context.Context) Status {
			return p.gateway.TransferInto(ctx, p.id, asset, to, amount)
		},
	}
}

func (p *Pool) mintSharesLeg(to string, amount uint64) settlementLeg {
	token := p.ledger.Token()
	return settlementLeg{
		leg:   LegMintShares,
		asset: token,
		exec: func(ctx context.Context) Status {
			return p.gateway.MintShareRepresentation(ctx, token, to, amount)
		},
		revert: func(ctx context.Context) Status {
			return p.gateway.BurnShareRepresentation(ctx, token, to, amount)
		},
	}
}

func (p *Pool) burnSharesLeg(from string, amount uint64) settlementLeg {
	token := p.ledger.Token()
	return settlementLeg{
		leg:   LegBurnShares,
		asset: token,
		exec: func(ctx context.Context) Status {
			return p.gateway.BurnShareRepresentation(ctx, token, from, amount)
		},
		revert: func(ctx context.Context) Status {
			return p.gateway.MintShareRepresentation(ctx, token, from, amount)
		},
	}
}
