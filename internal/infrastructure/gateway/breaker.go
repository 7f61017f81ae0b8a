package gateway

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/tdex-amm/internal/core/domain"
	"github.com/tdex-network/tdex-amm/pkg/circuitbreaker"
)

type breakerGateway struct {
	gateway domain.AssetTransferGateway
	cb      *gobreaker.CircuitBreaker
}

// WithCircuitBreaker wraps the given gateway so that once it starts failing
// consistently, calls are rejected right away with StatusUnavailable until
// it recovers. Business failures like insufficient funds do not count as
// gateway failures.
func WithCircuitBreaker(
	gateway domain.AssetTransferGateway,
) domain.AssetTransferGateway {
	return &breakerGateway{
		gateway: gateway,
		cb:      circuitbreaker.NewCircuitBreaker("gateway", logStateChange),
	}
}

func (b *breakerGateway) EnsureAssetRegistered(
	ctx context.Context, pool, asset string,
) domain.Status {
	return b.execute(func() domain.Status {
		return b.gateway.EnsureAssetRegistered(ctx, pool, asset)
	})
}

func (b *breakerGateway) TransferInto(
	ctx context.Context, pool, asset, from string, amount uint64,
) domain.Status {
	return b.execute(func() domain.Status {
		return b.gateway.TransferInto(ctx, pool, asset, from, amount)
	})
}

func (b *breakerGateway) TransferOut(
	ctx context.Context, pool, asset, to string, amount uint64,
) domain.Status {
	return b.execute(func() domain.Status {
		return b.gateway.TransferOut(ctx, pool, asset, to, amount)
	})
}

func (b *breakerGateway) MintShareRepresentation(
	ctx context.Context, shareToken, to string, amount uint64,
) domain.Status {
	return b.execute(func() domain.Status {
		return b.gateway.MintShareRepresentation(ctx, shareToken, to, amount)
	})
}

func (b *breakerGateway) BurnShareRepresentation(
	ctx context.Context, shareToken, from string, amount uint64,
) domain.Status {
	return b.execute(func() domain.Status {
		return b.gateway.BurnShareRepresentation(ctx, shareToken, from, amount)
	})
}

func (b *breakerGateway) execute(call func() domain.Status) domain.Status {
	res, err := b.cb.Execute(func() (interface{}, error) {
		status := call()
		if status == domain.StatusFailure || status == domain.StatusUnavailable {
			return status, errors.New(status.String())
		}
		return status, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.StatusUnavailable
	}
	return res.(domain.Status)
}

func logStateChange(name string, from, to gobreaker.State) {
	log.WithFields(log.Fields{
		"breaker": name,
		"from":    from.String(),
		"to":      to.String(),
	}).Warn("circuit breaker state changed")
}
