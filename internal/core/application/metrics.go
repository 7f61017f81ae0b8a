package application

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tdex-network/tdex-amm/internal/core/domain"
)

const (
	metricsNamespace = "tdexamm"
	metricsSubsystem = "pool"

	opCreatePool      = "create_pool"
	opAddLiquidity    = "add_liquidity"
	opRemoveLiquidity = "remove_liquidity"
	opSwap            = "swap"
	opSetSlippage     = "set_slippage"
	opPersist         = "persist"
)

type metrics struct {
	swaps           *prometheus.CounterVec
	swapVolume      *prometheus.CounterVec
	fees            *prometheus.CounterVec
	liquidityEvents *prometheus.CounterVec
	failures        *prometheus.CounterVec
	reserves        *prometheus.GaugeVec
	totalShares     *prometheus.GaugeVec
	pools           prometheus.Gauge
}

// newMetrics registers the pool collectors with registerer, or leaves them
// unregistered if nil.
func newMetrics(registerer prometheus.Registerer) *metrics {
	factory := promauto.With(registerer)

	return &metrics{
		swaps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "swaps_total",
				Help:      "Total number of executed swaps",
			},
			[]string{"pool", "asset_in"},
		),
		swapVolume: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "swap_volume_total",
				Help:      "Total gross amount sold to pools, by asset",
			},
			[]string{"pool", "asset"},
		),
		fees: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "fees_total",
				Help:      "Total fees credited to treasuries, by asset",
			},
			[]string{"pool", "asset"},
		),
		liquidityEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "liquidity_events_total",
				Help:      "Total number of liquidity deposits and withdrawals",
			},
			[]string{"pool", "kind"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "failures_total",
				Help:      "Total number of rejected operations",
			},
			[]string{"operation", "reason"},
		),
		reserves: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "reserve",
				Help:      "Current reserve of a pool, by asset",
			},
			[]string{"pool", "asset"},
		),
		totalShares: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "total_shares",
				Help:      "Current supply of liquidity shares of a pool",
			},
			[]string{"pool"},
		),
		pools: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "count",
				Help:      "Number of registered pools",
			},
		),
	}
}

func (m *metrics) recordSwap(receipt *domain.SwapReceipt) {
	m.swaps.WithLabelValues(receipt.PoolID, receipt.AssetIn).Inc()
	m.swapVolume.WithLabelValues(receipt.PoolID, receipt.AssetIn).
		Add(float64(receipt.AmountIn))
	if receipt.Fee > 0 {
		m.fees.WithLabelValues(receipt.PoolID, receipt.AssetIn).
			Add(float64(receipt.Fee))
	}
}

func (m *metrics) recordLiquidityEvent(poolID, kind string) {
	m.liquidityEvents.WithLabelValues(poolID, kind).Inc()
}

func (m *metrics) recordFailure(operation string, err error) {
	m.failures.WithLabelValues(operation, failureReason(err)).Inc()
}

func (m *metrics) updatePool(state domain.PoolState) {
	m.reserves.WithLabelValues(state.ID, state.AssetA).Set(float64(state.ReserveA))
	m.reserves.WithLabelValues(state.ID, state.AssetB).Set(float64(state.ReserveB))
	m.totalShares.WithLabelValues(state.ID).Set(float64(state.Ledger.TotalShares))
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrSlippageBreached):
		return "slippage"
	case errors.Is(err, domain.ErrTransferFailure):
		return "transfer"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, ErrFeeTierNotAllowed):
		return "invalid_input"
	case errors.Is(err, domain.ErrPoolNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
