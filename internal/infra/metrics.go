package infra

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metrics the trading loop updates. Registered in init and
// served by StartMetricsServer at /metrics.
var (
	MtxCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scalper_cycles_total",
			Help: "Completed trading cycles by decision",
		},
		[]string{"decision"},
	)

	MtxCycleErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scalper_cycle_errors_total",
			Help: "Cycles aborted before a decision, by reason",
		},
		[]string{"reason"}, // gateway|breaker_open
	)

	MtxOrdersPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scalper_orders_placed_total",
			Help: "Orders placed",
		},
		[]string{"side"},
	)

	MtxOrdersCanceled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scalper_orders_canceled_total",
			Help: "Orders canceled",
		},
		[]string{"side"},
	)

	MtxCancelFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scalper_cancel_failures_total",
			Help: "Cancel calls that failed or were not confirmed",
		},
		[]string{"side"},
	)

	MtxPlaceRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scalper_place_rejected_total",
			Help: "Order placements the exchange rejected",
		},
		[]string{"side"},
	)

	MtxCoinBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scalper_coin_balance_total",
			Help: "Total coin balance (free + locked), approximate",
		},
	)

	MtxCurrencyBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scalper_currency_balance_total",
			Help: "Total currency balance (free + locked), approximate",
		},
	)
)

func init() {
	prometheus.MustRegister(
		MtxCycles,
		MtxCycleErrors,
		MtxOrdersPlaced,
		MtxOrdersCanceled,
		MtxCancelFailures,
		MtxPlaceRejected,
		MtxCoinBalance,
		MtxCurrencyBalance,
	)
}

// StartMetricsServer serves /metrics on addr in the background. Bind to
// localhost; the endpoint is operational, not public.
func StartMetricsServer(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("metrics server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server failed", slog.Any("error", err))
		}
	}()
}
