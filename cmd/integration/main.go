// Command integration runs the full trading loop against the in-memory
// paper venue with a synthetic order book. No network, no keys; it
// exercises discovery, decision and reconciliation end to end and is
// meant to be eyeballed, not scripted.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/timucin/cyrpto-trader/internal/domain"
	"github.com/timucin/cyrpto-trader/internal/engine"
	"github.com/timucin/cyrpto-trader/internal/gateway"
	"github.com/timucin/cyrpto-trader/internal/infra"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	slog.Info("paper integration run starting")

	cfg := &infra.Config{}
	cfg.Trading.Mode = "paper"
	cfg.Trading.Coin = "XMR"
	cfg.Trading.Currency = "BTC"
	cfg.Trading.DustAmount = domain.MustMoney("10")
	cfg.Trading.DustTotal = domain.MustMoney("1")
	cfg.Trading.MinSpread = domain.MustMoney("0.00000100")
	cfg.Trading.MaxTradingAmount = domain.MustMoney("5")
	cfg.Trading.MinCurrencyBalance = domain.MustMoney("0.001")
	cfg.Trading.PriceNudge = domain.MustMoney("0.00000003")
	cfg.Trading.PollIntervalMS = 200
	cfg.Trading.BookDepth = 50
	if err := cfg.Validate(); err != nil {
		slog.Error("bad fixture config", slog.Any("error", err))
		os.Exit(1)
	}

	// Fund the account with currency only: the first cycles should buy,
	// never sell.
	venue := gateway.NewPaper(map[string]domain.Money{
		"BTC": domain.MustMoney("0.05"),
	})
	venue.SetBook(domain.RawBook{
		Bids: []domain.PriceLevel{
			{Price: domain.MustMoney("0.00250000"), Amount: domain.MustMoney("40")},
			{Price: domain.MustMoney("0.00249000"), Amount: domain.MustMoney("120")},
		},
		Asks: []domain.PriceLevel{
			{Price: domain.MustMoney("0.00251000"), Amount: domain.MustMoney("35")},
			{Price: domain.MustMoney("0.00252000"), Amount: domain.MustMoney("90")},
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	sched := engine.NewScheduler(venue, cfg, engine.SystemClock{}, nil)
	if err := sched.Run(ctx, engine.ModeScalp); err != nil {
		slog.Error("loop failed", slog.Any("error", err))
		os.Exit(1)
	}

	open, _ := venue.OpenOrders(context.Background(), cfg.Pair())
	for _, o := range open {
		slog.Info("resting order after run",
			slog.String("id", o.ID),
			slog.String("side", string(o.Side)),
			slog.String("price", o.Price.String()),
			slog.String("amount", o.Amount.String()))
	}
	slog.Info("paper integration run finished")
}
