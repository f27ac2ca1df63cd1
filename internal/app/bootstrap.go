// Package app wires the process together: configuration, logging,
// workspace, journal, metrics and the gateway for the selected trading
// mode.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/timucin/cyrpto-trader/internal/domain"
	"github.com/timucin/cyrpto-trader/internal/gateway"
	"github.com/timucin/cyrpto-trader/internal/gateway/poloniex"
	"github.com/timucin/cyrpto-trader/internal/infra"
	"github.com/timucin/cyrpto-trader/internal/storage"
)

// confirmEnv must be set to "true" before the trader will touch a real
// account. The settings file alone is not enough to spend real money.
const confirmEnv = "CONFIRM_REAL_MONEY"

// App holds everything Bootstrap built. Close releases it in reverse
// order.
type App struct {
	Config  *infra.Config
	Gateway gateway.Gateway
	Journal *storage.Journal

	closers []func()
}

// Bootstrap performs the startup sequence: config, logger, workspace
// directories, single-instance lock, journal, metrics server, gateway.
func Bootstrap(configPath string) (*App, error) {
	if configPath == "" {
		configPath = infra.ResolveConfigPath()
	}
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(infra.NewLogger(cfg.Logging.Level))

	a := &App{Config: cfg}

	// Two traders reconciling the same account cancel each other's
	// orders; refuse to start next to another instance.
	workDir := infra.WorkspaceDir()
	dataDir := filepath.Join(workDir, "data", cfg.Trading.Mode)
	if err := infra.EnsureDir(dataDir); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	unlock, err := infra.CreateLockFile(workDir)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, unlock)

	journal, err := storage.NewJournal(filepath.Join(dataDir, "journal.db"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open journal: %w", err)
	}
	a.Journal = journal
	a.closers = append(a.closers, func() { journal.Close() })
	slog.Info("journal opened", slog.String("dir", dataDir), slog.String("mode", cfg.Trading.Mode))

	infra.StartMetricsServer(cfg.Metrics.ListenAddr)

	gw, err := buildGateway(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Gateway = gw

	return a, nil
}

// Close releases resources in reverse acquisition order.
func (a *App) Close() {
	if c, ok := a.Gateway.(interface{ Close() }); ok && a.Gateway != nil {
		c.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// buildGateway selects the venue for the configured mode. Paper mode
// trades a virtual account against the live public order book, so dry
// runs see real market conditions; real mode additionally demands an
// explicit environment confirmation.
func buildGateway(cfg *infra.Config) (gateway.Gateway, error) {
	switch cfg.Trading.Mode {
	case "paper":
		balances := map[string]domain.Money{
			cfg.Trading.Coin:     cfg.Paper.CoinBalance,
			cfg.Trading.Currency: cfg.Paper.CurrencyBalance,
		}
		slog.Info("paper venue ready",
			slog.String(cfg.Trading.Coin, cfg.Paper.CoinBalance.String()),
			slog.String(cfg.Trading.Currency, cfg.Paper.CurrencyBalance.String()))
		return &paperLive{
			Paper:  gateway.NewPaper(balances),
			market: poloniex.NewClient(cfg),
		}, nil

	case "real":
		if os.Getenv(confirmEnv) != "true" {
			return nil, fmt.Errorf("trading.mode is real but %s is not set to true", confirmEnv)
		}
		return poloniex.NewClient(cfg), nil

	default:
		return nil, fmt.Errorf("unknown trading.mode %q", cfg.Trading.Mode)
	}
}

// paperLive is the paper venue with its order book replaced by the
// exchange's public one.
type paperLive struct {
	*gateway.Paper
	market *poloniex.Client
}

func (g *paperLive) OrderBook(ctx context.Context, pair string, depth int) (domain.RawBook, error) {
	return g.market.OrderBook(ctx, pair, depth)
}

func (g *paperLive) Close() {
	g.market.Close()
}
