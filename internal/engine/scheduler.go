package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/timucin/cyrpto-trader/internal/domain"
	"github.com/timucin/cyrpto-trader/internal/gateway"
	"github.com/timucin/cyrpto-trader/internal/infra"
	"github.com/timucin/cyrpto-trader/internal/storage"
	"github.com/timucin/cyrpto-trader/internal/strategy"
)

// Mode selects what the loop does with each snapshot.
type Mode string

const (
	// ModeScalp runs the full decision rules indefinitely.
	ModeScalp Mode = "scalp"
	// ModeSellAll forces sells until the coin position is empty.
	ModeSellAll Mode = "sell_all"
	// ModeBuyAll forces buys until the currency runs out.
	ModeBuyAll Mode = "buy_all"
)

// ParseMode validates a mode string from the command line.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeScalp, ModeSellAll, ModeBuyAll:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want scalp, sell_all or buy_all)", s)
}

// Scheduler runs the trading loop at a fixed cadence. Every cycle
// refetches the complete exchange state; nothing is carried over, so a
// crashed or skipped cycle costs one poll interval and nothing else.
type Scheduler struct {
	gw      gateway.Gateway
	cfg     *infra.Config
	rec     *Reconciler
	breaker *infra.CircuitBreaker
	clock   Clock
	journal *storage.Journal // optional

	thresholds strategy.Thresholds
	limits     strategy.Limits
}

// NewScheduler wires the loop. journal may be nil.
func NewScheduler(gw gateway.Gateway, cfg *infra.Config, clock Clock, journal *storage.Journal) *Scheduler {
	return &Scheduler{
		gw:      gw,
		cfg:     cfg,
		rec:     NewReconciler(gw, cfg.Pair(), cfg.Trading.MaxTradingAmount, clock, journal),
		breaker: infra.NewCircuitBreaker("gateway-reads", 5, 30*time.Second),
		clock:   clock,
		journal: journal,
		thresholds: strategy.Thresholds{
			DustAmount: cfg.Trading.DustAmount,
			DustTotal:  cfg.Trading.DustTotal,
			Nudge:      cfg.Trading.PriceNudge,
		},
		limits: strategy.Limits{
			MinSpread:          cfg.Trading.MinSpread,
			MinCurrencyBalance: cfg.Trading.MinCurrencyBalance,
		},
	}
}

// Run executes cycles until ctx is canceled or, in the bounded modes,
// until the mode's goal is reached. Cycle errors are logged and the
// cadence continues; only authentication failures abort the run.
func (s *Scheduler) Run(ctx context.Context, mode Mode) error {
	slog.Info("trading loop started",
		slog.String("mode", string(mode)),
		slog.String("pair", s.cfg.Pair()),
		slog.Duration("interval", s.cfg.PollInterval()))

	for {
		done, err := s.cycle(ctx, mode)
		if err != nil {
			if gateway.IsAuth(err) {
				return fmt.Errorf("authentication failed, refusing to continue: %w", err)
			}
			slog.Error("cycle failed", slog.Any("error", err))
		}
		if done {
			slog.Info("goal reached, loop finished", slog.String("mode", string(mode)))
			return nil
		}
		if err := s.clock.Sleep(ctx, s.cfg.PollInterval()); err != nil {
			return nil
		}
	}
}

// cycle runs one snapshot -> discover -> decide -> reconcile pass.
// done reports that a bounded mode has reached its goal.
func (s *Scheduler) cycle(ctx context.Context, mode Mode) (done bool, err error) {
	if !s.breaker.Allow() {
		slog.Warn("breaker open, skipping cycle")
		infra.MtxCycleErrors.WithLabelValues("breaker_open").Inc()
		return false, nil
	}

	snap, err := s.fetchSnapshot(ctx)
	if err != nil {
		s.breaker.RecordFailure()
		infra.MtxCycleErrors.WithLabelValues("gateway").Inc()
		return false, err
	}
	s.breaker.RecordSuccess()

	prices := strategy.Discover(snap.Book, s.thresholds)
	dec, done := s.decide(mode, prices, snap)

	slog.Info("cycle",
		slog.String("decision", dec.String()),
		slog.String("coin_total", snap.Coin.Total.String()),
		slog.String("currency_total", snap.Currency.Total.String()),
		slog.String("sell_price", priceText(prices.Sell, prices.SellOK)),
		slog.String("buy_price", priceText(prices.Buy, prices.BuyOK)))

	infra.MtxCoinBalance.Set(snap.Coin.Total.Float64())
	infra.MtxCurrencyBalance.Set(snap.Currency.Total.Float64())

	cycleID := uuid.NewString()
	recErr := s.rec.Reconcile(ctx, cycleID, dec, snap, prices)

	s.recordCycle(ctx, cycleID, mode, dec, prices, snap)
	infra.MtxCycles.WithLabelValues(dec.String()).Inc()

	return done, recErr
}

// decide maps the mode onto a decision. The bounded modes run the same
// reconciliation as scalp, just with the decision pinned to one side;
// when their goal is met they emit one final None so the reconciler
// clears whatever still rests on the book.
func (s *Scheduler) decide(mode Mode, prices strategy.DiscoveredPrices, snap domain.Snapshot) (domain.Decision, bool) {
	switch mode {
	case ModeSellAll:
		if !snap.Coin.Total.IsPositive() {
			return domain.DecisionNone, true
		}
		if prices.SellOK {
			return domain.DecisionSell, false
		}
		return domain.DecisionNone, false

	case ModeBuyAll:
		if !snap.Currency.Total.GreaterThan(s.limits.MinCurrencyBalance) {
			return domain.DecisionNone, true
		}
		if prices.BuyOK {
			return domain.DecisionBuy, false
		}
		return domain.DecisionNone, false

	default:
		return strategy.Decide(prices, snap, s.limits), false
	}
}

// fetchSnapshot pulls the three exchange views of one cycle and folds
// them into a Snapshot.
func (s *Scheduler) fetchSnapshot(ctx context.Context) (domain.Snapshot, error) {
	pair := s.cfg.Pair()

	open, err := s.gw.OpenOrders(ctx, pair)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("open orders: %w", err)
	}
	balances, err := s.gw.Balances(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("balances: %w", err)
	}
	book, err := s.gw.OrderBook(ctx, pair, s.cfg.Trading.BookDepth)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("order book: %w", err)
	}

	freeCoin := balances[s.cfg.Trading.Coin]
	freeCurrency := balances[s.cfg.Trading.Currency]
	return domain.BuildSnapshot(open, freeCoin, freeCurrency, book), nil
}

func (s *Scheduler) recordCycle(ctx context.Context, cycleID string, mode Mode, dec domain.Decision, prices strategy.DiscoveredPrices, snap domain.Snapshot) {
	if s.journal == nil {
		return
	}
	rec := storage.CycleRecord{
		ID:            cycleID,
		TsUnixMicro:   s.clock.Now().UnixMicro(),
		Mode:          string(mode),
		Decision:      dec.String(),
		SellPrice:     priceText(prices.Sell, prices.SellOK),
		BuyPrice:      priceText(prices.Buy, prices.BuyOK),
		CoinTotal:     snap.Coin.Total.String(),
		CurrencyTotal: snap.Currency.Total.String(),
	}
	if err := s.journal.RecordCycle(ctx, rec); err != nil {
		slog.Warn("journal write failed", slog.Any("error", err))
	}
}

// priceText renders an optional price for logs and the journal; absence
// is an empty string, never a zero.
func priceText(m domain.Money, ok bool) string {
	if !ok {
		return ""
	}
	return m.String()
}
