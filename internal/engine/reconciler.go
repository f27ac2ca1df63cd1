package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/timucin/cyrpto-trader/internal/domain"
	"github.com/timucin/cyrpto-trader/internal/gateway"
	"github.com/timucin/cyrpto-trader/internal/infra"
	"github.com/timucin/cyrpto-trader/internal/storage"
	"github.com/timucin/cyrpto-trader/internal/strategy"
)

// minBuyNotional is the smallest currency total worth turning into a
// buy order; the exchange rejects anything below its own minimum
// anyway, this just avoids the round trip.
var minBuyNotional = domain.MustMoney("0.0001")

// cancelSettle is the pause after each confirmed cancellation, keeping
// the burst of cancel+place calls under the venue's rate ceiling.
const cancelSettle = 200 * time.Millisecond

// Reconciler brings the exchange's resting orders into agreement with
// one cycle's decision: cancel everything that contradicts it, then
// place at most one new order on the decided side.
//
// A cancel the exchange did not confirm keeps its order in the working
// set. That is the one divergence that must never happen silently: if
// we assume an order is gone while it still rests, the next placement
// splits capital across competing intents.
type Reconciler struct {
	gw      gateway.Gateway
	pair    string
	maxAmt  domain.Money
	clock   Clock
	journal *storage.Journal // optional
}

// NewReconciler wires a reconciler. journal may be nil.
func NewReconciler(gw gateway.Gateway, pair string, maxTradingAmount domain.Money, clock Clock, journal *storage.Journal) *Reconciler {
	return &Reconciler{
		gw:      gw,
		pair:    pair,
		maxAmt:  maxTradingAmount,
		clock:   clock,
		journal: journal,
	}
}

// Reconcile executes the decision against the exchange. cycleID tags
// the journal rows of this cycle.
func (r *Reconciler) Reconcile(ctx context.Context, cycleID string, dec domain.Decision, snap domain.Snapshot, prices strategy.DiscoveredPrices) error {
	switch dec {
	case domain.DecisionNone:
		// Nothing to intend: clear both sides.
		r.cancelAll(ctx, cycleID, snap.BuyOrders)
		r.cancelAll(ctx, cycleID, snap.SellOrders)
		return nil

	case domain.DecisionSell:
		if !prices.SellOK {
			return fmt.Errorf("reconcile: sell decision without a sell price")
		}
		r.cancelAll(ctx, cycleID, snap.BuyOrders)
		kept := r.cancelMismatched(ctx, cycleID, snap.SellOrders, prices.Sell)
		if kept == 0 {
			r.placeSell(ctx, cycleID, snap, prices.Sell)
		}
		return nil

	case domain.DecisionBuy:
		if !prices.BuyOK {
			return fmt.Errorf("reconcile: buy decision without a buy price")
		}
		r.cancelAll(ctx, cycleID, snap.SellOrders)
		kept := r.cancelMismatched(ctx, cycleID, snap.BuyOrders, prices.Buy)
		if kept == 0 {
			r.placeBuy(ctx, cycleID, snap, prices.Buy)
		}
		return nil

	default:
		return fmt.Errorf("reconcile: unknown decision %v", dec)
	}
}

// cancelAll cancels every order in the list unconditionally.
func (r *Reconciler) cancelAll(ctx context.Context, cycleID string, orders []domain.Order) {
	for _, o := range orders {
		r.cancelOne(ctx, cycleID, o)
	}
}

// cancelMismatched cancels the orders whose price is not exactly the
// target and returns how many orders still rest on the side afterwards:
// the ones kept on purpose plus the ones whose cancel was not
// confirmed.
func (r *Reconciler) cancelMismatched(ctx context.Context, cycleID string, orders []domain.Order, target domain.Money) int {
	kept := 0
	for _, o := range orders {
		if o.Price.Equal(target) {
			slog.Debug("order already at target price", slog.String("id", o.ID))
			kept++
			continue
		}
		if !r.cancelOne(ctx, cycleID, o) {
			kept++
		}
	}
	return kept
}

// cancelOne reports whether the order can be considered gone. "Not
// found" counts as gone (filled or canceled behind our back); any other
// failure keeps it.
func (r *Reconciler) cancelOne(ctx context.Context, cycleID string, o domain.Order) bool {
	confirmed, err := r.gw.CancelOrder(ctx, o.ID)
	if errors.Is(err, gateway.ErrOrderNotFound) {
		slog.Info("order already gone from exchange", slog.String("id", o.ID))
		r.recordOrder(ctx, cycleID, "cancel", o.ID, o.Side, o.Price, o.Amount, true)
		return true
	}
	if err != nil || !confirmed {
		slog.Warn("cancel not confirmed, keeping order in working set",
			slog.String("id", o.ID),
			slog.String("side", string(o.Side)),
			slog.Any("error", err))
		infra.MtxCancelFailures.WithLabelValues(string(o.Side)).Inc()
		r.recordOrder(ctx, cycleID, "cancel", o.ID, o.Side, o.Price, o.Amount, false)
		return false
	}

	slog.Info("order canceled",
		slog.String("id", o.ID),
		slog.String("side", string(o.Side)),
		slog.String("price", o.Price.String()))
	infra.MtxOrdersCanceled.WithLabelValues(string(o.Side)).Inc()
	r.recordOrder(ctx, cycleID, "cancel", o.ID, o.Side, o.Price, o.Amount, true)

	// Give the venue a beat before the next call.
	r.clock.Sleep(ctx, cancelSettle)
	return true
}

// placeSell places the one sell order of this cycle: the whole coin
// position capped at the configured maximum.
func (r *Reconciler) placeSell(ctx context.Context, cycleID string, snap domain.Snapshot, price domain.Money) {
	amount := snap.Coin.Total
	if amount.GreaterThan(r.maxAmt) {
		amount = r.maxAmt
	}
	if !amount.IsPositive() {
		slog.Debug("no coin to sell, skipping placement")
		return
	}
	r.place(ctx, cycleID, domain.SideSell, price, amount)
}

// placeBuy places the one buy order of this cycle, spending the whole
// currency total. One satoshi is shaved off the amount so fee rounding
// can never tip the order over the available balance.
func (r *Reconciler) placeBuy(ctx context.Context, cycleID string, snap domain.Snapshot, price domain.Money) {
	if !snap.Currency.Total.GreaterThan(minBuyNotional) {
		slog.Debug("currency total below minimum notional, skipping placement",
			slog.String("total", snap.Currency.Total.String()))
		return
	}
	amount := snap.Currency.Total.Div(price).Sub(domain.Satoshi)
	if !amount.IsPositive() {
		slog.Debug("buy amount resolves to zero, skipping placement")
		return
	}
	r.place(ctx, cycleID, domain.SideBuy, price, amount)
}

func (r *Reconciler) place(ctx context.Context, cycleID string, side domain.Side, price, amount domain.Money) {
	id, err := r.gw.PlaceOrder(ctx, r.pair, side, price, amount)
	if err != nil {
		// Placement failures are never fatal: the order is simply not
		// placed this cycle and the next cycle starts from fresh state.
		if gateway.IsRejected(err) {
			slog.Warn("order rejected by exchange",
				slog.String("side", string(side)),
				slog.Any("error", err))
			infra.MtxPlaceRejected.WithLabelValues(string(side)).Inc()
		} else {
			slog.Error("order placement failed",
				slog.String("side", string(side)),
				slog.Any("error", err))
		}
		r.recordOrder(ctx, cycleID, "place", "", side, price, amount, false)
		return
	}

	slog.Info("order placed",
		slog.String("id", id),
		slog.String("side", string(side)),
		slog.String("price", price.String()),
		slog.String("amount", amount.String()))
	infra.MtxOrdersPlaced.WithLabelValues(string(side)).Inc()
	r.recordOrder(ctx, cycleID, "place", id, side, price, amount, true)
}

func (r *Reconciler) recordOrder(ctx context.Context, cycleID, action, orderID string, side domain.Side, price, amount domain.Money, ok bool) {
	if r.journal == nil {
		return
	}
	ev := storage.OrderEvent{
		CycleID:     cycleID,
		TsUnixMicro: r.clock.Now().UnixMicro(),
		Action:      action,
		OrderID:     orderID,
		Side:        string(side),
		Price:       price.String(),
		Amount:      amount.String(),
		OK:          ok,
	}
	if err := r.journal.RecordOrderEvent(ctx, ev); err != nil {
		slog.Warn("journal write failed", slog.Any("error", err))
	}
}
