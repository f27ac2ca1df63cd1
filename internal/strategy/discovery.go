// Package strategy holds the pure decision logic of the scalper: dust-aware
// price discovery over the order book and the buy/sell/none state machine.
// Nothing in this package performs I/O; it reads a cycle's Snapshot and
// returns values.
package strategy

import (
	"github.com/timucin/cyrpto-trader/internal/domain"
)

// DiscoveredPrices carries the per-cycle target prices. A side with its
// flag unset means the scan exhausted the book without clearing the dust
// threshold; the Money value is meaningless then and must not be read.
// The flag is deliberately explicit: a missing price is not a zero price.
type DiscoveredPrices struct {
	Sell   domain.Money
	SellOK bool
	Buy    domain.Money
	BuyOK  bool
}

// Thresholds are the dust parameters of the scan plus the nudge applied
// to beat the dust-clearing level.
type Thresholds struct {
	DustAmount domain.Money // per-level amount that counts as a real wall
	DustTotal  domain.Money // cumulative notional that counts as real depth
	Nudge      domain.Money // price offset to undercut/outbid the wall
}

// Discover runs the dust scan on both sides of the book.
func Discover(book domain.OrderBook, th Thresholds) DiscoveredPrices {
	var p DiscoveredPrices
	if price, ok := scanSide(book.Asks, th); ok {
		// Undercut the ask wall: that is the price we can realistically
		// sell at ahead of it.
		p.Sell = price.Sub(th.Nudge)
		p.SellOK = true
	}
	if price, ok := scanSide(book.Bids, th); ok {
		// Outbid the bid wall.
		p.Buy = price.Add(th.Nudge)
		p.BuyOK = true
	}
	return p
}

// scanSide walks the levels best-first and returns the price of the
// first level that clears the dust threshold. Levels matched to our own
// open orders are skipped entirely: our resting liquidity is not market
// depth and must not count toward the cumulative total either.
func scanSide(levels []domain.BookLevel, th Thresholds) (domain.Money, bool) {
	total := domain.Money{}
	for _, level := range levels {
		if level.Matched() {
			continue
		}
		total = total.Add(level.Notional)
		if level.Amount.GreaterThanOrEqual(th.DustAmount) || total.GreaterThanOrEqual(th.DustTotal) {
			return level.Price, true
		}
	}
	return domain.Money{}, false
}
