package strategy

import (
	"github.com/timucin/cyrpto-trader/internal/domain"
)

// Limits are the decision parameters that never change during a run.
type Limits struct {
	MinSpread          domain.Money
	MinCurrencyBalance domain.Money
}

// Decide maps a cycle's snapshot and discovered prices to a decision.
//
// The rule order is an invariant, not an accident: deploying quote
// currency always wins. If there is currency above the floor we buy, no
// matter how thin the spread is. Only liquidating existing coin is gated
// by the spread check. And if either price is missing the book is too
// thin to trade safely at all.
func Decide(prices DiscoveredPrices, snap domain.Snapshot, lim Limits) domain.Decision {
	if !prices.SellOK || !prices.BuyOK {
		return domain.DecisionNone
	}

	if snap.Currency.Total.GreaterThan(lim.MinCurrencyBalance) {
		return domain.DecisionBuy
	}

	spread := prices.Sell.Sub(prices.Buy)
	if spread.GreaterThanOrEqual(lim.MinSpread) && snap.Coin.Total.IsPositive() {
		return domain.DecisionSell
	}

	return domain.DecisionNone
}
