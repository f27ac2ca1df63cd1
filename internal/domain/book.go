package domain

// PriceLevel is one raw [price, amount] entry from the exchange's book
// endpoint, best levels first.
type PriceLevel struct {
	Price  Money
	Amount Money
}

// RawBook is the order book exactly as fetched: bids sorted highest
// first, asks sorted lowest first.
type RawBook struct {
	Bids []PriceLevel
	Asks []PriceLevel
}

// BookLevel is a normalized book entry. CumNotional accumulates the
// notional of this and all better levels. MatchedOrderID is set when the
// level sits at the exact price of one of our own open orders on that
// side; such levels are our own resting liquidity, not market depth.
type BookLevel struct {
	Side           Side
	Price          Money
	Amount         Money
	Notional       Money
	CumNotional    Money
	MatchedOrderID string
}

// Matched reports whether this level is one of our own orders.
func (l BookLevel) Matched() bool { return l.MatchedOrderID != "" }

// OrderBook holds both normalized sides, best levels first.
type OrderBook struct {
	Bids []BookLevel
	Asks []BookLevel
}

// buildLevels normalizes one side of the raw book, accumulating notional
// and tagging levels that match our own open orders by exact price.
func buildLevels(side Side, raw []PriceLevel, own []Order) []BookLevel {
	levels := make([]BookLevel, 0, len(raw))
	cum := Money{}
	for _, entry := range raw {
		notional := entry.Price.Mul(entry.Amount)
		cum = cum.Add(notional)
		level := BookLevel{
			Side:        side,
			Price:       entry.Price,
			Amount:      entry.Amount,
			Notional:    notional,
			CumNotional: cum,
		}
		for _, o := range own {
			if o.Price.Equal(entry.Price) {
				level.MatchedOrderID = o.ID
				break
			}
		}
		levels = append(levels, level)
	}
	return levels
}
