package domain

// Snapshot aggregates everything the exchange reported in one cycle:
// normalized balances for both assets, our open orders split by side,
// and the normalized order book. It is built fresh every cycle and
// thrown away at the end of it; no field survives into the next one.
type Snapshot struct {
	Coin     Balance // base asset, the one being scalped
	Currency Balance // quote asset

	SellOrders []Order
	BuyOrders  []Order

	Book OrderBook
}

// BuildSnapshot is a pure transform over the gateway responses: open
// orders, the free balances for the two assets of the pair, and the raw
// book. Locked amounts come from the orders themselves: a sell order
// locks its remaining coin amount, a buy order locks its notional in
// currency.
func BuildSnapshot(open []Order, freeCoin, freeCurrency Money, book RawBook) Snapshot {
	var snap Snapshot
	lockedCoin := Money{}
	lockedCurrency := Money{}

	for _, o := range open {
		switch o.Side {
		case SideSell:
			snap.SellOrders = append(snap.SellOrders, o)
			lockedCoin = lockedCoin.Add(o.Amount)
		case SideBuy:
			snap.BuyOrders = append(snap.BuyOrders, o)
			lockedCurrency = lockedCurrency.Add(o.Notional())
		}
	}

	snap.Coin = NewBalance(freeCoin, lockedCoin)
	snap.Currency = NewBalance(freeCurrency, lockedCurrency)

	// Bids can only match our buy orders, asks our sell orders.
	snap.Book = OrderBook{
		Bids: buildLevels(SideBuy, book.Bids, snap.BuyOrders),
		Asks: buildLevels(SideSell, book.Asks, snap.SellOrders),
	}
	return snap
}
