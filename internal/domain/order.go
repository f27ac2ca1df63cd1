package domain

// Side identifies which half of the book an order rests on.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Order is a read-mostly copy of one of our resting orders as the
// exchange reported it this cycle. The exchange owns the real thing;
// this copy is discarded and refetched every cycle and must never be
// carried across cycles.
type Order struct {
	ID             string
	Side           Side
	Price          Money
	Amount         Money // remaining, in coin units
	StartingAmount Money
}

// Notional is price * remaining amount, in currency units.
func (o Order) Notional() Money {
	return o.Price.Mul(o.Amount)
}
