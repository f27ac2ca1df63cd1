package domain

// Balance is the per-asset position recomputed from scratch each cycle:
// the free amount the exchange reports plus whatever is locked in our
// resting orders. Total is always free + locked; nothing is mutated
// incrementally.
type Balance struct {
	Free   Money
	Locked Money
	Total  Money
}

// NewBalance builds a Balance from the reported free amount and the sum
// locked in open orders. Values at or below one satoshi are clamped to
// zero on both free and total, absorbing exchange rounding residue that
// would otherwise keep the trader chasing amounts it cannot place.
func NewBalance(free, locked Money) Balance {
	free = ClampDust(free)
	return Balance{
		Free:   free,
		Locked: locked,
		Total:  ClampDust(free.Add(locked)),
	}
}

// ClampDust zeroes any amount of at most one satoshi.
func ClampDust(m Money) Money {
	if m.LessThanOrEqual(Satoshi) {
		return Money{}
	}
	return m
}
