package domain

// Decision is the outcome of one cycle's trade decision. It is derived
// fresh every cycle and never persisted.
type Decision int

const (
	DecisionNone Decision = iota
	DecisionBuy
	DecisionSell
)

func (d Decision) String() string {
	switch d {
	case DecisionBuy:
		return "BUY"
	case DecisionSell:
		return "SELL"
	default:
		return "NONE"
	}
}
