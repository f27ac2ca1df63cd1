package domain

import "testing"

func TestSide_Opposite(t *testing.T) {
	if SideBuy.Opposite() != SideSell {
		t.Error("Opposite of BUY should be SELL")
	}
	if SideSell.Opposite() != SideBuy {
		t.Error("Opposite of SELL should be BUY")
	}
}

func TestOrder_Notional(t *testing.T) {
	o := Order{
		Side:   SideBuy,
		Price:  MustMoney("0.00250000"),
		Amount: MustMoney("4"),
	}
	if got := o.Notional().String(); got != "0.01000000" {
		t.Errorf("Notional = %s", got)
	}
}

func TestDecision_String(t *testing.T) {
	tests := []struct {
		dec  Decision
		want string
	}{
		{DecisionNone, "NONE"},
		{DecisionBuy, "BUY"},
		{DecisionSell, "SELL"},
	}
	for _, tt := range tests {
		if got := tt.dec.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.dec), got, tt.want)
		}
	}
}
