package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/timucin/cyrpto-trader/internal/domain"
)

func newTestPaper() *Paper {
	return NewPaper(map[string]domain.Money{
		"BTC": domain.MustMoney("0.05"),
		"XMR": domain.MustMoney("10"),
	})
}

func TestPaper_PlaceBuyLocksNotional(t *testing.T) {
	p := newTestPaper()
	ctx := context.Background()

	id, err := p.PlaceOrder(ctx, "BTC_XMR", domain.SideBuy,
		domain.MustMoney("0.00250000"), domain.MustMoney("4"))
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if id == "" {
		t.Fatal("empty order id")
	}

	balances, _ := p.Balances(ctx)
	// 0.05 - 0.0025*4
	if got := balances["BTC"].String(); got != "0.04000000" {
		t.Errorf("BTC after buy = %s", got)
	}

	open, _ := p.OpenOrders(ctx, "BTC_XMR")
	if len(open) != 1 || open[0].ID != id || open[0].Side != domain.SideBuy {
		t.Errorf("open orders = %+v", open)
	}
}

func TestPaper_PlaceSellLocksCoin(t *testing.T) {
	p := newTestPaper()
	ctx := context.Background()

	if _, err := p.PlaceOrder(ctx, "BTC_XMR", domain.SideSell,
		domain.MustMoney("0.00260000"), domain.MustMoney("3")); err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	balances, _ := p.Balances(ctx)
	if got := balances["XMR"].String(); got != "7.00000000" {
		t.Errorf("XMR after sell = %s", got)
	}
}

func TestPaper_RejectsInsufficientBalance(t *testing.T) {
	p := newTestPaper()
	ctx := context.Background()

	_, err := p.PlaceOrder(ctx, "BTC_XMR", domain.SideSell,
		domain.MustMoney("0.00260000"), domain.MustMoney("11"))
	if !IsRejected(err) {
		t.Errorf("expected RejectedError, got %v", err)
	}

	// Nothing was deducted or placed.
	balances, _ := p.Balances(ctx)
	if got := balances["XMR"].String(); got != "10.00000000" {
		t.Errorf("XMR = %s", got)
	}
	open, _ := p.OpenOrders(ctx, "BTC_XMR")
	if len(open) != 0 {
		t.Errorf("open orders = %+v", open)
	}
}

func TestPaper_CancelReturnsFunds(t *testing.T) {
	p := newTestPaper()
	ctx := context.Background()

	id, _ := p.PlaceOrder(ctx, "BTC_XMR", domain.SideBuy,
		domain.MustMoney("0.00250000"), domain.MustMoney("4"))

	ok, err := p.CancelOrder(ctx, id)
	if err != nil || !ok {
		t.Fatalf("CancelOrder = %v, %v", ok, err)
	}

	balances, _ := p.Balances(ctx)
	if got := balances["BTC"].String(); got != "0.05000000" {
		t.Errorf("BTC after cancel = %s", got)
	}
	open, _ := p.OpenOrders(ctx, "BTC_XMR")
	if len(open) != 0 {
		t.Errorf("open orders = %+v", open)
	}
}

func TestPaper_CancelUnknownOrder(t *testing.T) {
	p := newTestPaper()

	_, err := p.CancelOrder(context.Background(), "no-such-order")
	if !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestPaper_OrderBookClipsDepth(t *testing.T) {
	p := newTestPaper()
	p.SetBook(domain.RawBook{
		Asks: []domain.PriceLevel{
			{Price: domain.MustMoney("0.0026"), Amount: domain.MustMoney("1")},
			{Price: domain.MustMoney("0.0027"), Amount: domain.MustMoney("1")},
			{Price: domain.MustMoney("0.0028"), Amount: domain.MustMoney("1")},
		},
	})

	book, err := p.OrderBook(context.Background(), "BTC_XMR", 2)
	if err != nil {
		t.Fatalf("OrderBook failed: %v", err)
	}
	if len(book.Asks) != 2 {
		t.Errorf("asks = %d, want clipped to 2", len(book.Asks))
	}
}

func TestSplitPair(t *testing.T) {
	currency, coin, err := SplitPair("BTC_XMR")
	if err != nil {
		t.Fatalf("SplitPair failed: %v", err)
	}
	if currency != "BTC" || coin != "XMR" {
		t.Errorf("got %s/%s", currency, coin)
	}

	for _, bad := range []string{"", "BTC", "_XMR", "BTC_"} {
		if _, _, err := SplitPair(bad); err == nil {
			t.Errorf("SplitPair(%q) should fail", bad)
		}
	}
}
