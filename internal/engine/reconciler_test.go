package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/timucin/cyrpto-trader/internal/domain"
	"github.com/timucin/cyrpto-trader/internal/gateway"
	"github.com/timucin/cyrpto-trader/internal/strategy"
)

type placedCall struct {
	pair   string
	side   domain.Side
	rate   domain.Money
	amount domain.Money
}

// fakeGateway is a scripted venue for engine tests.
type fakeGateway struct {
	mu sync.Mutex

	open     []domain.Order
	balances map[string]domain.Money
	book     domain.RawBook

	placed   []placedCall
	canceled []string

	readErr     error
	placeErr    error
	cancelErr   map[string]error // per order id
	unconfirmed map[string]bool  // cancel returns false, nil
	nextID      int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		balances:    map[string]domain.Money{},
		cancelErr:   map[string]error{},
		unconfirmed: map[string]bool{},
	}
}

func (f *fakeGateway) OpenOrders(ctx context.Context, pair string) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	return append([]domain.Order(nil), f.open...), nil
}

func (f *fakeGateway) Balances(ctx context.Context) (map[string]domain.Money, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make(map[string]domain.Money, len(f.balances))
	for k, v := range f.balances {
		out[k] = v
	}
	return out, nil
}

func (f *fakeGateway) OrderBook(ctx context.Context, pair string, depth int) (domain.RawBook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return domain.RawBook{}, f.readErr
	}
	return f.book, nil
}

func (f *fakeGateway) PlaceOrder(ctx context.Context, pair string, side domain.Side, rate, amount domain.Money) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.placeErr != nil {
		return "", f.placeErr
	}
	f.placed = append(f.placed, placedCall{pair: pair, side: side, rate: rate, amount: amount})
	f.nextID++
	return fmt.Sprintf("fake-%d", f.nextID), nil
}

func (f *fakeGateway) CancelOrder(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.cancelErr[id]; err != nil {
		return false, err
	}
	if f.unconfirmed[id] {
		return false, nil
	}
	f.canceled = append(f.canceled, id)
	for i, o := range f.open {
		if o.ID == id {
			f.open = append(f.open[:i], f.open[i+1:]...)
			break
		}
	}
	return true, nil
}

// fakeClock never sleeps for real; after maxSleeps it reports
// cancellation so loops terminate.
type fakeClock struct {
	now       time.Time
	sleeps    int
	maxSleeps int
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0), maxSleeps: 1 << 30}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps++
	if c.sleeps >= c.maxSleeps {
		return context.Canceled
	}
	c.now = c.now.Add(d)
	return nil
}

func sellOrder(id, price, amount string) domain.Order {
	return domain.Order{ID: id, Side: domain.SideSell, Price: domain.MustMoney(price), Amount: domain.MustMoney(amount)}
}

func buyOrder(id, price, amount string) domain.Order {
	return domain.Order{ID: id, Side: domain.SideBuy, Price: domain.MustMoney(price), Amount: domain.MustMoney(amount)}
}

func sellPrices(price string) strategy.DiscoveredPrices {
	return strategy.DiscoveredPrices{Sell: domain.MustMoney(price), SellOK: true}
}

func buyPrices(price string) strategy.DiscoveredPrices {
	return strategy.DiscoveredPrices{Buy: domain.MustMoney(price), BuyOK: true}
}

func newTestReconciler(gw *fakeGateway) *Reconciler {
	return NewReconciler(gw, "BTC_XMR", domain.MustMoney("5"), newFakeClock(), nil)
}

func TestReconcile_NoneCancelsBothSides(t *testing.T) {
	gw := newFakeGateway()
	r := newTestReconciler(gw)

	snap := domain.Snapshot{
		SellOrders: []domain.Order{sellOrder("s1", "0.0026", "1")},
		BuyOrders:  []domain.Order{buyOrder("b1", "0.0024", "1")},
	}
	if err := r.Reconcile(context.Background(), "c1", domain.DecisionNone, snap, strategy.DiscoveredPrices{}); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(gw.canceled) != 2 {
		t.Errorf("canceled %v, want both orders", gw.canceled)
	}
	if len(gw.placed) != 0 {
		t.Errorf("placed %v, want nothing", gw.placed)
	}
}

func TestReconcile_SellCancelsOpposingAndMismatched(t *testing.T) {
	gw := newFakeGateway()
	r := newTestReconciler(gw)

	snap := domain.Snapshot{
		Coin:       domain.NewBalance(domain.MustMoney("2"), domain.Money{}),
		SellOrders: []domain.Order{sellOrder("s1", "0.00260000", "1")},
		BuyOrders:  []domain.Order{buyOrder("b1", "0.00240000", "1")},
	}
	if err := r.Reconcile(context.Background(), "c1", domain.DecisionSell, snap, sellPrices("0.00255000")); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(gw.canceled) != 2 {
		t.Fatalf("canceled %v, want b1 and s1", gw.canceled)
	}
	if len(gw.placed) != 1 {
		t.Fatalf("placed %d orders, want 1", len(gw.placed))
	}
	p := gw.placed[0]
	if p.side != domain.SideSell || p.rate.String() != "0.00255000" || p.amount.String() != "2.00000000" {
		t.Errorf("placed %+v", p)
	}
}

func TestReconcile_KeepsOrderAtTargetPrice(t *testing.T) {
	gw := newFakeGateway()
	r := newTestReconciler(gw)

	snap := domain.Snapshot{
		Coin:       domain.NewBalance(domain.MustMoney("2"), domain.Money{}),
		SellOrders: []domain.Order{sellOrder("s1", "0.00255000", "2")},
	}
	if err := r.Reconcile(context.Background(), "c1", domain.DecisionSell, snap, sellPrices("0.00255000")); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(gw.canceled) != 0 {
		t.Errorf("canceled %v, want nothing", gw.canceled)
	}
	if len(gw.placed) != 0 {
		t.Errorf("placed %v, the resting order already serves the intent", gw.placed)
	}
}

func TestReconcile_FailedCancelBlocksPlacement(t *testing.T) {
	gw := newFakeGateway()
	gw.cancelErr["s1"] = &gateway.NetworkError{Op: "cancelOrder", Err: fmt.Errorf("timeout")}
	r := newTestReconciler(gw)

	snap := domain.Snapshot{
		Coin:       domain.NewBalance(domain.MustMoney("2"), domain.Money{}),
		SellOrders: []domain.Order{sellOrder("s1", "0.00260000", "2")},
	}
	if err := r.Reconcile(context.Background(), "c1", domain.DecisionSell, snap, sellPrices("0.00255000")); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	// The order may still rest; placing now could double the exposure.
	if len(gw.placed) != 0 {
		t.Errorf("placed %v despite an unconfirmed cancel", gw.placed)
	}
}

func TestReconcile_UnconfirmedCancelBlocksPlacement(t *testing.T) {
	gw := newFakeGateway()
	gw.unconfirmed["s1"] = true
	r := newTestReconciler(gw)

	snap := domain.Snapshot{
		Coin:       domain.NewBalance(domain.MustMoney("2"), domain.Money{}),
		SellOrders: []domain.Order{sellOrder("s1", "0.00260000", "2")},
	}
	if err := r.Reconcile(context.Background(), "c1", domain.DecisionSell, snap, sellPrices("0.00255000")); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(gw.placed) != 0 {
		t.Errorf("placed %v despite an unconfirmed cancel", gw.placed)
	}
}

func TestReconcile_NotFoundCountsAsGone(t *testing.T) {
	gw := newFakeGateway()
	gw.cancelErr["s1"] = gateway.ErrOrderNotFound
	r := newTestReconciler(gw)

	snap := domain.Snapshot{
		Coin:       domain.NewBalance(domain.MustMoney("2"), domain.Money{}),
		SellOrders: []domain.Order{sellOrder("s1", "0.00260000", "2")},
	}
	if err := r.Reconcile(context.Background(), "c1", domain.DecisionSell, snap, sellPrices("0.00255000")); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(gw.placed) != 1 {
		t.Fatalf("placed %d orders, want 1; a vanished order is no reason to hold back", len(gw.placed))
	}
}

func TestReconcile_SellCapsAtMaxTradingAmount(t *testing.T) {
	gw := newFakeGateway()
	r := newTestReconciler(gw) // max 5

	snap := domain.Snapshot{
		Coin: domain.NewBalance(domain.MustMoney("12"), domain.Money{}),
	}
	if err := r.Reconcile(context.Background(), "c1", domain.DecisionSell, snap, sellPrices("0.00255000")); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(gw.placed) != 1 || gw.placed[0].amount.String() != "5.00000000" {
		t.Errorf("placed %+v, want amount capped at 5", gw.placed)
	}
}

func TestReconcile_SellWithNoCoinSkips(t *testing.T) {
	gw := newFakeGateway()
	r := newTestReconciler(gw)

	if err := r.Reconcile(context.Background(), "c1", domain.DecisionSell, domain.Snapshot{}, sellPrices("0.00255000")); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(gw.placed) != 0 {
		t.Errorf("placed %v with an empty position", gw.placed)
	}
}

func TestReconcile_BuySpendsWholeBalanceMinusSatoshi(t *testing.T) {
	gw := newFakeGateway()
	r := newTestReconciler(gw)

	snap := domain.Snapshot{
		Currency: domain.NewBalance(domain.MustMoney("0.05"), domain.Money{}),
	}
	if err := r.Reconcile(context.Background(), "c1", domain.DecisionBuy, snap, buyPrices("0.00250003")); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(gw.placed) != 1 {
		t.Fatalf("placed %d orders, want 1", len(gw.placed))
	}
	p := gw.placed[0]
	if p.side != domain.SideBuy || p.rate.String() != "0.00250003" {
		t.Errorf("placed %+v", p)
	}
	// 0.05 / 0.00250003 rounds to 19.99976000; one satoshi comes off.
	if got := p.amount.String(); got != "19.99975999" {
		t.Errorf("buy amount = %s, want 19.99975999", got)
	}
}

func TestReconcile_BuyBelowMinimumNotionalSkips(t *testing.T) {
	gw := newFakeGateway()
	r := newTestReconciler(gw)

	snap := domain.Snapshot{
		Currency: domain.NewBalance(domain.MustMoney("0.0001"), domain.Money{}),
	}
	if err := r.Reconcile(context.Background(), "c1", domain.DecisionBuy, snap, buyPrices("0.00250000")); err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(gw.placed) != 0 {
		t.Errorf("placed %v below the minimum notional", gw.placed)
	}
}

func TestReconcile_RejectedPlacementIsNotFatal(t *testing.T) {
	gw := newFakeGateway()
	gw.placeErr = &gateway.RejectedError{Reason: "not enough BTC"}
	r := newTestReconciler(gw)

	snap := domain.Snapshot{
		Currency: domain.NewBalance(domain.MustMoney("0.05"), domain.Money{}),
	}
	if err := r.Reconcile(context.Background(), "c1", domain.DecisionBuy, snap, buyPrices("0.00250000")); err != nil {
		t.Errorf("rejection should not fail the cycle: %v", err)
	}
}

func TestReconcile_DecisionWithoutPriceFails(t *testing.T) {
	gw := newFakeGateway()
	r := newTestReconciler(gw)

	if err := r.Reconcile(context.Background(), "c1", domain.DecisionSell, domain.Snapshot{}, strategy.DiscoveredPrices{}); err == nil {
		t.Error("expected error for sell decision without a sell price")
	}
	if err := r.Reconcile(context.Background(), "c1", domain.DecisionBuy, domain.Snapshot{}, strategy.DiscoveredPrices{}); err == nil {
		t.Error("expected error for buy decision without a buy price")
	}
}
