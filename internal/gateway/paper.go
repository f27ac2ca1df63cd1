package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/timucin/cyrpto-trader/internal/domain"
)

// Paper is an in-memory venue for dry runs and tests. It keeps virtual
// balances, lets orders rest without filling them, and serves whatever
// book has been loaded into it. Placing a buy locks its notional in
// currency, placing a sell locks the coin amount, and canceling returns
// the funds, so the trader sees the same free/locked split a real
// exchange would report.
type Paper struct {
	mu      sync.Mutex
	free    map[string]domain.Money
	orders  map[string]paperOrder
	book    domain.RawBook
	nextID  int
	logAttr slog.Attr
}

type paperOrder struct {
	pair  string
	order domain.Order
}

// NewPaper creates a paper venue with the given starting free balances.
func NewPaper(initial map[string]domain.Money) *Paper {
	free := make(map[string]domain.Money, len(initial))
	for asset, amount := range initial {
		free[asset] = amount
	}
	return &Paper{
		free:    free,
		orders:  make(map[string]paperOrder),
		logAttr: slog.String("venue", "paper"),
	}
}

// SetBook loads the synthetic order book served by OrderBook.
func (p *Paper) SetBook(book domain.RawBook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.book = book
}

// Deposit credits the free balance of an asset.
func (p *Paper) Deposit(asset string, amount domain.Money) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free[asset] = p.free[asset].Add(amount)
}

func (p *Paper) OpenOrders(ctx context.Context, pair string) ([]domain.Order, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []domain.Order
	for _, po := range p.orders {
		if po.pair == pair {
			out = append(out, po.order)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (p *Paper) Balances(ctx context.Context) (map[string]domain.Money, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]domain.Money, len(p.free))
	for asset, amount := range p.free {
		out[asset] = amount
	}
	return out, nil
}

func (p *Paper) OrderBook(ctx context.Context, pair string, depth int) (domain.RawBook, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	book := domain.RawBook{
		Bids: clipLevels(p.book.Bids, depth),
		Asks: clipLevels(p.book.Asks, depth),
	}
	return book, nil
}

func (p *Paper) PlaceOrder(ctx context.Context, pair string, side domain.Side, rate, amount domain.Money) (string, error) {
	if !rate.IsPositive() || !amount.IsPositive() {
		return "", &RejectedError{Reason: "rate and amount must be positive"}
	}

	currency, coin, err := SplitPair(pair)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Lock the funds the order consumes, rejecting like a real venue
	// when the free balance does not cover it.
	switch side {
	case domain.SideBuy:
		notional := rate.Mul(amount)
		if p.free[currency].Cmp(notional) < 0 {
			return "", &RejectedError{Reason: fmt.Sprintf("insufficient %s balance", currency)}
		}
		p.free[currency] = p.free[currency].Sub(notional)
	case domain.SideSell:
		if p.free[coin].Cmp(amount) < 0 {
			return "", &RejectedError{Reason: fmt.Sprintf("insufficient %s balance", coin)}
		}
		p.free[coin] = p.free[coin].Sub(amount)
	default:
		return "", &RejectedError{Reason: "unknown side"}
	}

	p.nextID++
	id := fmt.Sprintf("paper-%06d", p.nextID)
	p.orders[id] = paperOrder{
		pair: pair,
		order: domain.Order{
			ID:             id,
			Side:           side,
			Price:          rate,
			Amount:         amount,
			StartingAmount: amount,
		},
	}

	slog.Info("paper order placed", p.logAttr,
		slog.String("id", id),
		slog.String("side", string(side)),
		slog.String("rate", rate.String()),
		slog.String("amount", amount.String()))
	return id, nil
}

func (p *Paper) CancelOrder(ctx context.Context, id string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	po, ok := p.orders[id]
	if !ok {
		return false, ErrOrderNotFound
	}
	delete(p.orders, id)

	currency, coin, err := SplitPair(po.pair)
	if err != nil {
		return false, err
	}
	switch po.order.Side {
	case domain.SideBuy:
		p.free[currency] = p.free[currency].Add(po.order.Notional())
	case domain.SideSell:
		p.free[coin] = p.free[coin].Add(po.order.Amount)
	}

	slog.Info("paper order canceled", p.logAttr, slog.String("id", id))
	return true, nil
}

// SplitPair decomposes a CURRENCY_COIN pair string, e.g. "BTC_XMR"
// means XMR traded against BTC.
func SplitPair(pair string) (currency, coin string, err error) {
	parts := strings.SplitN(pair, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("gateway: malformed pair %q", pair)
	}
	return parts[0], parts[1], nil
}

func clipLevels(levels []domain.PriceLevel, depth int) []domain.PriceLevel {
	if depth <= 0 || depth >= len(levels) {
		depth = len(levels)
	}
	out := make([]domain.PriceLevel, depth)
	copy(out, levels[:depth])
	return out
}
