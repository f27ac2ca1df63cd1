// Package gateway defines the boundary to the exchange. The engine only
// ever talks to the Gateway interface; the real REST client and the
// paper venue both live behind it.
package gateway

import (
	"context"

	"github.com/timucin/cyrpto-trader/internal/domain"
)

// Gateway is the full surface the trading engine consumes. Every call
// is a blocking network round trip (or a simulation of one) and may
// fail with the typed errors in errors.go.
type Gateway interface {
	// OpenOrders returns our resting orders for the pair.
	OpenOrders(ctx context.Context, pair string) ([]domain.Order, error)

	// Balances returns the free (unlocked) amount per asset.
	Balances(ctx context.Context) (map[string]domain.Money, error)

	// OrderBook returns up to depth levels per side, best first.
	OrderBook(ctx context.Context, pair string, depth int) (domain.RawBook, error)

	// PlaceOrder submits a limit order and returns the exchange's id.
	PlaceOrder(ctx context.Context, pair string, side domain.Side, rate, amount domain.Money) (string, error)

	// CancelOrder cancels by id. The returned bool is the exchange's own
	// confirmation; false without an error still means the order must be
	// treated as open.
	CancelOrder(ctx context.Context, id string) (bool, error)
}
