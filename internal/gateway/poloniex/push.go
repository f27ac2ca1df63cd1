package poloniex

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/timucin/cyrpto-trader/internal/domain"
	"github.com/timucin/cyrpto-trader/internal/infra"
)

// TopOfBook is the best level on each side of the watched pair.
type TopOfBook struct {
	Bid domain.Money
	Ask domain.Money
}

// BookWatcher maintains a live copy of one pair's order book from the
// push API and reports the top of book after every change. It is a
// diagnostic tool; the trading loop deliberately refetches the whole
// book over REST each cycle instead of trusting an incremental feed.
type BookWatcher struct {
	pair   string
	wsURL  string
	onTop  func(TopOfBook)
	worker *infra.WSWorker

	mu   sync.Mutex
	bids map[string]domain.Money // price text -> amount
	asks map[string]domain.Money
}

// NewBookWatcher creates a watcher for pair that calls onTop after
// every book change.
func NewBookWatcher(wsURL, pair string, onTop func(TopOfBook)) *BookWatcher {
	w := &BookWatcher{
		pair:  pair,
		wsURL: wsURL,
		onTop: onTop,
		bids:  make(map[string]domain.Money),
		asks:  make(map[string]domain.Money),
	}
	w.worker = infra.NewWSWorker(w)
	return w
}

// Start connects and begins streaming.
func (w *BookWatcher) Start(ctx context.Context) {
	w.worker.Start(ctx)
}

// Stop disconnects.
func (w *BookWatcher) Stop() {
	w.worker.Stop()
}

func (w *BookWatcher) ID() string  { return "push:" + w.pair }
func (w *BookWatcher) URL() string { return w.wsURL }

func (w *BookWatcher) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	// A reconnect starts from a fresh snapshot; drop the stale book.
	w.mu.Lock()
	w.bids = make(map[string]domain.Money)
	w.asks = make(map[string]domain.Money)
	w.mu.Unlock()

	sub := struct {
		Command string `json:"command"`
		Channel string `json:"channel"`
	}{Command: "subscribe", Channel: w.pair}
	b, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	return w.worker.Write(websocket.TextMessage, b)
}

func (w *BookWatcher) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return w.worker.Write(websocket.PingMessage, nil)
}

// OnMessage handles one push frame: [channelID, seq, [updates...]].
// Updates are ["i", {snapshot}] for the initial book and
// ["o", side, price, amount] for changes, where side 1 is a bid and
// amount "0.00000000" removes the level.
func (w *BookWatcher) OnMessage(ctx context.Context, msg []byte) {
	var frame []json.RawMessage
	if err := json.Unmarshal(msg, &frame); err != nil || len(frame) < 3 {
		return // heartbeats and acks
	}

	var updates []json.RawMessage
	if err := json.Unmarshal(frame[2], &updates); err != nil {
		return
	}

	changed := false
	for _, raw := range updates {
		var update []json.RawMessage
		if err := json.Unmarshal(raw, &update); err != nil || len(update) == 0 {
			continue
		}
		var kind string
		if err := json.Unmarshal(update[0], &kind); err != nil {
			continue
		}
		switch kind {
		case "i":
			if w.applySnapshot(update) {
				changed = true
			}
		case "o":
			if w.applyChange(update) {
				changed = true
			}
		}
	}

	if changed && w.onTop != nil {
		w.onTop(w.top())
	}
}

func (w *BookWatcher) applySnapshot(update []json.RawMessage) bool {
	if len(update) < 2 {
		return false
	}
	var snap struct {
		CurrencyPair string                        `json:"currencyPair"`
		OrderBook    [2]map[string]json.RawMessage `json:"orderBook"`
	}
	if err := json.Unmarshal(update[1], &snap); err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	// The snapshot carries [asks, bids], price -> amount.
	w.asks = parseBookMap(snap.OrderBook[0])
	w.bids = parseBookMap(snap.OrderBook[1])
	return true
}

func (w *BookWatcher) applyChange(update []json.RawMessage) bool {
	if len(update) < 4 {
		return false
	}
	var side int
	if err := json.Unmarshal(update[1], &side); err != nil {
		return false
	}
	var priceText string
	if err := json.Unmarshal(update[2], &priceText); err != nil {
		return false
	}
	amount, err := rawMoney(update[3])
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	book := w.asks
	if side == 1 {
		book = w.bids
	}
	if amount.IsZero() {
		delete(book, priceText)
	} else {
		book[priceText] = amount
	}
	return true
}

// top returns the best bid (highest) and ask (lowest) currently held.
func (w *BookWatcher) top() TopOfBook {
	w.mu.Lock()
	defer w.mu.Unlock()

	var t TopOfBook
	first := true
	for priceText := range w.bids {
		price, err := domain.ParseMoney(priceText)
		if err != nil {
			continue
		}
		if first || price.GreaterThan(t.Bid) {
			t.Bid = price
			first = false
		}
	}
	first = true
	for priceText := range w.asks {
		price, err := domain.ParseMoney(priceText)
		if err != nil {
			continue
		}
		if first || t.Ask.GreaterThan(price) {
			t.Ask = price
			first = false
		}
	}
	return t
}

func parseBookMap(raw map[string]json.RawMessage) map[string]domain.Money {
	book := make(map[string]domain.Money, len(raw))
	for priceText, rawAmount := range raw {
		amount, err := rawMoney(rawAmount)
		if err != nil || amount.IsZero() {
			continue
		}
		book[priceText] = amount
	}
	return book
}
