// Package poloniex implements the Gateway against the legacy Poloniex
// API: public GET endpoints for market data and the HMAC-signed
// tradingApi for everything touching the account.
package poloniex

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/timucin/cyrpto-trader/internal/domain"
)

// openOrderEntry mirrors one returnOpenOrders element. All amounts are
// decimal strings on the wire and are parsed exactly.
type openOrderEntry struct {
	OrderNumber    string `json:"orderNumber"`
	Type           string `json:"type"` // "buy" | "sell"
	Rate           string `json:"rate"`
	Amount         string `json:"amount"`
	StartingAmount string `json:"startingAmount"`
}

func (e openOrderEntry) toDomain() (domain.Order, error) {
	side := domain.SideBuy
	if strings.EqualFold(e.Type, "sell") {
		side = domain.SideSell
	}
	rate, err := domain.ParseMoney(e.Rate)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s rate: %w", e.OrderNumber, err)
	}
	amount, err := domain.ParseMoney(e.Amount)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s amount: %w", e.OrderNumber, err)
	}
	starting, err := domain.ParseMoney(e.StartingAmount)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s startingAmount: %w", e.OrderNumber, err)
	}
	return domain.Order{
		ID:             e.OrderNumber,
		Side:           side,
		Price:          rate,
		Amount:         amount,
		StartingAmount: starting,
	}, nil
}

// bookResponse mirrors returnOrderBook. Each level is a two-element
// array where the price arrives as a string and the amount as a bare
// JSON number; both are kept as raw text so no float64 conversion ever
// happens.
type bookResponse struct {
	Asks     [][2]json.RawMessage `json:"asks"`
	Bids     [][2]json.RawMessage `json:"bids"`
	IsFrozen string               `json:"isFrozen"`
	Seq      int64                `json:"seq"`
}

func rawBookSide(raw [][2]json.RawMessage) ([]domain.PriceLevel, error) {
	levels := make([]domain.PriceLevel, 0, len(raw))
	for _, entry := range raw {
		price, err := rawMoney(entry[0])
		if err != nil {
			return nil, fmt.Errorf("book price: %w", err)
		}
		amount, err := rawMoney(entry[1])
		if err != nil {
			return nil, fmt.Errorf("book amount: %w", err)
		}
		levels = append(levels, domain.PriceLevel{Price: price, Amount: amount})
	}
	return levels, nil
}

// rawMoney parses a raw JSON value that is either a quoted decimal
// string or a bare number literal, using its exact textual form.
func rawMoney(raw json.RawMessage) (domain.Money, error) {
	s := string(raw)
	if len(s) >= 2 && s[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(raw, &unquoted); err != nil {
			return domain.Money{}, err
		}
		s = unquoted
	}
	return domain.ParseMoney(s)
}

type placeResponse struct {
	OrderNumber string `json:"orderNumber"`
}

type cancelResponse struct {
	Success int `json:"success"`
}

// apiErrorResponse is the {"error": "..."} shape the exchange returns
// on any API-level failure, with HTTP 200 more often than not.
type apiErrorResponse struct {
	Message string `json:"error"`
}

// apiCallError carries an API-level error message up to the method that
// knows how to classify it for its operation.
type apiCallError struct {
	msg string
}

func (e *apiCallError) Error() string { return e.msg }
