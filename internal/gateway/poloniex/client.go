package poloniex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/timucin/cyrpto-trader/internal/domain"
	"github.com/timucin/cyrpto-trader/internal/gateway"
	"github.com/timucin/cyrpto-trader/internal/infra"
)

// Client talks to the exchange's REST API. One shared token-bucket
// limiter sits in front of every call; the documented ceiling is six
// requests per second per account.
type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     *Signer
	limiter    *infra.RateLimiter
}

// NewClient builds a REST client from the process configuration.
func NewClient(cfg *infra.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.API.RestURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		signer:  NewSigner(cfg.API.Key, cfg.API.Secret),
		limiter: infra.NewRateLimiter(3, 6),
	}
}

// Close wipes the credentials.
func (c *Client) Close() {
	c.signer.Wipe()
}

func (c *Client) OpenOrders(ctx context.Context, pair string) ([]domain.Order, error) {
	params := url.Values{}
	params.Set("currencyPair", pair)

	data, err := c.private(ctx, "returnOpenOrders", params)
	if err != nil {
		return nil, readCallError("returnOpenOrders", err)
	}

	var entries []openOrderEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &gateway.NetworkError{Op: "returnOpenOrders", Err: err}
	}

	orders := make([]domain.Order, 0, len(entries))
	for _, e := range entries {
		o, err := e.toDomain()
		if err != nil {
			return nil, &gateway.NetworkError{Op: "returnOpenOrders", Err: err}
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (c *Client) Balances(ctx context.Context) (map[string]domain.Money, error) {
	data, err := c.private(ctx, "returnBalances", url.Values{})
	if err != nil {
		return nil, readCallError("returnBalances", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &gateway.NetworkError{Op: "returnBalances", Err: err}
	}

	balances := make(map[string]domain.Money, len(raw))
	for asset, amount := range raw {
		m, err := domain.ParseMoney(amount)
		if err != nil {
			return nil, &gateway.NetworkError{Op: "returnBalances", Err: fmt.Errorf("%s: %w", asset, err)}
		}
		balances[asset] = m
	}
	return balances, nil
}

func (c *Client) OrderBook(ctx context.Context, pair string, depth int) (domain.RawBook, error) {
	params := url.Values{}
	params.Set("currencyPair", pair)
	params.Set("depth", strconv.Itoa(depth))

	data, err := c.public(ctx, "returnOrderBook", params)
	if err != nil {
		return domain.RawBook{}, readCallError("returnOrderBook", err)
	}

	var resp bookResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return domain.RawBook{}, &gateway.NetworkError{Op: "returnOrderBook", Err: err}
	}

	bids, err := rawBookSide(resp.Bids)
	if err != nil {
		return domain.RawBook{}, &gateway.NetworkError{Op: "returnOrderBook", Err: err}
	}
	asks, err := rawBookSide(resp.Asks)
	if err != nil {
		return domain.RawBook{}, &gateway.NetworkError{Op: "returnOrderBook", Err: err}
	}
	return domain.RawBook{Bids: bids, Asks: asks}, nil
}

func (c *Client) PlaceOrder(ctx context.Context, pair string, side domain.Side, rate, amount domain.Money) (string, error) {
	command := "buy"
	if side == domain.SideSell {
		command = "sell"
	}

	params := url.Values{}
	params.Set("currencyPair", pair)
	params.Set("rate", rate.String())
	params.Set("amount", amount.String())

	data, err := c.private(ctx, command, params)
	if err != nil {
		var apiErr *apiCallError
		if errors.As(err, &apiErr) {
			if isRejection(apiErr.msg) {
				return "", &gateway.RejectedError{Reason: apiErr.msg}
			}
			return "", &gateway.NetworkError{Op: command, Err: apiErr}
		}
		return "", err
	}

	var resp placeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", &gateway.NetworkError{Op: command, Err: err}
	}
	if resp.OrderNumber == "" {
		return "", &gateway.NetworkError{Op: command, Err: fmt.Errorf("no order number in response")}
	}
	return resp.OrderNumber, nil
}

func (c *Client) CancelOrder(ctx context.Context, id string) (bool, error) {
	params := url.Values{}
	params.Set("orderNumber", id)

	data, err := c.private(ctx, "cancelOrder", params)
	if err != nil {
		var apiErr *apiCallError
		if errors.As(err, &apiErr) {
			if strings.Contains(strings.ToLower(apiErr.msg), "invalid order number") {
				return false, gateway.ErrOrderNotFound
			}
			return false, &gateway.NetworkError{Op: "cancelOrder", Err: apiErr}
		}
		return false, err
	}

	var resp cancelResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return false, &gateway.NetworkError{Op: "cancelOrder", Err: err}
	}
	return resp.Success == 1, nil
}

// public performs a GET against the public endpoint.
func (c *Client) public(ctx context.Context, command string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params.Set("command", command)
	reqURL := c.baseURL + "/public?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req, command)
}

// private performs a signed POST against tradingApi. API-level errors
// come back as *apiCallError except authentication failures, which are
// classified here because they look the same for every command.
func (c *Client) private(ctx context.Context, command string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params.Set("command", command)
	params.Set("nonce", strconv.FormatInt(c.signer.Nonce(), 10))
	body := params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tradingApi", strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Key", c.signer.Key())
	req.Header.Set("Sign", c.signer.Sign(body))

	return c.do(req, command)
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &gateway.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &gateway.NetworkError{Op: op, Err: err}
	}
	if resp.StatusCode >= 500 {
		return nil, &gateway.NetworkError{Op: op, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	// The exchange reports most failures as {"error": "..."} with a 200.
	var apiErr apiErrorResponse
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Message != "" {
		lower := strings.ToLower(apiErr.Message)
		if strings.Contains(lower, "invalid api key") || strings.Contains(lower, "nonce") {
			return nil, fmt.Errorf("%w: %s", gateway.ErrAuth, apiErr.Message)
		}
		return nil, &apiCallError{msg: apiErr.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &gateway.NetworkError{Op: op, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	return data, nil
}

// readCallError folds leftover apiCallErrors from read endpoints into
// the network bucket; auth errors pass through untouched.
func readCallError(op string, err error) error {
	var apiErr *apiCallError
	if errors.As(err, &apiErr) {
		return &gateway.NetworkError{Op: op, Err: apiErr}
	}
	return err
}

// isRejection matches the exchange's order-rejection messages:
// insufficient balance, notional below the minimum, malformed price.
func isRejection(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range []string{"not enough", "total must be at least", "rate must be", "amount must be"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
