// Package bybitapi is a signed Bybit v5 REST client returning unified records.
// Exchange-native payloads are kept untouched under the "info" key so that
// adapters can compensate for exchange quirks on top of it.
//
// Bybit API Documentation: https://bybit-exchange.github.io/docs/v5/intro
package bybitapi

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"tentacles/internal/adapters/exchanges"
	"tentacles/internal/adapters/exchanges/ratelimit"
	"tentacles/internal/adapters/exchanges/retry"
	"tentacles/internal/metrics"
	"tentacles/pkg/errors"
	"tentacles/pkg/logger"
)

const (
	baseURL        = "https://api.bybit.com"
	testnetURL     = "https://api-testnet.bybit.com"
	defaultTimeout = 10 * time.Second
	defaultRecvWin = 5 * time.Second
	exchangeName   = "bybit"
)

// Config configures the Bybit client.
type Config struct {
	APIKey    string
	SecretKey string
	Market    exchanges.MarketType
	Testnet   bool
	// BaseURL overrides the production/testnet endpoints.
	BaseURL string

	HTTPClient *http.Client
	RecvWindow time.Duration

	// MarketBuyRequiresPrice makes spot market buys send amount*price as the quote amount.
	// Adapters that convert quantities themselves turn it off.
	MarketBuyRequiresPrice bool

	Limiter *ratelimit.MultiLimiter
	Retry   *retry.Middleware
	Logger  *logger.Logger
}

// Client talks to the Bybit v5 REST API.
type Client struct {
	cfg Config
	log *logger.Logger
	now func() time.Time

	mu       sync.RWMutex
	markets  map[string]exchanges.Market // by unified symbol
	marketID map[string]string           // exchange id -> unified symbol
}

// NewClient creates a new Bybit client instance.
func NewClient(cfg Config) *Client {
	if cfg.RecvWindow == 0 {
		cfg.RecvWindow = defaultRecvWin
	}
	if cfg.Market == "" {
		cfg.Market = exchanges.MarketTypeLinearPerp
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if cfg.Limiter == nil {
		cfg.Limiter = ratelimit.NewBybitLimiters(0, 0)
	}
	if cfg.Retry == nil {
		cfg.Retry = retry.New(retry.DefaultConfig())
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Get()
	}

	return &Client{
		cfg:      cfg,
		log:      cfg.Logger.WithComponent("bybit_rest").With("market", cfg.Market),
		now:      time.Now,
		markets:  make(map[string]exchanges.Market),
		marketID: make(map[string]string),
	}
}

var _ exchanges.Connector = (*Client)(nil)

func (c *Client) Name() string {
	return exchangeName
}

// Milliseconds returns the local clock in unix milliseconds.
func (c *Client) Milliseconds() int64 {
	return c.now().UnixMilli()
}

// RequestError is a transport level failure (network or HTTP status).
type RequestError struct {
	Endpoint string
	Status   int
	Body     string
	Err      error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bybit %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("bybit %s: http %d: %s", e.Endpoint, e.Status, e.Body)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Is makes transport failures match exchanges.ErrRequestFailed.
func (e *RequestError) Is(target error) bool { return target == exchanges.ErrRequestFailed }

// StatusCode is read by the retry middleware.
func (e *RequestError) StatusCode() int { return e.Status }

// ErrorType labels the error for metrics.
func (e *RequestError) ErrorType() string {
	if e.Status == http.StatusTooManyRequests {
		return "rate_limited"
	}
	return "transport"
}

type request struct {
	method   string
	path     string
	query    url.Values
	payload  map[string]any
	signed   bool
	limiters []string
}

type apiResponse struct {
	RetCode int             `json:"retCode"`
	RetMsg  string          `json:"retMsg"`
	Result  json.RawMessage `json:"result"`
	Time    int64           `json:"time"`
}

// call sends the request under rate limiting and retries, then decodes result into target.
func (c *Client) call(ctx context.Context, req request, target any) (int64, error) {
	if req.signed {
		if err := c.ensureCredentials(); err != nil {
			return 0, err
		}
	}
	if err := c.cfg.Limiter.Wait(ctx, req.limiters...); err != nil {
		return 0, errors.Wrap(exchanges.ErrRequestFailed, err.Error())
	}

	start := time.Now()
	var resp *apiResponse
	var err error
	if req.method == http.MethodGet {
		resp, err = retry.DoWithResult(ctx, c.cfg.Retry, func() (*apiResponse, error) {
			return c.do(ctx, req)
		})
	} else {
		// order placement is not idempotent, never replay it
		resp, err = c.do(ctx, req)
	}
	metrics.RecordExchangeAPICall(exchangeName, req.path, time.Since(start), err)
	if err != nil {
		c.log.Debugw("Bybit request failed", "path", req.path, "error", err)
		return 0, err
	}

	if target != nil && len(resp.Result) > 0 {
		if err := decodeJSON(resp.Result, target); err != nil {
			return 0, &RequestError{Endpoint: req.path, Err: errors.Wrap(err, "decode result")}
		}
	}
	return resp.Time, nil
}

func (c *Client) do(ctx context.Context, r request) (*apiResponse, error) {
	var body io.Reader
	var bodyString string
	if r.payload != nil {
		raw, err := json.Marshal(r.payload)
		if err != nil {
			return nil, err
		}
		bodyString = string(raw)
		body = bytes.NewReader(raw)
	}

	reqURL := c.baseURL() + r.path
	queryString := ""
	if len(r.query) > 0 {
		queryString = r.query.Encode()
		reqURL += "?" + queryString
	}

	req, err := http.NewRequestWithContext(ctx, r.method, reqURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	if r.signed {
		ts := strconv.FormatInt(c.Milliseconds(), 10)
		recv := strconv.FormatInt(c.cfg.RecvWindow.Milliseconds(), 10)
		signed := bodyString
		if r.method == http.MethodGet {
			signed = queryString
		}

		req.Header.Set("X-BAPI-API-KEY", c.cfg.APIKey)
		req.Header.Set("X-BAPI-SIGN", c.sign(ts, recv, signed))
		req.Header.Set("X-BAPI-SIGN-TYPE", "2")
		req.Header.Set("X-BAPI-TIMESTAMP", ts)
		req.Header.Set("X-BAPI-RECV-WINDOW", recv)
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, &RequestError{Endpoint: r.path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Endpoint: r.path, Err: err}
	}

	if resp.StatusCode >= 400 {
		return nil, &RequestError{Endpoint: r.path, Status: resp.StatusCode, Body: string(respBody)}
	}

	var decoded apiResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, &RequestError{Endpoint: r.path, Status: resp.StatusCode, Err: errors.Wrap(err, "decode response")}
	}
	if decoded.RetCode != 0 {
		return nil, &exchanges.ExchangeError{Code: decoded.RetCode, Message: decoded.RetMsg}
	}
	return &decoded, nil
}

func (c *Client) sign(timestamp, recvWindow, payload string) string {
	mac := hmac.New(sha256.New, []byte(c.cfg.SecretKey))
	_, _ = mac.Write([]byte(timestamp + c.cfg.APIKey + recvWindow + payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) baseURL() string {
	if c.cfg.BaseURL != "" {
		return strings.TrimRight(c.cfg.BaseURL, "/")
	}
	if c.cfg.Testnet {
		return testnetURL
	}
	return baseURL
}

func (c *Client) ensureCredentials() error {
	if c.cfg.APIKey == "" || c.cfg.SecretKey == "" {
		return errors.Wrap(exchanges.ErrInvalidRequest, "bybit private call requires api credentials")
	}
	return nil
}

func (c *Client) category() string {
	switch c.cfg.Market {
	case exchanges.MarketTypeSpot:
		return "spot"
	case exchanges.MarketTypeInversePerp:
		return "inverse"
	default:
		return "linear"
	}
}

func (c *Client) defaultSettleCoin() string {
	if c.cfg.Market == exchanges.MarketTypeInversePerp {
		return "BTC"
	}
	return "USDT"
}

func decodeJSON(data []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(target)
}
