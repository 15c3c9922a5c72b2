package bybitapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"tentacles/internal/adapters/exchanges"
	"tentacles/internal/adapters/exchanges/ratelimit"
	"tentacles/pkg/errors"
)

func (c *Client) fetchTickerItem(ctx context.Context, symbol string) (exchanges.Record, int64, error) {
	marketID, err := c.MarketID(symbol)
	if err != nil {
		return nil, 0, err
	}
	var res listResult
	ts, err := c.call(ctx, request{
		method: http.MethodGet,
		path:   "/v5/market/tickers",
		query: url.Values{
			"category": []string{c.category()},
			"symbol":   []string{marketID},
		},
		limiters: []string{ratelimit.KeyGlobal},
	}, &res)
	if err != nil {
		return nil, 0, err
	}
	if len(res.List) == 0 {
		return nil, 0, errors.Wrapf(exchanges.ErrRequestFailed, "ticker %s not found", symbol)
	}
	return exchanges.Record(res.List[0]), ts, nil
}

func (c *Client) FetchTicker(ctx context.Context, symbol string, _ exchanges.Params) (exchanges.Record, error) {
	info, ts, err := c.fetchTickerItem(ctx, symbol)
	if err != nil {
		return nil, err
	}
	record := exchanges.Record{
		exchanges.KeySymbol:     symbol,
		exchanges.KeyClose:      info.Decimal("lastPrice", decimal.Zero),
		exchanges.KeyBid:        info.Decimal("bid1Price", decimal.Zero),
		exchanges.KeyAsk:        info.Decimal("ask1Price", decimal.Zero),
		exchanges.KeyHigh:       info.Decimal("highPrice24h", decimal.Zero),
		exchanges.KeyLow:        info.Decimal("lowPrice24h", decimal.Zero),
		exchanges.KeyBaseVolume: info.Decimal("volume24h", decimal.Zero),
		exchanges.KeyTimestamp:  ts,
		exchanges.KeyInfo:       info,
	}
	if info.Has("markPrice") {
		record[exchanges.KeyMarkPrice] = info.Decimal("markPrice", decimal.Zero)
	}
	return record, nil
}

// FetchFundingRate reads the current funding rate from the derivatives ticker.
func (c *Client) FetchFundingRate(ctx context.Context, symbol string, _ exchanges.Params) (exchanges.Record, error) {
	if !c.cfg.Market.IsFuture() {
		return nil, errors.Wrap(exchanges.ErrNotSupported, "funding rates are only available on derivatives")
	}
	info, ts, err := c.fetchTickerItem(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return exchanges.Record{
		exchanges.KeySymbol:          symbol,
		exchanges.KeyFundingRate:     info.Decimal("fundingRate", decimal.Zero),
		exchanges.KeyNextFundingTime: info.Decimal("nextFundingTime", decimal.Zero).IntPart(),
		exchanges.KeyMarkPrice:       info.Decimal("markPrice", decimal.Zero),
		exchanges.KeyTimestamp:       ts,
		exchanges.KeyInfo:            info,
	}, nil
}

// ServerTime returns the exchange clock in unix milliseconds.
func (c *Client) ServerTime(ctx context.Context) (int64, error) {
	var res struct {
		TimeSecond string `json:"timeSecond"`
		TimeNano   string `json:"timeNano"`
	}
	ts, err := c.call(ctx, request{
		method:   http.MethodGet,
		path:     "/v5/market/time",
		limiters: []string{ratelimit.KeyGlobal},
	}, &res)
	if err != nil {
		return 0, err
	}
	if nanos, err := decimal.NewFromString(res.TimeNano); err == nil && !nanos.IsZero() {
		return nanos.Shift(-6).IntPart(), nil
	}
	return ts, nil
}
