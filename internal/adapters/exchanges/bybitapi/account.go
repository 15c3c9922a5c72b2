package bybitapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"tentacles/internal/adapters/exchanges"
	"tentacles/internal/adapters/exchanges/ratelimit"
	"tentacles/pkg/errors"
)

// FetchPositions lists positions of the given symbols, or of the default settle coin when empty.
func (c *Client) FetchPositions(ctx context.Context, symbols []string, params exchanges.Params) ([]exchanges.Record, error) {
	if !c.cfg.Market.IsFuture() {
		return nil, errors.Wrap(exchanges.ErrNotSupported, "positions are only available on derivatives")
	}

	queries := make([]url.Values, 0, len(symbols)+1)
	if len(symbols) == 0 {
		q, err := c.orderQuery("", params)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	for _, symbol := range symbols {
		q, err := c.orderQuery(symbol, params)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}

	var positions []exchanges.Record
	for _, query := range queries {
		cursor := ""
		for {
			if cursor != "" {
				query.Set("cursor", cursor)
			}
			var res listResult
			if _, err := c.call(ctx, request{
				method:   http.MethodGet,
				path:     "/v5/position/list",
				query:    query,
				signed:   true,
				limiters: []string{ratelimit.KeyGlobal},
			}, &res); err != nil {
				return nil, err
			}
			for _, item := range res.List {
				positions = append(positions, c.positionRecord(item))
			}
			if res.NextPageCursor == "" || res.NextPageCursor == cursor || len(res.List) == 0 {
				break
			}
			cursor = res.NextPageCursor
		}
	}
	return positions, nil
}

func (c *Client) positionRecord(item map[string]any) exchanges.Record {
	info := exchanges.Record(item)
	record := exchanges.Record{
		exchanges.KeySymbol:           c.unifiedSymbol(info.String("symbol")),
		exchanges.KeyContracts:        info.Decimal("size", decimal.Zero),
		exchanges.KeyEntryPrice:       info.Decimal("avgPrice", decimal.Zero),
		exchanges.KeyLiquidationPrice: info.Decimal("liqPrice", decimal.Zero),
		exchanges.KeyUnrealizedPnL:    info.Decimal("unrealisedPnl", decimal.Zero),
		exchanges.KeyLeverage:         info.Decimal("leverage", decimal.NewFromInt(1)),
		exchanges.KeyInitialMargin:    info.Decimal("positionIM", decimal.Zero),
		exchanges.KeyNotional:         info.Decimal("positionValue", decimal.Zero),
		exchanges.KeyTimestamp:        info.Decimal("updatedTime", decimal.Zero).IntPart(),
		exchanges.KeyInfo:             info,
	}
	switch info.String("side") {
	case "Buy":
		record[exchanges.KeySide] = string(exchanges.PositionSideLong)
	case "Sell":
		record[exchanges.KeySide] = string(exchanges.PositionSideShort)
	}
	// tradeMode: 0 cross, 1 isolated. Unified accounts omit it.
	switch info.String("tradeMode") {
	case "0":
		record[exchanges.KeyMarginMode] = string(exchanges.MarginTypeCross)
	case "1":
		record[exchanges.KeyMarginMode] = string(exchanges.MarginTypeIsolated)
	}
	return record
}

// SetMarginMode switches the symbol between cross and isolated margin.
// The "leverage" param is mandatory on this endpoint.
func (c *Client) SetMarginMode(ctx context.Context, mode exchanges.MarginType, symbol string, params exchanges.Params) error {
	marketID, err := c.MarketID(symbol)
	if err != nil {
		return err
	}
	leverage := exchanges.Record(params).String(exchanges.KeyLeverage)
	if leverage == "" {
		return errors.Wrap(exchanges.ErrInvalidRequest, "set margin mode requires leverage")
	}

	body := c.translateParams(params)
	delete(body, exchanges.KeyLeverage)
	body["category"] = c.category()
	body["symbol"] = marketID
	body["buyLeverage"] = leverage
	body["sellLeverage"] = leverage
	body["tradeMode"] = 0
	if mode == exchanges.MarginTypeIsolated {
		body["tradeMode"] = 1
	}

	if _, err := c.call(ctx, request{
		method:   http.MethodPost,
		path:     "/v5/position/switch-isolated",
		payload:  body,
		signed:   true,
		limiters: []string{ratelimit.KeyGlobal, ratelimit.KeyTrading},
	}, nil); err != nil {
		return err
	}
	c.log.Infow("Margin mode updated", "symbol", symbol, "mode", mode, "leverage", leverage)
	return nil
}

// PrivatePost sends a signed request to any private endpoint and returns the raw result.
func (c *Client) PrivatePost(ctx context.Context, path string, params exchanges.Params) (exchanges.Record, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	body := make(map[string]any, len(params)+1)
	for key, value := range params {
		body[key] = value
	}
	if _, ok := body["category"]; !ok {
		body["category"] = c.category()
	}

	var res map[string]any
	if _, err := c.call(ctx, request{
		method:   http.MethodPost,
		path:     path,
		payload:  body,
		signed:   true,
		limiters: []string{ratelimit.KeyGlobal},
	}, &res); err != nil {
		return nil, err
	}
	return exchanges.Record(res), nil
}
