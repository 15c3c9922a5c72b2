package bybitapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tentacles/internal/adapters/exchanges"
	"tentacles/internal/adapters/exchanges/ratelimit"
	"tentacles/pkg/errors"
)

type listResult struct {
	List           []map[string]any `json:"list"`
	NextPageCursor string           `json:"nextPageCursor"`
}

// orderStatuses maps v5 order statuses to canonical ones.
// Statuses missing here (PartiallyFilledCanceled for one) are passed through verbatim.
var orderStatuses = map[string]exchanges.OrderStatus{
	"Created":         exchanges.OrderStatusOpen,
	"New":             exchanges.OrderStatusOpen,
	"PartiallyFilled": exchanges.OrderStatusOpen,
	"Untriggered":     exchanges.OrderStatusOpen,
	"Triggered":       exchanges.OrderStatusOpen,
	"Active":          exchanges.OrderStatusOpen,
	"Filled":          exchanges.OrderStatusFilled,
	"Cancelled":       exchanges.OrderStatusCanceled,
	"Deactivated":     exchanges.OrderStatusCanceled,
	"Rejected":        exchanges.OrderStatusRejected,
}

func (c *Client) CreateOrder(
	ctx context.Context,
	symbol string,
	orderType exchanges.OrderType,
	side exchanges.OrderSide,
	amount, price decimal.Decimal,
	params exchanges.Params,
) (exchanges.Record, error) {
	marketID, err := c.MarketID(symbol)
	if err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 {
		return nil, errors.Wrap(exchanges.ErrInvalidRequest, "order amount must be positive")
	}

	native := nativeOrderType(orderType)
	body := c.translateParams(params)
	body["category"] = c.category()
	body["symbol"] = marketID
	body["side"] = nativeSide(side)
	body["orderType"] = native

	qty := amount
	if c.cfg.Market == exchanges.MarketTypeSpot && native == "Market" && side == exchanges.OrderSideBuy {
		if c.cfg.MarketBuyRequiresPrice {
			if price.IsZero() {
				return nil, errors.Wrap(exchanges.ErrInvalidRequest, "spot market buy requires a price to compute the quote amount")
			}
			qty = amount.Mul(price)
		}
		body["marketUnit"] = "quoteCoin"
	}
	body["qty"] = qty.String()
	if native == "Limit" {
		if price.Sign() <= 0 {
			return nil, errors.Wrap(exchanges.ErrInvalidRequest, "limit order requires price")
		}
		body["price"] = price.String()
	}
	if _, ok := body["orderLinkId"]; !ok {
		body["orderLinkId"] = uuid.NewString()
	}

	var res map[string]any
	if _, err := c.call(ctx, request{
		method:   http.MethodPost,
		path:     "/v5/order/create",
		payload:  body,
		signed:   true,
		limiters: []string{ratelimit.KeyGlobal, ratelimit.KeyTrading},
	}, &res); err != nil {
		return nil, err
	}

	info := exchanges.Record(res)
	c.log.Infow("Order created",
		"symbol", symbol,
		"side", side,
		"type", orderType,
		"qty", qty.String(),
		"order_id", info.String("orderId"),
	)
	return exchanges.Record{
		exchanges.KeyID:            info.String("orderId"),
		exchanges.KeyClientOrderID: info.String("orderLinkId"),
		exchanges.KeySymbol:        symbol,
		exchanges.KeySide:          string(side),
		exchanges.KeyType:          string(orderType),
		exchanges.KeyAmount:        qty,
		exchanges.KeyPrice:         price,
		exchanges.KeyTimestamp:     c.Milliseconds(),
		exchanges.KeyInfo:          info,
	}, nil
}

func (c *Client) EditOrder(
	ctx context.Context,
	id, symbol string,
	orderType exchanges.OrderType,
	side exchanges.OrderSide,
	amount, price decimal.Decimal,
	params exchanges.Params,
) (exchanges.Record, error) {
	marketID, err := c.MarketID(symbol)
	if err != nil {
		return nil, err
	}
	body := c.translateParams(params)
	body["category"] = c.category()
	body["symbol"] = marketID
	if _, ok := body["orderId"]; !ok {
		body["orderId"] = id
	}
	if amount.Sign() > 0 {
		body["qty"] = amount.String()
	}
	if price.Sign() > 0 && orderType != exchanges.OrderTypeMarket {
		body["price"] = price.String()
	}

	var res map[string]any
	if _, err := c.call(ctx, request{
		method:   http.MethodPost,
		path:     "/v5/order/amend",
		payload:  body,
		signed:   true,
		limiters: []string{ratelimit.KeyGlobal, ratelimit.KeyTrading},
	}, &res); err != nil {
		return nil, err
	}
	info := exchanges.Record(res)
	return exchanges.Record{
		exchanges.KeyID:            info.String("orderId"),
		exchanges.KeyClientOrderID: info.String("orderLinkId"),
		exchanges.KeySymbol:        symbol,
		exchanges.KeySide:          string(side),
		exchanges.KeyType:          string(orderType),
		exchanges.KeyAmount:        amount,
		exchanges.KeyPrice:         price,
		exchanges.KeyInfo:          info,
	}, nil
}

func (c *Client) CancelOrder(ctx context.Context, id, symbol string, params exchanges.Params) (exchanges.Record, error) {
	marketID, err := c.MarketID(symbol)
	if err != nil {
		return nil, err
	}
	body := c.translateParams(params)
	body["category"] = c.category()
	body["symbol"] = marketID
	body["orderId"] = id

	var res map[string]any
	if _, err := c.call(ctx, request{
		method:   http.MethodPost,
		path:     "/v5/order/cancel",
		payload:  body,
		signed:   true,
		limiters: []string{ratelimit.KeyGlobal, ratelimit.KeyTrading},
	}, &res); err != nil {
		return nil, err
	}
	info := exchanges.Record(res)
	return exchanges.Record{
		exchanges.KeyID:     info.String("orderId"),
		exchanges.KeySymbol: symbol,
		exchanges.KeyStatus: string(exchanges.OrderStatusCanceled),
		exchanges.KeyInfo:   info,
	}, nil
}

// FetchOrder looks the order up among open orders first, then in the order history.
func (c *Client) FetchOrder(ctx context.Context, id, symbol string, params exchanges.Params) (exchanges.Record, error) {
	query, err := c.orderQuery(symbol, params)
	if err != nil {
		return nil, err
	}
	query.Set("orderId", id)

	for _, path := range []string{"/v5/order/realtime", "/v5/order/history"} {
		var res listResult
		if _, err := c.call(ctx, request{
			method:   http.MethodGet,
			path:     path,
			query:    query,
			signed:   true,
			limiters: []string{ratelimit.KeyGlobal},
		}, &res); err != nil {
			return nil, err
		}
		for _, item := range res.List {
			if exchanges.Record(item).String("orderId") == id {
				return c.orderRecord(item), nil
			}
		}
	}
	return nil, errors.Wrapf(exchanges.ErrRequestFailed, "order %s not found", id)
}

func (c *Client) FetchOpenOrders(ctx context.Context, symbol string, limit int, params exchanges.Params) ([]exchanges.Record, error) {
	query, err := c.orderQuery(symbol, params)
	if err != nil {
		return nil, err
	}
	query.Set("openOnly", "0")
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var res listResult
	if _, err := c.call(ctx, request{
		method:   http.MethodGet,
		path:     "/v5/order/realtime",
		query:    query,
		signed:   true,
		limiters: []string{ratelimit.KeyGlobal},
	}, &res); err != nil {
		return nil, err
	}

	orders := make([]exchanges.Record, 0, len(res.List))
	for _, item := range res.List {
		orders = append(orders, c.orderRecord(item))
	}
	return orders, nil
}

func (c *Client) FetchMyTrades(ctx context.Context, symbol string, limit int, params exchanges.Params) ([]exchanges.Record, error) {
	query, err := c.orderQuery(symbol, params)
	if err != nil {
		return nil, err
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var res listResult
	if _, err := c.call(ctx, request{
		method:   http.MethodGet,
		path:     "/v5/execution/list",
		query:    query,
		signed:   true,
		limiters: []string{ratelimit.KeyGlobal},
	}, &res); err != nil {
		return nil, err
	}

	trades := make([]exchanges.Record, 0, len(res.List))
	for _, item := range res.List {
		trades = append(trades, c.tradeRecord(item))
	}
	return trades, nil
}

// orderQuery builds the common category/symbol query of order listing endpoints.
// Derivatives listings without symbol need a settle coin.
func (c *Client) orderQuery(symbol string, params exchanges.Params) (url.Values, error) {
	query := url.Values{}
	for key, value := range c.translateParams(params) {
		query.Set(key, exchanges.Record{key: value}.String(key))
	}
	query.Set("category", c.category())
	if symbol != "" {
		marketID, err := c.MarketID(symbol)
		if err != nil {
			return nil, err
		}
		query.Set("symbol", marketID)
	} else if c.cfg.Market.IsFuture() && query.Get("settleCoin") == "" {
		query.Set("settleCoin", c.defaultSettleCoin())
	}
	return query, nil
}

// translateParams maps unified parameter names onto their v5 equivalents.
func (c *Client) translateParams(params exchanges.Params) map[string]any {
	out := make(map[string]any, len(params)+6)
	for key, value := range params {
		switch key {
		case "orderCategory":
			if exchanges.Record(params).String(key) == "1" {
				out["orderFilter"] = "StopOrder"
			}
		case "stop":
			if exchanges.Record(params).Bool(key) {
				out["orderFilter"] = "StopOrder"
			}
		case "stop_order_id":
			out["orderId"] = exchanges.Record(params).String(key)
		case "reduceOnly":
			out[key] = exchanges.Record(params).Bool(key)
		case "triggerDirection", "positionIdx":
			out[key] = value
		default:
			if d, ok := value.(decimal.Decimal); ok {
				out[key] = d.String()
				continue
			}
			out[key] = value
		}
	}
	return out
}

func (c *Client) orderRecord(item map[string]any) exchanges.Record {
	info := exchanges.Record(item)
	status := info.String("orderStatus")
	if canonical, ok := orderStatuses[status]; ok {
		status = string(canonical)
	}

	price := info.Decimal("price", decimal.Zero)
	if price.IsZero() {
		price = info.Decimal("avgPrice", decimal.Zero)
	}

	record := exchanges.Record{
		exchanges.KeyID:            info.String("orderId"),
		exchanges.KeyClientOrderID: info.String("orderLinkId"),
		exchanges.KeySymbol:        c.unifiedSymbol(info.String("symbol")),
		exchanges.KeySide:          strings.ToLower(info.String("side")),
		exchanges.KeyType:          strings.ToLower(info.String("orderType")),
		exchanges.KeyStatus:        status,
		exchanges.KeyPrice:         price,
		exchanges.KeyFilled:        info.Decimal("cumExecQty", decimal.Zero),
		exchanges.KeyCost:          info.Decimal("cumExecValue", decimal.Zero),
		exchanges.KeyTimestamp:     info.Decimal("createdTime", decimal.Zero).IntPart(),
		exchanges.KeyInfo:          info,
	}
	if info.Has("qty") {
		record[exchanges.KeyAmount] = info.Decimal("qty", decimal.Zero)
	}
	if trigger := info.Decimal("triggerPrice", decimal.Zero); !trigger.IsZero() {
		record[exchanges.KeyStopPrice] = trigger
	}
	return record
}

func (c *Client) tradeRecord(item map[string]any) exchanges.Record {
	info := exchanges.Record(item)
	return exchanges.Record{
		exchanges.KeyID:        info.String("execId"),
		exchanges.KeyOrderID:   info.String("orderId"),
		exchanges.KeySymbol:    c.unifiedSymbol(info.String("symbol")),
		exchanges.KeySide:      strings.ToLower(info.String("side")),
		exchanges.KeyPrice:     info.Decimal("execPrice", decimal.Zero),
		exchanges.KeyAmount:    info.Decimal("execQty", decimal.Zero),
		exchanges.KeyCost:      info.Decimal("execValue", decimal.Zero),
		exchanges.KeyFee:       info.Decimal("execFee", decimal.Zero),
		exchanges.KeyTimestamp: info.Decimal("execTime", decimal.Zero).IntPart(),
		exchanges.KeyInfo:      info,
	}
}

func nativeSide(side exchanges.OrderSide) string {
	if side == exchanges.OrderSideSell {
		return "Sell"
	}
	return "Buy"
}

func nativeOrderType(t exchanges.OrderType) string {
	switch t {
	case exchanges.OrderTypeLimit, exchanges.OrderTypeStopLossLimit, exchanges.OrderTypeTakeProfitLimit:
		return "Limit"
	default:
		return "Market"
	}
}
