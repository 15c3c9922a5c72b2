package bybit

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"tentacles/internal/adapters/exchanges"
	"tentacles/internal/adapters/exchanges/retry"
	"tentacles/internal/metrics"
	"tentacles/pkg/errors"
	"tentacles/pkg/logger"
)

const (
	tpslModePath      = "/v5/position/set-tpsl-mode"
	sameTpSlModeError = "same tp sl mode1"
)

// OrderObserver is notified with every order the exchange normalizes.
type OrderObserver interface {
	OnOrder(ctx context.Context, order *exchanges.Order)
}

// Config configures the Bybit exchange adapter.
type Config struct {
	Market   exchanges.MarketType
	Logger   *logger.Logger
	Observer OrderObserver
}

// Exchange is the Bybit adapter used by the trading engine.
// Calls are single-flight; ordering of concurrent order operations is the caller's concern.
type Exchange struct {
	conn       exchanges.Connector
	market     exchanges.MarketType
	adapter    *Adapter
	quantities *QuantityBook
	contracts  *Contracts
	observer   OrderObserver
	log        *logger.Logger
}

// New wires an adapter on top of the connector.
func New(conn exchanges.Connector, cfg Config) *Exchange {
	if cfg.Market == "" {
		cfg.Market = exchanges.MarketTypeSpot
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Get()
	}
	log := cfg.Logger.WithComponent("bybit_exchange").With("market", cfg.Market)

	quantities := NewQuantityBook()
	contracts := NewContracts(cfg.Market)
	return &Exchange{
		conn:       conn,
		market:     cfg.Market,
		adapter:    NewAdapter(cfg.Market, quantities, contracts, conn, log),
		quantities: quantities,
		contracts:  contracts,
		observer:   cfg.Observer,
		log:        log,
	}
}

func (e *Exchange) Name() string { return exchangeName }

func (e *Exchange) Market() exchanges.MarketType { return e.market }

func (e *Exchange) Adapter() *Adapter { return e.adapter }

func (e *Exchange) Contracts() *Contracts { return e.contracts }

// PendingQuantities is the size of the market buy quantity book.
func (e *Exchange) PendingQuantities() int { return e.quantities.Len() }

// RegisteredContracts is the number of known future contracts.
func (e *Exchange) RegisteredContracts() int { return e.contracts.Len() }

// SupportedBundledOrders of the adapter's market.
func (e *Exchange) SupportedBundledOrders() map[exchanges.TraderOrderType][]exchanges.TraderOrderType {
	return SupportedBundledOrders(e.market)
}

// Ping checks the exchange is reachable.
func (e *Exchange) Ping(ctx context.Context) error {
	_, err := e.conn.ServerTime(ctx)
	return err
}

// GetOpenOrders lists open orders. Spot listings skip conditional orders, which are
// fetched by a second query tagged with the conditional category.
func (e *Exchange) GetOpenOrders(ctx context.Context, symbol string, limit int, params exchanges.Params) ([]*exchanges.Order, error) {
	raw, err := e.conn.FetchOpenOrders(ctx, symbol, limit, params.Clone())
	if err != nil {
		return nil, err
	}
	if e.market == exchanges.MarketTypeSpot {
		stopParams := params.Clone()
		stopParams[orderCategoryParam] = conditionalOrder
		stops, err := e.conn.FetchOpenOrders(ctx, symbol, limit, stopParams)
		if err != nil {
			return nil, err
		}
		raw = append(raw, stops...)
	}

	orders := make([]*exchanges.Order, 0, len(raw))
	for _, r := range raw {
		order, err := e.fixOrder(ctx, r, decimal.NullDecimal{})
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// GetOrder fetches an order. A failed plain lookup is repeated once as a conditional order.
func (e *Exchange) GetOrder(ctx context.Context, id, symbol string, params exchanges.Params) (*exchanges.Order, error) {
	raw, err := retry.DoFallback(ctx, retry.Fallback{
		Param:       orderCategoryParam,
		Value:       conditionalOrder,
		MaxAttempts: 2,
		OnFallback: func(err error) {
			metrics.RecordFallback(exchangeName, "get_order")
			e.log.Debugw("Order lookup failed, retrying as conditional order", "order_id", id, "error", err)
		},
	}, params, func(ctx context.Context, p exchanges.Params) (exchanges.Record, error) {
		return e.conn.FetchOrder(ctx, id, symbol, p)
	})
	if err != nil {
		return nil, err
	}
	return e.fixOrder(ctx, raw, decimal.NullDecimal{})
}

// CancelOrder cancels an order; stop orders are addressed in the conditional category.
func (e *Exchange) CancelOrder(ctx context.Context, id, symbol string, kind exchanges.TraderOrderType, params exchanges.Params) (exchanges.OrderStatus, error) {
	p := params.Clone()
	if kind.IsStop() {
		p[orderCategoryParam] = conditionalOrder
	}
	if _, err := e.conn.CancelOrder(ctx, id, symbol, p); err != nil {
		return "", err
	}
	e.log.Infow("Order canceled", "order_id", id, "symbol", symbol, "kind", kind)
	return exchanges.OrderStatusCanceled, nil
}

// CreateOrder places an order and returns it normalized and verified.
func (e *Exchange) CreateOrder(ctx context.Context, req exchanges.OrderRequest) (*exchanges.Order, error) {
	if req.Symbol == "" {
		return nil, errors.Wrap(exchanges.ErrInvalidRequest, "symbol is required")
	}
	quantity := req.Quantity
	if e.market == exchanges.MarketTypeSpot && req.Kind == exchanges.TraderOrderBuyMarket {
		// spot market buys are sized in quote currency
		price := req.Price
		if price.IsZero() {
			price = req.CurrentPrice
		}
		if price.IsZero() {
			return nil, errors.Wrapf(exchanges.ErrNotSupported,
				"%s requires a price parameter to create market orders as quantity is in quote currency", exchangeName)
		}
		quantity = req.Quantity.Mul(price)
		e.quantities.Remember(quantity, req.Quantity)
	}

	params, err := e.orderParams(req)
	if err != nil {
		return nil, err
	}

	var raw exchanges.Record
	switch req.Kind {
	case exchanges.TraderOrderBuyMarket, exchanges.TraderOrderSellMarket:
		raw, err = e.conn.CreateOrder(ctx, req.Symbol, exchanges.OrderTypeMarket, req.Kind.Side(), quantity, decimal.Zero, params)
	case exchanges.TraderOrderBuyLimit, exchanges.TraderOrderSellLimit:
		raw, err = e.conn.CreateOrder(ctx, req.Symbol, exchanges.OrderTypeLimit, req.Kind.Side(), quantity, req.Price, params)
	case exchanges.TraderOrderStopLoss:
		raw, err = e.createMarketStopLoss(ctx, req, quantity, params)
	default:
		return nil, errors.Wrapf(exchanges.ErrNotSupported, "%s orders", req.Kind)
	}
	if err != nil {
		return nil, err
	}

	created, err := e.fixOrder(ctx, raw, decimal.NewNullDecimal(quantity))
	if err != nil {
		return nil, err
	}
	return e.VerifyOrder(ctx, created, req.Kind, req.Symbol)
}

// createMarketStopLoss places a stop loss as a market order triggered at the stop price.
func (e *Exchange) createMarketStopLoss(ctx context.Context, req exchanges.OrderRequest, quantity decimal.Decimal, params exchanges.Params) (exchanges.Record, error) {
	if req.Side == "" {
		return nil, errors.Wrap(exchanges.ErrInvalidRequest, "stop loss requires a side")
	}
	trigger := req.StopPrice
	if trigger.IsZero() {
		trigger = req.Price
	}
	if trigger.IsZero() {
		return nil, errors.Wrap(exchanges.ErrInvalidRequest, "stop loss requires a trigger price")
	}

	params["triggerPrice"] = trigger
	if e.market.IsFuture() {
		if req.CurrentPrice.IsZero() {
			return nil, errors.Wrap(exchanges.ErrNotSupported, "stop loss requires the current price to set its trigger direction")
		}
		// 1: triggered when the market rises to triggerPrice, 2: when it falls to it
		direction := 2
		if trigger.GreaterThan(req.CurrentPrice) {
			direction = 1
		}
		params["triggerDirection"] = direction
	} else {
		params[orderCategoryParam] = conditionalOrder
	}
	return e.conn.CreateOrder(ctx, req.Symbol, exchanges.OrderTypeMarket, req.Side, quantity, decimal.Zero, params)
}

// orderParams merges caller params with the futures position and bundled order params.
func (e *Exchange) orderParams(req exchanges.OrderRequest) (exchanges.Params, error) {
	params := req.Params.Clone()
	if !e.market.IsFuture() {
		return params, nil
	}
	additional, err := e.OrderAdditionalParams(req.Symbol, req.ReduceOnly)
	if err != nil {
		return nil, err
	}
	for k, v := range additional {
		params[k] = v
	}
	if req.StopLossPrice.Valid || req.TakeProfitPrice.Valid {
		if _, ok := futuresBundledOrders[req.Kind]; !ok {
			return nil, errors.Wrapf(exchanges.ErrNotSupported, "bundled orders on %s", req.Kind)
		}
		for k, v := range BundledOrderParameters(req.StopLossPrice, req.TakeProfitPrice) {
			params[k] = v
		}
	}
	return params, nil
}

// OrderAdditionalParams are the params every futures order needs.
func (e *Exchange) OrderAdditionalParams(symbol string, reduceOnly bool) (exchanges.Params, error) {
	if !e.market.IsFuture() {
		return exchanges.Params{}, nil
	}
	contract, ok := e.contracts.Get(symbol)
	if !ok {
		return nil, errors.Wrapf(exchanges.ErrKeyLookupFailed, "%s contract unavailable", symbol)
	}
	idx, err := positionIdx(contract)
	if err != nil {
		return nil, err
	}
	return exchanges.Params{
		"positionIdx": idx,
		"reduceOnly":  reduceOnly,
	}, nil
}

// EditOrder amends an open order. Stop orders are addressed by stop_order_id.
func (e *Exchange) EditOrder(ctx context.Context, id string, req exchanges.OrderRequest) (*exchanges.Order, error) {
	params := req.Params.Clone()
	if req.Kind.IsStop() {
		params["stop_order_id"] = id
	}
	if !req.StopPrice.IsZero() {
		params["triggerPrice"] = req.StopPrice.String()
	}
	side := req.Side
	if side == "" {
		side = req.Kind.Side()
	}

	raw, err := e.conn.EditOrder(ctx, id, req.Symbol, orderTypeOf(req.Kind), side, req.Quantity, req.Price, params)
	if err != nil {
		return nil, err
	}
	return e.fixOrder(ctx, raw, decimal.NullDecimal{})
}

// VerifyOrder refreshes a just created order from the exchange. Orders filled
// instantly may not be visible yet: the created order is returned in that case.
func (e *Exchange) VerifyOrder(ctx context.Context, created *exchanges.Order, kind exchanges.TraderOrderType, symbol string) (*exchanges.Order, error) {
	if created == nil || created.ID == "" {
		return created, nil
	}
	params := exchanges.Params{}
	if kind.IsStop() {
		if e.market.IsFuture() {
			params["stop"] = true
		} else {
			params[orderCategoryParam] = conditionalOrder
		}
	}

	fetched, err := e.GetOrder(ctx, created.ID, symbol, params)
	if err != nil {
		if errors.Is(err, exchanges.ErrRequestFailed) {
			e.log.Debugw("Created order not found yet", "order_id", created.ID, "error", err)
			return created, nil
		}
		return nil, err
	}
	return fetched, nil
}

// GetPositions lists positions. Positions that cannot be parsed come back raw.
func (e *Exchange) GetPositions(ctx context.Context, symbols []string) ([]exchanges.PositionResult, error) {
	raw, err := e.conn.FetchPositions(ctx, symbols, nil)
	if err != nil {
		return nil, err
	}
	positions := make([]exchanges.PositionResult, 0, len(raw))
	for _, r := range raw {
		positions = append(positions, e.adapter.ParsePosition(r))
	}
	return positions, nil
}

func (e *Exchange) GetTicker(ctx context.Context, symbol string) (*exchanges.Ticker, error) {
	raw, err := e.conn.FetchTicker(ctx, symbol, nil)
	if err != nil {
		return nil, err
	}
	return e.adapter.FixTicker(raw)
}

// GetMarkPrice reads the mark price from the ticker.
func (e *Exchange) GetMarkPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	raw, err := e.conn.FetchTicker(ctx, symbol, nil)
	if err != nil {
		return decimal.Zero, err
	}
	return e.adapter.ParseMarkPrice(raw, true)
}

// GetFundingRate reads funding from the ticker, falling back to the funding endpoint.
func (e *Exchange) GetFundingRate(ctx context.Context, symbol string) (exchanges.FundingInfo, error) {
	ticker, err := e.conn.FetchTicker(ctx, symbol, nil)
	if err != nil {
		return exchanges.FundingInfo{}, err
	}
	if funding, ok := e.adapter.ParseFundingRate(ticker, true); ok {
		funding.Symbol = symbol
		return funding, nil
	}

	raw, err := e.conn.FetchFundingRate(ctx, symbol, nil)
	if err != nil {
		return exchanges.FundingInfo{}, err
	}
	funding, _ := e.adapter.ParseFundingRate(raw, false)
	funding.Symbol = symbol
	return funding, nil
}

func (e *Exchange) GetMyTrades(ctx context.Context, symbol string, limit int) ([]exchanges.Trade, error) {
	raw, err := e.conn.FetchMyTrades(ctx, symbol, limit, nil)
	if err != nil {
		return nil, err
	}
	return e.adapter.FixTrades(raw), nil
}

// SetMarginType switches a registered contract between cross and isolated margin.
// Bybit requires the current leverage alongside.
func (e *Exchange) SetMarginType(ctx context.Context, symbol string, isolated bool, params exchanges.Params) error {
	contract, ok := e.contracts.Get(symbol)
	if !ok {
		return errors.Wrapf(exchanges.ErrKeyLookupFailed, "%s contract unavailable", symbol)
	}
	p := params.Clone()
	p[exchanges.KeyLeverage] = contract.Leverage

	mode := exchanges.MarginTypeCross
	if isolated {
		mode = exchanges.MarginTypeIsolated
	}
	if err := e.conn.SetMarginMode(ctx, mode, symbol, p); err != nil {
		return err
	}
	contract.MarginType = mode
	e.contracts.Set(contract)
	return nil
}

// SetPartialTakeProfitStopLoss switches the TP/SL mode of a symbol.
// Bybit answers an error when the mode is already set; it is ignored.
func (e *Exchange) SetPartialTakeProfitStopLoss(ctx context.Context, symbol string, mode exchanges.TakeProfitStopLossMode) error {
	marketID, err := e.conn.MarketID(symbol)
	if err != nil {
		return err
	}
	_, err = e.conn.PrivatePost(ctx, tpslModePath, exchanges.Params{
		"symbol":   marketID,
		"tpSlMode": string(mode),
	})
	if err != nil {
		if strings.Contains(err.Error(), sameTpSlModeError) {
			metrics.RecordSuppressedError(exchangeName, "same_tpsl_mode")
			return nil
		}
		return err
	}
	return nil
}

func (e *Exchange) fixOrder(ctx context.Context, raw exchanges.Record, submitted decimal.NullDecimal) (*exchanges.Order, error) {
	order, err := e.adapter.FixOrder(raw, submitted)
	if err != nil {
		return nil, err
	}
	if e.observer != nil {
		e.observer.OnOrder(ctx, order)
	}
	return order, nil
}

func orderTypeOf(kind exchanges.TraderOrderType) exchanges.OrderType {
	switch kind {
	case exchanges.TraderOrderBuyMarket, exchanges.TraderOrderSellMarket:
		return exchanges.OrderTypeMarket
	case exchanges.TraderOrderBuyLimit, exchanges.TraderOrderSellLimit:
		return exchanges.OrderTypeLimit
	}
	return exchanges.OrderType(kind)
}
