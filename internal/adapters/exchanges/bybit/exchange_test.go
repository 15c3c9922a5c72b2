package bybit

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tentacles/internal/adapters/exchanges"
	"tentacles/internal/metrics"
	"tentacles/pkg/errors"
	"tentacles/pkg/logger"
)

var _ metrics.AdapterState = (*Exchange)(nil)

type recordingObserver struct {
	mu     sync.Mutex
	orders []*exchanges.Order
}

func (r *recordingObserver) OnOrder(_ context.Context, order *exchanges.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, order)
}

func newTestExchange(market exchanges.MarketType) (*Exchange, *MockConnector) {
	conn := &MockConnector{}
	return New(conn, Config{Market: market, Logger: logger.Nop()}), conn
}

func hasParam(key string, value any) interface{} {
	return mock.MatchedBy(func(p exchanges.Params) bool {
		v, ok := p[key]
		return ok && v == value
	})
}

func lacksParam(key string) interface{} {
	return mock.MatchedBy(func(p exchanges.Params) bool {
		return !p.Has(key)
	})
}

func TestGetOrder_FallsBackToConditionalCategory(t *testing.T) {
	ex, conn := newTestExchange(exchanges.MarketTypeLinearPerp)
	ctx := context.Background()

	conn.On("FetchOrder", ctx, "42", "BTC/USDT:USDT", lacksParam(orderCategoryParam)).
		Return(nil, errors.Wrap(exchanges.ErrRequestFailed, "order not found")).Once()
	conn.On("FetchOrder", ctx, "42", "BTC/USDT:USDT", hasParam(orderCategoryParam, conditionalOrder)).
		Return(rawOrder(map[string]any{exchanges.KeyID: "42"}, map[string]any{"stopOrderType": "StopLoss"}), nil).Once()

	order, err := ex.GetOrder(ctx, "42", "BTC/USDT:USDT", nil)
	require.NoError(t, err)
	assert.Equal(t, exchanges.OrderTypeStopLoss, order.Type)
	conn.AssertNumberOfCalls(t, "FetchOrder", 2)
}

func TestGetOrder_SecondFailurePropagates(t *testing.T) {
	ex, conn := newTestExchange(exchanges.MarketTypeLinearPerp)
	ctx := context.Background()
	second := &exchanges.ExchangeError{Code: 110001, Message: "order not exists"}

	conn.On("FetchOrder", ctx, "42", "BTC/USDT:USDT", lacksParam(orderCategoryParam)).
		Return(nil, errors.Wrap(exchanges.ErrRequestFailed, "order not found")).Once()
	conn.On("FetchOrder", ctx, "42", "BTC/USDT:USDT", hasParam(orderCategoryParam, conditionalOrder)).
		Return(nil, second).Once()

	_, err := ex.GetOrder(ctx, "42", "BTC/USDT:USDT", nil)
	require.Error(t, err)
	assert.Same(t, second, err)
	assert.True(t, errors.Is(err, exchanges.ErrRequestFailed))
	conn.AssertNumberOfCalls(t, "FetchOrder", 2)
}

func TestGetOrder_NoRetryWhenCategoryPresent(t *testing.T) {
	ex, conn := newTestExchange(exchanges.MarketTypeSpot)
	ctx := context.Background()

	conn.On("FetchOrder", ctx, "42", "BTC/USDT", mock.Anything).
		Return(nil, errors.Wrap(exchanges.ErrRequestFailed, "order not found"))

	_, err := ex.GetOrder(ctx, "42", "BTC/USDT", exchanges.Params{orderCategoryParam: conditionalOrder})
	assert.True(t, errors.Is(err, exchanges.ErrRequestFailed))
	conn.AssertNumberOfCalls(t, "FetchOrder", 1)
}

func TestGetOrder_NoRetryOnOtherErrors(t *testing.T) {
	ex, conn := newTestExchange(exchanges.MarketTypeSpot)
	ctx := context.Background()

	conn.On("FetchOrder", ctx, "42", "BTC/USDT", mock.Anything).Return(nil, exchanges.ErrInvalidRequest)

	_, err := ex.GetOrder(ctx, "42", "BTC/USDT", nil)
	assert.ErrorIs(t, err, exchanges.ErrInvalidRequest)
	conn.AssertNumberOfCalls(t, "FetchOrder", 1)
}

func TestGetOpenOrders_SpotIncludesConditionalOrders(t *testing.T) {
	ex, conn := newTestExchange(exchanges.MarketTypeSpot)
	ctx := context.Background()

	conn.On("FetchOpenOrders", ctx, "BTC/USDT", 0, lacksParam(orderCategoryParam)).
		Return([]exchanges.Record{rawOrder(map[string]any{exchanges.KeyID: "1"}, nil)}, nil).Once()
	conn.On("FetchOpenOrders", ctx, "BTC/USDT", 0, hasParam(orderCategoryParam, conditionalOrder)).
		Return([]exchanges.Record{rawOrder(map[string]any{exchanges.KeyID: "2"}, map[string]any{"orderCategory": "1"})}, nil).Once()

	orders, err := ex.GetOpenOrders(ctx, "BTC/USDT", 0, nil)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "1", orders[0].ID)
	assert.Equal(t, exchanges.OrderTypeLimit, orders[0].Type)
	assert.Equal(t, "2", orders[1].ID)
	assert.Equal(t, exchanges.OrderTypeStopLoss, orders[1].Type)
	conn.AssertExpectations(t)
}

func TestGetOpenOrders_FuturesSingleQuery(t *testing.T) {
	ex, conn := newTestExchange(exchanges.MarketTypeLinearPerp)
	ctx := context.Background()

	conn.On("FetchOpenOrders", ctx, "", 20, mock.Anything).
		Return([]exchanges.Record{rawOrder(nil, nil)}, nil).Once()

	orders, err := ex.GetOpenOrders(ctx, "", 20, nil)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	conn.AssertNumberOfCalls(t, "FetchOpenOrders", 1)
}

func TestCancelOrder_TagsStopOrders(t *testing.T) {
	ex, conn := newTestExchange(exchanges.MarketTypeSpot)
	ctx := context.Background()

	conn.On("CancelOrder", ctx, "1", "BTC/USDT", hasParam(orderCategoryParam, conditionalOrder)).
		Return(exchanges.Record{}, nil).Once()
	conn.On("CancelOrder", ctx, "2", "BTC/USDT", lacksParam(orderCategoryParam)).
		Return(exchanges.Record{}, nil).Once()

	status, err := ex.CancelOrder(ctx, "1", "BTC/USDT", exchanges.TraderOrderStopLoss, nil)
	require.NoError(t, err)
	assert.Equal(t, exchanges.OrderStatusCanceled, status)

	status, err = ex.CancelOrder(ctx, "2", "BTC/USDT", exchanges.TraderOrderSellLimit, nil)
	require.NoError(t, err)
	assert.Equal(t, exchanges.OrderStatusCanceled, status)
	conn.AssertExpectations(t)
}

func TestCreateOrder_SpotMarketBuyRequiresPrice(t *testing.T) {
	ex, conn := newTestExchange(exchanges.MarketTypeSpot)

	_, err := ex.CreateOrder(context.Background(), exchanges.OrderRequest{
		Kind:     exchanges.TraderOrderBuyMarket,
		Symbol:   "BTC/USDT",
		Quantity: dec("0.01"),
	})
	assert.True(t, errors.Is(err, exchanges.ErrNotSupported))
	conn.AssertNotCalled(t, "CreateOrder")
	assert.Equal(t, 0, ex.PendingQuantities())
}

func TestCreateOrder_SpotMarketBuyConvertsQuantity(t *testing.T) {
	observer := &recordingObserver{}
	conn := &MockConnector{}
	ex := New(conn, Config{Market: exchanges.MarketTypeSpot, Logger: logger.Nop(), Observer: observer})
	ctx := context.Background()

	created := marketBuy("99", "", "300")
	conn.On("CreateOrder", ctx, "BTC/USDT", exchanges.OrderTypeMarket, exchanges.OrderSideBuy,
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(dec("300")) }), decimal.Zero, mock.Anything).
		Return(created, nil).Once()
	conn.On("FetchOrder", ctx, "99", "BTC/USDT", mock.Anything).
		Return(marketBuy("99", "PartiallyFilledCanceled", "299.95"), nil).Once()

	order, err := ex.CreateOrder(ctx, exchanges.OrderRequest{
		Kind:         exchanges.TraderOrderBuyMarket,
		Symbol:       "BTC/USDT",
		Quantity:     dec("0.01"),
		CurrentPrice: dec("30000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "99", order.ID)
	assert.True(t, dec("0.01").Equal(order.Amount))
	assert.Equal(t, exchanges.OrderStatusFilled, order.Status)
	assert.Len(t, observer.orders, 2)
	conn.AssertExpectations(t)
}

func registerContract(ex *Exchange, symbol string, mode exchanges.PositionMode) {
	ex.Contracts().Set(FutureContract{
		Symbol:       symbol,
		MarginType:   exchanges.MarginTypeCross,
		Leverage:     decimal.NewFromInt(5),
		PositionMode: mode,
	})
}

func TestCreateOrder_FuturesParams(t *testing.T) {
	ex, conn := newTestExchange(exchanges.MarketTypeLinearPerp)
	registerContract(ex, "BTC/USDT:USDT", exchanges.PositionModeOneWay)
	ctx := context.Background()

	var sent exchanges.Params
	conn.On("CreateOrder", ctx, "BTC/USDT:USDT", exchanges.OrderTypeLimit, exchanges.OrderSideBuy,
		dec("0.5"), dec("29000"), mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(6).(exchanges.Params) }).
		Return(rawOrder(map[string]any{exchanges.KeyID: "7"}, nil), nil).Once()
	conn.On("FetchOrder", ctx, "7", "BTC/USDT:USDT", mock.Anything).
		Return(rawOrder(map[string]any{exchanges.KeyID: "7", exchanges.KeyStatus: "open"}, nil), nil).Once()

	order, err := ex.CreateOrder(ctx, exchanges.OrderRequest{
		Kind:            exchanges.TraderOrderBuyLimit,
		Symbol:          "BTC/USDT:USDT",
		Quantity:        dec("0.5"),
		Price:           dec("29000"),
		ReduceOnly:      true,
		StopLossPrice:   decimal.NewNullDecimal(dec("28000")),
		TakeProfitPrice: decimal.NewNullDecimal(dec("32000.5")),
	})
	require.NoError(t, err)
	assert.Equal(t, exchanges.OrderStatusOpen, order.Status)

	assert.Equal(t, 0, sent["positionIdx"])
	assert.Equal(t, true, sent["reduceOnly"])
	assert.Equal(t, "28000", sent["stopLoss"])
	assert.Equal(t, "32000.5", sent["takeProfit"])
}

func TestCreateOrder_FuturesContractErrors(t *testing.T) {
	ex, conn := newTestExchange(exchanges.MarketTypeLinearPerp)
	req := exchanges.OrderRequest{
		Kind:     exchanges.TraderOrderSellMarket,
		Symbol:   "BTC/USDT:USDT",
		Quantity: dec("1"),
	}

	_, err := ex.CreateOrder(context.Background(), req)
	assert.True(t, errors.Is(err, exchanges.ErrKeyLookupFailed))

	registerContract(ex, "BTC/USDT:USDT", exchanges.PositionModeHedge)
	_, err = ex.CreateOrder(context.Background(), req)
	assert.True(t, errors.Is(err, exchanges.ErrNotImplemented))

	conn.AssertNotCalled(t, "CreateOrder")
}

func TestCreateOrder_StopLoss(t *testing.T) {
	tests := []struct {
		name      string
		market    exchanges.MarketType
		current   string
		direction any
	}{
		{"futures falling", exchanges.MarketTypeLinearPerp, "30000", 2},
		{"futures rising", exchanges.MarketTypeLinearPerp, "20000", 1},
		{"spot", exchanges.MarketTypeSpot, "30000", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, conn := newTestExchange(tt.market)
			registerContract(ex, "BTC/USDT:USDT", exchanges.PositionModeOneWay)
			ctx := context.Background()

			var sent exchanges.Params
			conn.On("CreateOrder", ctx, "BTC/USDT:USDT", exchanges.OrderTypeMarket, exchanges.OrderSideSell,
				dec("0.2"), decimal.Zero, mock.Anything).
				Run(func(args mock.Arguments) { sent = args.Get(6).(exchanges.Params) }).
				Return(rawOrder(map[string]any{exchanges.KeyID: "8", exchanges.KeyType: "market"}, map[string]any{"stopOrderType": "Stop"}), nil).Once()
			conn.On("FetchOrder", ctx, "8", "BTC/USDT:USDT", mock.Anything).
				Return(nil, errors.Wrap(exchanges.ErrRequestFailed, "order not found"))

			order, err := ex.CreateOrder(ctx, exchanges.OrderRequest{
				Kind:         exchanges.TraderOrderStopLoss,
				Symbol:       "BTC/USDT:USDT",
				Quantity:     dec("0.2"),
				StopPrice:    dec("25000"),
				CurrentPrice: dec(tt.current),
				Side:         exchanges.OrderSideSell,
			})
			require.NoError(t, err)
			assert.Equal(t, "8", order.ID)
			assert.Equal(t, exchanges.OrderTypeStopLoss, order.Type)

			assert.True(t, dec("25000").Equal(sent["triggerPrice"].(decimal.Decimal)))
			if tt.direction == nil {
				assert.Equal(t, conditionalOrder, sent[orderCategoryParam])
				assert.False(t, sent.Has("triggerDirection"))
			} else {
				assert.Equal(t, tt.direction, sent["triggerDirection"])
			}
		})
	}
}

func TestCreateOrder_VerifyUsesStopLookup(t *testing.T) {
	ex, conn := newTestExchange(exchanges.MarketTypeLinearPerp)
	registerContract(ex, "BTC/USDT:USDT", exchanges.PositionModeOneWay)
	ctx := context.Background()

	conn.On("CreateOrder", ctx, "BTC/USDT:USDT", exchanges.OrderTypeMarket, exchanges.OrderSideSell,
		mock.Anything, mock.Anything, mock.Anything).
		Return(rawOrder(map[string]any{exchanges.KeyID: "8"}, nil), nil).Once()
	conn.On("FetchOrder", ctx, "8", "BTC/USDT:USDT", hasParam("stop", true)).
		Return(rawOrder(map[string]any{exchanges.KeyID: "8", exchanges.KeyStatus: "Untriggered"}, nil), nil).Once()

	order, err := ex.CreateOrder(ctx, exchanges.OrderRequest{
		Kind:         exchanges.TraderOrderStopLoss,
		Symbol:       "BTC/USDT:USDT",
		Quantity:     dec("1"),
		StopPrice:    dec("25000"),
		CurrentPrice: dec("30000"),
		Side:         exchanges.OrderSideSell,
	})
	require.NoError(t, err)
	assert.Equal(t, exchanges.OrderStatus("Untriggered"), order.Status)
	conn.AssertExpectations(t)
}

func TestCreateOrder_Unsupported(t *testing.T) {
	ex, _ := newTestExchange(exchanges.MarketTypeSpot)

	for _, kind := range []exchanges.TraderOrderType{
		exchanges.TraderOrderTakeProfit,
		exchanges.TraderOrderTakeProfitLimit,
		exchanges.TraderOrderTrailingStop,
	} {
		_, err := ex.CreateOrder(context.Background(), exchanges.OrderRequest{
			Kind: kind, Symbol: "BTC/USDT", Quantity: dec("1"), Price: dec("1"),
		})
		assert.True(t, errors.Is(err, exchanges.ErrNotSupported), kind)
	}
}

func TestEditOrder_StopOrder(t *testing.T) {
	ex, conn := newTestExchange(exchanges.MarketTypeLinearPerp)
	ctx := context.Background()

	var sent exchanges.Params
	conn.On("EditOrder", ctx, "5", "BTC/USDT:USDT", exchanges.OrderTypeStopLoss, exchanges.OrderSideSell,
		dec("1"), mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(7).(exchanges.Params) }).
		Return(rawOrder(map[string]any{exchanges.KeyID: "5"}, nil), nil).Once()

	_, err := ex.EditOrder(ctx, "5", exchanges.OrderRequest{
		Kind:      exchanges.TraderOrderStopLoss,
		Symbol:    "BTC/USDT:USDT",
		Quantity:  dec("1"),
		StopPrice: dec("24500.5"),
		Side:      exchanges.OrderSideSell,
	})
	require.NoError(t, err)
	assert.Equal(t, "5", sent["stop_order_id"])
	assert.Equal(t, "24500.5", sent["triggerPrice"])
}

func TestGetPositions(t *testing.T) {
	ex, conn := newTestExchange(exchanges.MarketTypeLinearPerp)
	ctx := context.Background()

	broken := rawPosition("long", nil)
	delete(broken, exchanges.KeyMarginMode)
	conn.On("FetchPositions", ctx, []string{"BTC/USDT:USDT"}, mock.Anything).
		Return([]exchanges.Record{rawPosition("short", nil), broken}, nil)

	positions, err := ex.GetPositions(ctx, []string{"BTC/USDT:USDT"})
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.True(t, positions[0].Normalized())
	assert.True(t, positions[0].Position.Size.IsNegative())
	assert.False(t, positions[1].Normalized())
	assert.Equal(t, 1, ex.RegisteredContracts())
}

func TestSetMarginType(t *testing.T) {
	ex, conn := newTestExchange(exchanges.MarketTypeLinearPerp)
	ctx := context.Background()

	err := ex.SetMarginType(ctx, "BTC/USDT:USDT", true, nil)
	assert.True(t, errors.Is(err, exchanges.ErrKeyLookupFailed))

	registerContract(ex, "BTC/USDT:USDT", exchanges.PositionModeOneWay)
	conn.On("SetMarginMode", ctx, exchanges.MarginTypeIsolated, "BTC/USDT:USDT",
		mock.MatchedBy(func(p exchanges.Params) bool {
			lev, ok := p[exchanges.KeyLeverage].(decimal.Decimal)
			return ok && lev.Equal(decimal.NewFromInt(5))
		})).Return(nil).Once()

	require.NoError(t, ex.SetMarginType(ctx, "BTC/USDT:USDT", true, nil))
	contract, _ := ex.Contracts().Get("BTC/USDT:USDT")
	assert.Equal(t, exchanges.MarginTypeIsolated, contract.MarginType)
	conn.AssertExpectations(t)
}

func TestSetPartialTakeProfitStopLoss(t *testing.T) {
	ctx := context.Background()
	params := exchanges.Params{"symbol": "BTCUSDT", "tpSlMode": "Partial"}

	t.Run("sent", func(t *testing.T) {
		ex, conn := newTestExchange(exchanges.MarketTypeLinearPerp)
		conn.On("MarketID", "BTC/USDT:USDT").Return("BTCUSDT", nil)
		conn.On("PrivatePost", ctx, "/v5/position/set-tpsl-mode", params).Return(exchanges.Record{}, nil).Once()

		require.NoError(t, ex.SetPartialTakeProfitStopLoss(ctx, "BTC/USDT:USDT", exchanges.TakeProfitStopLossPartial))
		conn.AssertExpectations(t)
	})

	t.Run("same mode suppressed", func(t *testing.T) {
		ex, conn := newTestExchange(exchanges.MarketTypeLinearPerp)
		conn.On("MarketID", "BTC/USDT:USDT").Return("BTCUSDT", nil)
		conn.On("PrivatePost", ctx, "/v5/position/set-tpsl-mode", params).
			Return(nil, &exchanges.ExchangeError{Code: 10001, Message: "same tp sl mode1"})

		assert.NoError(t, ex.SetPartialTakeProfitStopLoss(ctx, "BTC/USDT:USDT", exchanges.TakeProfitStopLossPartial))
	})

	t.Run("other errors propagate", func(t *testing.T) {
		ex, conn := newTestExchange(exchanges.MarketTypeLinearPerp)
		conn.On("MarketID", "BTC/USDT:USDT").Return("BTCUSDT", nil)
		conn.On("PrivatePost", ctx, "/v5/position/set-tpsl-mode", params).
			Return(nil, &exchanges.ExchangeError{Code: 10001, Message: "params error"})

		err := ex.SetPartialTakeProfitStopLoss(ctx, "BTC/USDT:USDT", exchanges.TakeProfitStopLossPartial)
		assert.True(t, errors.Is(err, exchanges.ErrRequestFailed))
	})
}

func TestGetFundingRate(t *testing.T) {
	ctx := context.Background()

	t.Run("from ticker", func(t *testing.T) {
		ex, conn := newTestExchange(exchanges.MarketTypeLinearPerp)
		conn.On("FetchTicker", ctx, "BTC/USDT:USDT", mock.Anything).Return(exchanges.Record{
			exchanges.KeyInfo: map[string]any{"fundingRate": "0.0001", "nextFundingTime": "1700006400000"},
		}, nil)

		funding, err := ex.GetFundingRate(ctx, "BTC/USDT:USDT")
		require.NoError(t, err)
		assert.Equal(t, "BTC/USDT:USDT", funding.Symbol)
		assert.True(t, dec("0.0001").Equal(funding.FundingRate.Decimal))
		conn.AssertNotCalled(t, "FetchFundingRate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("dedicated endpoint fallback", func(t *testing.T) {
		ex, conn := newTestExchange(exchanges.MarketTypeLinearPerp)
		conn.On("FetchTicker", ctx, "BTC/USDT:USDT", mock.Anything).Return(exchanges.Record{exchanges.KeyClose: "1"}, nil)
		conn.On("FetchFundingRate", ctx, "BTC/USDT:USDT", mock.Anything).Return(exchanges.Record{
			exchanges.KeyNextFundingTime: int64(1700006400000),
			exchanges.KeyInfo:            map[string]any{"fundingRate": "0.0002"},
		}, nil)

		funding, err := ex.GetFundingRate(ctx, "BTC/USDT:USDT")
		require.NoError(t, err)
		assert.True(t, dec("0.0002").Equal(funding.FundingRate.Decimal))
		assert.Equal(t, int64(1700006400-28800), funding.LastFundingTime.Unix())
	})
}

func TestGetMarkPriceAndTrades(t *testing.T) {
	ex, conn := newTestExchange(exchanges.MarketTypeLinearPerp)
	ctx := context.Background()

	conn.On("FetchTicker", ctx, "BTC/USDT:USDT", mock.Anything).Return(exchanges.Record{
		exchanges.KeySymbol: "BTC/USDT:USDT",
		exchanges.KeyClose:  "30000",
		exchanges.KeyInfo:   map[string]any{"markPrice": "30002"},
	}, nil)
	conn.On("FetchMyTrades", ctx, "BTC/USDT:USDT", 50, mock.Anything).
		Return([]exchanges.Record{trade("1", "Trade"), trade("2", "Funding")}, nil)

	mark, err := ex.GetMarkPrice(ctx, "BTC/USDT:USDT")
	require.NoError(t, err)
	assert.True(t, dec("30002").Equal(mark))

	ticker, err := ex.GetTicker(ctx, "BTC/USDT:USDT")
	require.NoError(t, err)
	assert.True(t, dec("30000").Equal(ticker.Close))

	trades, err := ex.GetMyTrades(ctx, "BTC/USDT:USDT", 50)
	require.NoError(t, err)
	assert.Len(t, trades, 1)
}

func TestSupportedBundledOrders(t *testing.T) {
	assert.Empty(t, SupportedBundledOrders(exchanges.MarketTypeSpot))

	futures := SupportedBundledOrders(exchanges.MarketTypeLinearPerp)
	assert.Len(t, futures, 4)
	assert.Contains(t, futures[exchanges.TraderOrderBuyLimit], exchanges.TraderOrderStopLoss)
	assert.NotContains(t, futures, exchanges.TraderOrderStopLoss)

	params := BundledOrderParameters(decimal.NewNullDecimal(dec("1.5")), decimal.NullDecimal{})
	assert.Equal(t, exchanges.Params{"stopLoss": "1.5"}, params)
}

func TestConnectorOptions(t *testing.T) {
	opts := DefaultConnectorOptions()
	assert.Equal(t, int64(60000), opts.RecvWindow.Milliseconds())
	assert.False(t, opts.MarketBuyRequiresPrice)
}
