package bybit

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"tentacles/internal/adapters/exchanges"
)

// MockConnector is a mock for exchanges.Connector
type MockConnector struct {
	mock.Mock
}

var _ exchanges.Connector = (*MockConnector)(nil)

func (m *MockConnector) Name() string { return "bybit" }

func (m *MockConnector) LoadMarkets(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockConnector) MarketID(symbol string) (string, error) {
	args := m.Called(symbol)
	return args.String(0), args.Error(1)
}

func (m *MockConnector) SymbolFromMarketID(id string) (string, error) {
	args := m.Called(id)
	return args.String(0), args.Error(1)
}

func (m *MockConnector) CreateOrder(ctx context.Context, symbol string, orderType exchanges.OrderType, side exchanges.OrderSide, amount, price decimal.Decimal, params exchanges.Params) (exchanges.Record, error) {
	args := m.Called(ctx, symbol, orderType, side, amount, price, params)
	return record(args.Get(0)), args.Error(1)
}

func (m *MockConnector) EditOrder(ctx context.Context, id, symbol string, orderType exchanges.OrderType, side exchanges.OrderSide, amount, price decimal.Decimal, params exchanges.Params) (exchanges.Record, error) {
	args := m.Called(ctx, id, symbol, orderType, side, amount, price, params)
	return record(args.Get(0)), args.Error(1)
}

func (m *MockConnector) CancelOrder(ctx context.Context, id, symbol string, params exchanges.Params) (exchanges.Record, error) {
	args := m.Called(ctx, id, symbol, params)
	return record(args.Get(0)), args.Error(1)
}

func (m *MockConnector) FetchOrder(ctx context.Context, id, symbol string, params exchanges.Params) (exchanges.Record, error) {
	args := m.Called(ctx, id, symbol, params)
	return record(args.Get(0)), args.Error(1)
}

func (m *MockConnector) FetchOpenOrders(ctx context.Context, symbol string, limit int, params exchanges.Params) ([]exchanges.Record, error) {
	args := m.Called(ctx, symbol, limit, params)
	return records(args.Get(0)), args.Error(1)
}

func (m *MockConnector) FetchMyTrades(ctx context.Context, symbol string, limit int, params exchanges.Params) ([]exchanges.Record, error) {
	args := m.Called(ctx, symbol, limit, params)
	return records(args.Get(0)), args.Error(1)
}

func (m *MockConnector) FetchPositions(ctx context.Context, symbols []string, params exchanges.Params) ([]exchanges.Record, error) {
	args := m.Called(ctx, symbols, params)
	return records(args.Get(0)), args.Error(1)
}

func (m *MockConnector) SetMarginMode(ctx context.Context, mode exchanges.MarginType, symbol string, params exchanges.Params) error {
	args := m.Called(ctx, mode, symbol, params)
	return args.Error(0)
}

func (m *MockConnector) PrivatePost(ctx context.Context, path string, params exchanges.Params) (exchanges.Record, error) {
	args := m.Called(ctx, path, params)
	return record(args.Get(0)), args.Error(1)
}

func (m *MockConnector) FetchTicker(ctx context.Context, symbol string, params exchanges.Params) (exchanges.Record, error) {
	args := m.Called(ctx, symbol, params)
	return record(args.Get(0)), args.Error(1)
}

func (m *MockConnector) FetchFundingRate(ctx context.Context, symbol string, params exchanges.Params) (exchanges.Record, error) {
	args := m.Called(ctx, symbol, params)
	return record(args.Get(0)), args.Error(1)
}

func (m *MockConnector) Milliseconds() int64 { return 1700000000000 }

func (m *MockConnector) ServerTime(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func record(v interface{}) exchanges.Record {
	if v == nil {
		return nil
	}
	return v.(exchanges.Record)
}

func records(v interface{}) []exchanges.Record {
	if v == nil {
		return nil
	}
	return v.([]exchanges.Record)
}
