package exchanges

import (
	"context"

	"github.com/shopspring/decimal"
)

// Connector is the generic exchange client the adapters build on.
// It performs authenticated REST calls and returns unified records whose
// "info" key keeps the exchange-native payload untouched.
type Connector interface {
	Name() string

	// Catalogue
	LoadMarkets(ctx context.Context) error
	MarketID(symbol string) (string, error)
	SymbolFromMarketID(id string) (string, error)

	// Trading
	CreateOrder(ctx context.Context, symbol string, orderType OrderType, side OrderSide, amount, price decimal.Decimal, params Params) (Record, error)
	EditOrder(ctx context.Context, id, symbol string, orderType OrderType, side OrderSide, amount, price decimal.Decimal, params Params) (Record, error)
	CancelOrder(ctx context.Context, id, symbol string, params Params) (Record, error)
	FetchOrder(ctx context.Context, id, symbol string, params Params) (Record, error)
	FetchOpenOrders(ctx context.Context, symbol string, limit int, params Params) ([]Record, error)
	FetchMyTrades(ctx context.Context, symbol string, limit int, params Params) ([]Record, error)

	// Account
	FetchPositions(ctx context.Context, symbols []string, params Params) ([]Record, error)
	SetMarginMode(ctx context.Context, mode MarginType, symbol string, params Params) error
	PrivatePost(ctx context.Context, path string, params Params) (Record, error)

	// Market data
	FetchTicker(ctx context.Context, symbol string, params Params) (Record, error)
	FetchFundingRate(ctx context.Context, symbol string, params Params) (Record, error)

	// Clock
	Milliseconds() int64
	ServerTime(ctx context.Context) (int64, error)
}
