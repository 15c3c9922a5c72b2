package bybit

import (
	"time"

	"github.com/shopspring/decimal"

	"tentacles/internal/adapters/exchanges"
	"tentacles/internal/adapters/exchanges/bybitapi"
	"tentacles/pkg/errors"
)

// Bybit bundled take profits are market orders: BUY_MARKET and SELL_MARKET stand for
// conditional market orders, which behave like limit orders with higher fees.
var bundledOrders = []exchanges.TraderOrderType{
	exchanges.TraderOrderStopLoss,
	exchanges.TraderOrderTakeProfit,
	exchanges.TraderOrderBuyMarket,
	exchanges.TraderOrderSellMarket,
}

var futuresBundledOrders = map[exchanges.TraderOrderType][]exchanges.TraderOrderType{
	exchanges.TraderOrderBuyMarket:  bundledOrders,
	exchanges.TraderOrderSellMarket: bundledOrders,
	exchanges.TraderOrderBuyLimit:   bundledOrders,
	exchanges.TraderOrderSellLimit:  bundledOrders,
}

// SupportedBundledOrders lists, per entry order kind, the orders that can be attached to it.
// Spot supports none.
func SupportedBundledOrders(market exchanges.MarketType) map[exchanges.TraderOrderType][]exchanges.TraderOrderType {
	if !market.IsFuture() {
		return map[exchanges.TraderOrderType][]exchanges.TraderOrderType{}
	}
	out := make(map[exchanges.TraderOrderType][]exchanges.TraderOrderType, len(futuresBundledOrders))
	for entry, bundled := range futuresBundledOrders {
		out[entry] = append([]exchanges.TraderOrderType(nil), bundled...)
	}
	return out
}

// BundledOrderParameters returns the params creating a stop loss and/or take profit
// alongside the entry order in one request.
func BundledOrderParameters(stopLoss, takeProfit decimal.NullDecimal) exchanges.Params {
	params := exchanges.Params{}
	if stopLoss.Valid {
		params["stopLoss"] = stopLoss.Decimal.String()
	}
	if takeProfit.Valid {
		params["takeProfit"] = takeProfit.Decimal.String()
	}
	return params
}

// positionIdx identifies the position of an order: 0 one-way, 1 buy side of hedge, 2 sell side of hedge.
func positionIdx(contract FutureContract) (int, error) {
	if contract.IsOneWay() {
		return 0, nil
	}
	return 0, errors.Wrapf(exchanges.ErrNotImplemented,
		"hedge mode on %s, switch to one-way position mode from the Bybit trading preferences", contract.Symbol)
}

// ConnectorOptions are the connector settings the adapter relies on.
type ConnectorOptions struct {
	// RecvWindow is widened from the 5s default to absorb clock drift.
	RecvWindow time.Duration
	// MarketBuyRequiresPrice stays off: the adapter converts spot market buy quantities itself.
	MarketBuyRequiresPrice bool
}

func DefaultConnectorOptions() ConnectorOptions {
	return ConnectorOptions{RecvWindow: 60 * time.Second}
}

// Apply copies the options into a connector configuration.
func (o ConnectorOptions) Apply(cfg *bybitapi.Config) {
	cfg.RecvWindow = o.RecvWindow
	cfg.MarketBuyRequiresPrice = o.MarketBuyRequiresPrice
}
