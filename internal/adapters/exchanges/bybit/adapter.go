// Package bybit adapts the generic Bybit connector to the canonical trading model.
// It compensates for the exchange quirks the connector leaves untouched: raw order
// statuses, stop order types hidden in free text, quote-denominated spot market buys,
// conditional orders kept in a separate category and funding times never reported.
package bybit

import (
	"strings"

	"github.com/shopspring/decimal"

	"tentacles/internal/adapters/exchanges"
	"tentacles/internal/metrics"
	"tentacles/pkg/errors"
	"tentacles/pkg/logger"
)

const (
	exchangeName = "bybit"

	// orderCategory 1 tags TP/SL (conditional) orders.
	orderCategoryParam = "orderCategory"
	conditionalOrder   = 1

	infoReduceOnly     = "reduceOnly"
	infoTriggerAbove   = "triggerDirection"
	triggerAboveValue  = "1"
	infoStopOrderType  = "stopOrderType"
	infoOrderCategory  = "orderCategory"
	rawOrderNew        = "ORDER_NEW"
	rawOrderCanceled   = "ORDER_CANCELED"
	rawPartialCanceled = "PARTIALLY_FILLED_CANCELED"
	v5PartialCanceled  = "PartiallyFilledCanceled"
)

// filledThreshold below which a partially canceled market buy is still considered open.
var filledThreshold = decimal.RequireFromString("0.999")

// Adapter turns raw connector records into canonical ones.
type Adapter struct {
	market     exchanges.MarketType
	quantities *QuantityBook
	contracts  *Contracts
	clock      func() int64
	symbols    func(id string) (string, error)
	log        *logger.Logger
}

// NewAdapter builds an adapter over the given connector state.
func NewAdapter(market exchanges.MarketType, quantities *QuantityBook, contracts *Contracts, conn exchanges.Connector, log *logger.Logger) *Adapter {
	if log == nil {
		log = logger.Get()
	}
	return &Adapter{
		market:     market,
		quantities: quantities,
		contracts:  contracts,
		clock:      conn.Milliseconds,
		symbols:    conn.SymbolFromMarketID,
		log:        log,
	}
}

// FixOrder normalizes a raw order. submitted is the quantity sent at creation,
// invalid when the order was not just created.
func (a *Adapter) FixOrder(raw exchanges.Record, submitted decimal.NullDecimal) (*exchanges.Order, error) {
	info, ok := raw.Info()
	if !ok {
		return nil, exchanges.MissingKey(exchanges.KeyInfo)
	}
	id, err := raw.RequireString(exchanges.KeyID)
	if err != nil {
		return nil, err
	}

	rawStatus := raw.String(exchanges.KeyStatus)
	order := &exchanges.Order{
		ID:            id,
		ClientOrderID: raw.String(exchanges.KeyClientOrderID),
		Symbol:        raw.String(exchanges.KeySymbol),
		Side:          exchanges.OrderSide(raw.String(exchanges.KeySide)),
		Type:          exchanges.OrderType(raw.String(exchanges.KeyType)),
		Status:        fixStatus(rawStatus),
		Price:         raw.Decimal(exchanges.KeyPrice, decimal.Zero),
		StopPrice:     raw.Decimal(exchanges.KeyStopPrice, decimal.Zero),
		Filled:        raw.Decimal(exchanges.KeyFilled, decimal.Zero),
		Timestamp:     raw.Time(exchanges.KeyTimestamp),
		ReduceOnly:    info.Bool(infoReduceOnly),
		Info:          info,
	}
	amount := raw.NullDecimal(exchanges.KeyAmount)
	order.Amount = amount.Decimal
	if trigger := info.String(infoTriggerAbove); trigger != "" {
		order.TriggerAbove = trigger == triggerAboveValue
	}

	a.adaptOrderType(order, info)

	if a.market == exchanges.MarketTypeSpot &&
		order.Type == exchanges.OrderTypeMarket && order.Side == exchanges.OrderSideBuy {
		a.reconcileQuantity(order, rawStatus, amount, submitted)
	}
	return order, nil
}

func fixStatus(raw string) exchanges.OrderStatus {
	switch raw {
	case rawOrderNew:
		return exchanges.OrderStatusOpen
	case rawOrderCanceled:
		return exchanges.OrderStatusCanceled
	case rawPartialCanceled, v5PartialCanceled:
		return exchanges.OrderStatusFilled
	case "":
		return exchanges.OrderStatusUnknown
	}
	return exchanges.OrderStatus(raw)
}

func isPartiallyCanceled(raw string) bool {
	return raw == rawPartialCanceled || raw == v5PartialCanceled
}

// adaptOrderType tags stop orders the connector reports as plain market/limit orders.
// On spot, category tagged orders cannot tell take profits from stop losses: both become stop losses.
func (a *Adapter) adaptOrderType(order *exchanges.Order, info exchanges.Record) {
	if stopType := info.String(infoStopOrderType); stopType != "" {
		switch {
		case strings.Contains(stopType, "StopLoss"), strings.Contains(stopType, "Stop"):
			order.Type = exchanges.OrderTypeStopLoss
		case strings.Contains(stopType, "TakeProfit"):
			order.Type = exchanges.OrderTypeTakeProfit
		}
		return
	}
	if a.market == exchanges.MarketTypeSpot && info.String(infoOrderCategory) == "1" {
		order.Type = exchanges.OrderTypeStopLoss
	}
}

// reconcileQuantity restores the base amount of a spot market buy.
func (a *Adapter) reconcileQuantity(order *exchanges.Order, rawStatus string, amount, submitted decimal.NullDecimal) {
	base, err := a.quantities.Resolve(submitted, order.ID)
	if err != nil {
		if errors.Is(err, exchanges.ErrKeyLookupFailed) {
			metrics.RecordReconciliationMiss(exchangeName)
			a.log.Debugw("Market buy quantity not reconciled", "order_id", order.ID, "error", err)
		}
		return
	}
	if isPartiallyCanceled(rawStatus) &&
		(!amount.Valid || amount.Decimal.LessThan(base.Mul(filledThreshold))) {
		// reported as partially canceled while the fill is not settled yet
		order.Status = exchanges.OrderStatusOpen
	}
	order.Amount = base
}
