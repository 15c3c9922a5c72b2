package exchanges

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketType defines supported exchange market segments.
type MarketType string

const (
	MarketTypeSpot        MarketType = "spot"
	MarketTypeLinearPerp  MarketType = "linear_perp"
	MarketTypeInversePerp MarketType = "inverse_perp"
)

// IsFuture reports whether the market trades derivatives.
func (m MarketType) IsFuture() bool {
	return m == MarketTypeLinearPerp || m == MarketTypeInversePerp
}

// OrderSide defines buy or sell direction.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// PositionSide helps differentiate hedged positions.
type PositionSide string

const (
	PositionSideLong  PositionSide = "long"
	PositionSideShort PositionSide = "short"
	PositionSideBoth  PositionSide = "both"
)

// OrderType is the canonical order type shared by every exchange adapter.
type OrderType string

const (
	OrderTypeMarket          OrderType = "market"
	OrderTypeLimit           OrderType = "limit"
	OrderTypeStopLoss        OrderType = "stop_loss"
	OrderTypeStopLossLimit   OrderType = "stop_loss_limit"
	OrderTypeTakeProfit      OrderType = "take_profit"
	OrderTypeTakeProfitLimit OrderType = "take_profit_limit"
	OrderTypeTrailingStop    OrderType = "trailing_stop"
)

// TraderOrderType is the order kind requested by the trading engine.
type TraderOrderType string

const (
	TraderOrderBuyMarket       TraderOrderType = "buy_market"
	TraderOrderSellMarket      TraderOrderType = "sell_market"
	TraderOrderBuyLimit        TraderOrderType = "buy_limit"
	TraderOrderSellLimit       TraderOrderType = "sell_limit"
	TraderOrderStopLoss        TraderOrderType = "stop_loss"
	TraderOrderStopLossLimit   TraderOrderType = "stop_loss_limit"
	TraderOrderTakeProfit      TraderOrderType = "take_profit"
	TraderOrderTakeProfitLimit TraderOrderType = "take_profit_limit"
	TraderOrderTrailingStop    TraderOrderType = "trailing_stop"
)

// IsStop reports whether the order is a conditional (trigger based) order.
func (t TraderOrderType) IsStop() bool {
	switch t {
	case TraderOrderStopLoss, TraderOrderStopLossLimit, TraderOrderTrailingStop:
		return true
	}
	return false
}

// Side returns the natural side of buy/sell order kinds, empty for conditional kinds.
func (t TraderOrderType) Side() OrderSide {
	switch t {
	case TraderOrderBuyMarket, TraderOrderBuyLimit:
		return OrderSideBuy
	case TraderOrderSellMarket, TraderOrderSellLimit:
		return OrderSideSell
	}
	return ""
}

// OrderStatus enumerates exchange level order lifecycle.
type OrderStatus string

const (
	OrderStatusOpen            OrderStatus = "open"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCanceled        OrderStatus = "canceled"
	OrderStatusRejected        OrderStatus = "rejected"
	OrderStatusExpired         OrderStatus = "expired"
	OrderStatusClosed          OrderStatus = "closed"
	OrderStatusUnknown         OrderStatus = "unknown"
)

// MarginType defines futures margin configuration.
type MarginType string

const (
	MarginTypeCross    MarginType = "cross"
	MarginTypeIsolated MarginType = "isolated"
)

// ParseMarginType validates a raw margin mode value.
func ParseMarginType(value string) (MarginType, bool) {
	switch MarginType(value) {
	case MarginTypeCross, MarginTypeIsolated:
		return MarginType(value), true
	}
	return "", false
}

// PositionMode tells whether an account holds one net position or both sides per symbol.
type PositionMode string

const (
	PositionModeOneWay PositionMode = "one_way"
	PositionModeHedge  PositionMode = "hedge"
)

// TakeProfitStopLossMode selects full or partial position TP/SL.
type TakeProfitStopLossMode string

const (
	TakeProfitStopLossFull    TakeProfitStopLossMode = "Full"
	TakeProfitStopLossPartial TakeProfitStopLossMode = "Partial"
)

// ContractType describes the settlement of a derivatives contract.
type ContractType string

const (
	ContractLinearPerpetual  ContractType = "linear_perpetual"
	ContractInversePerpetual ContractType = "inverse_perpetual"
)

// Market describes one tradable instrument of the connector catalogue.
type Market struct {
	ID     string
	Symbol string
	Base   string
	Quote  string
	Settle string
	Linear bool
	Type   MarketType
}

// OrderRequest is the unified payload for order placement.
type OrderRequest struct {
	Kind         TraderOrderType
	Symbol       string
	Quantity     decimal.Decimal
	Price        decimal.Decimal
	StopPrice    decimal.Decimal
	CurrentPrice decimal.Decimal
	Side         OrderSide
	ReduceOnly   bool

	// Bundled protective orders attached to the entry (futures only).
	StopLossPrice   decimal.NullDecimal
	TakeProfitPrice decimal.NullDecimal

	Params Params
}

// Order represents a normalized exchange order.
// Amount is always expressed in base asset units.
type Order struct {
	ID            string
	ClientOrderID string
	Symbol        string
	Side          OrderSide
	Type          OrderType
	Status        OrderStatus
	Amount        decimal.Decimal
	Price         decimal.Decimal
	StopPrice     decimal.Decimal
	Filled        decimal.Decimal
	ReduceOnly    bool
	TriggerAbove  bool
	Timestamp     time.Time
	Info          Record
}

// Position represents a futures/derivatives position. Size is signed: negative means short.
type Position struct {
	Symbol           string
	Timestamp        time.Time
	Side             PositionSide
	MarginType       MarginType
	Size             decimal.Decimal
	InitialMargin    decimal.Decimal
	Notional         decimal.Decimal
	Leverage         decimal.Decimal
	UnrealizedPnL    decimal.Decimal
	RealizedPnL      decimal.Decimal
	LiquidationPrice decimal.Decimal
	ClosingFee       decimal.Decimal
	BankruptcyPrice  decimal.Decimal
	EntryPrice       decimal.Decimal
	ContractType     ContractType
	Mode             PositionMode
}

// PositionResult holds a normalized position or, when parsing failed,
// the raw record exactly as received. Callers must handle both shapes.
type PositionResult struct {
	Position *Position
	Raw      Record
}

// Normalized reports whether parsing succeeded.
func (r PositionResult) Normalized() bool {
	return r.Position != nil
}

// FundingInfo contains current funding information.
// Invalid rates stand for values the exchange does not expose (not-a-number).
type FundingInfo struct {
	Symbol               string
	FundingRate          decimal.NullDecimal
	PredictedFundingRate decimal.NullDecimal
	NextFundingTime      time.Time
	LastFundingTime      time.Time
}

// Ticker contains last price stats for a symbol.
type Ticker struct {
	Symbol    string
	Close     decimal.Decimal
	Bid       decimal.Decimal
	Ask       decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Volume    decimal.Decimal
	Timestamp time.Time
	Info      Record
}

// Trade describes one of the account's executions.
type Trade struct {
	ID        string
	OrderID   string
	Symbol    string
	Side      OrderSide
	Price     decimal.Decimal
	Amount    decimal.Decimal
	Cost      decimal.Decimal
	Fee       decimal.Decimal
	Timestamp time.Time
	Info      Record
}
