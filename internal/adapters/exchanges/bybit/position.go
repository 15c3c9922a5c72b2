package bybit

import (
	"strings"

	"github.com/shopspring/decimal"

	"tentacles/internal/adapters/exchanges"
	"tentacles/internal/metrics"
)

const (
	positionMode       = "positionIdx"
	positionHedge      = "BothSide"
	realizedPnL        = "RealisedPnl"
	cumRealizedPnL     = "cumRealisedPnl"
	closingFee         = "occClosingFee"
	bankruptcyPrice    = "bustPrice"
	positionShortValue = string(exchanges.PositionSideShort)
)

var hedgeDigits = map[string]bool{"1": true, "2": true}

// ParsePosition normalizes a raw position. When a required key is missing the
// failure is logged and the raw record is returned untouched in the result.
func (a *Adapter) ParsePosition(raw exchanges.Record) exchanges.PositionResult {
	position, err := a.parsePosition(raw)
	if err != nil {
		a.log.Errorw("Fail to parse position", "error", err, "symbol", raw.String(exchanges.KeySymbol))
		metrics.RecordDegradedPosition(exchangeName)
		return exchanges.PositionResult{Raw: raw}
	}

	a.contracts.Set(FutureContract{
		Symbol:       position.Symbol,
		ContractType: position.ContractType,
		MarginType:   position.MarginType,
		Leverage:     position.Leverage,
		PositionMode: position.Mode,
	})
	return exchanges.PositionResult{Position: position}
}

func (a *Adapter) parsePosition(raw exchanges.Record) (*exchanges.Position, error) {
	info, ok := raw.Info()
	if !ok {
		return nil, exchanges.MissingKey(exchanges.KeyInfo)
	}
	rawSymbol, err := raw.RequireString(exchanges.KeySymbol)
	if err != nil {
		return nil, err
	}
	symbol, err := a.pair(rawSymbol)
	if err != nil {
		return nil, err
	}
	marginMode, err := raw.RequireString(exchanges.KeyMarginMode)
	if err != nil {
		return nil, err
	}
	marginType, ok := exchanges.ParseMarginType(marginMode)
	if !ok {
		return nil, exchanges.MissingKey(marginMode)
	}

	mode := exchanges.PositionModeOneWay
	if idx := info.String(positionMode); idx == positionHedge || hedgeDigits[idx] {
		mode = exchanges.PositionModeHedge
	}

	size := raw.Decimal(exchanges.KeyContracts, decimal.Zero)
	if raw.String(exchanges.KeySide) == positionShortValue {
		size = size.Neg()
	}

	return &exchanges.Position{
		Symbol:    symbol,
		Timestamp: raw.Time(exchanges.KeyTimestamp),
		// hedge positions are not handled: every position is the net one
		Side:             exchanges.PositionSideBoth,
		MarginType:       marginType,
		Size:             size,
		InitialMargin:    raw.Decimal(exchanges.KeyInitialMargin, decimal.Zero),
		Notional:         raw.Decimal(exchanges.KeyNotional, decimal.Zero),
		Leverage:         raw.Decimal(exchanges.KeyLeverage, decimal.NewFromInt(1)),
		UnrealizedPnL:    raw.Decimal(exchanges.KeyUnrealizedPnL, decimal.Zero),
		RealizedPnL:      firstDecimal(raw, info, realizedPnL, cumRealizedPnL),
		LiquidationPrice: raw.Decimal(exchanges.KeyLiquidationPrice, decimal.Zero),
		ClosingFee:       firstDecimal(raw, info, closingFee, closingFee),
		BankruptcyPrice:  firstDecimal(raw, info, bankruptcyPrice, bankruptcyPrice),
		EntryPrice:       raw.Decimal(exchanges.KeyEntryPrice, decimal.Zero),
		ContractType:     a.contracts.ContractType(symbol),
		Mode:             mode,
	}, nil
}

// firstDecimal reads key from the record, then infoKey from the native payload. Absent values are zero.
func firstDecimal(raw, info exchanges.Record, key, infoKey string) decimal.Decimal {
	if v := raw.NullDecimal(key); v.Valid {
		return v.Decimal
	}
	return info.Decimal(infoKey, decimal.Zero)
}

// pair converts an exchange id into a unified symbol. Unified symbols are kept.
func (a *Adapter) pair(symbol string) (string, error) {
	if strings.Contains(symbol, "/") {
		return symbol, nil
	}
	return a.symbols(symbol)
}
