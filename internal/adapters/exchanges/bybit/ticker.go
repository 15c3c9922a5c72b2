package bybit

import (
	"time"

	"github.com/shopspring/decimal"

	"tentacles/internal/adapters/exchanges"
)

// FixTicker normalizes a ticker, stamping it with the connector clock.
func (a *Adapter) FixTicker(raw exchanges.Record) (*exchanges.Ticker, error) {
	symbol, err := raw.RequireString(exchanges.KeySymbol)
	if err != nil {
		return nil, err
	}
	info, _ := raw.Info()
	return &exchanges.Ticker{
		Symbol:    symbol,
		Close:     raw.Decimal(exchanges.KeyClose, decimal.Zero),
		Bid:       raw.Decimal(exchanges.KeyBid, decimal.Zero),
		Ask:       raw.Decimal(exchanges.KeyAsk, decimal.Zero),
		High:      raw.Decimal(exchanges.KeyHigh, decimal.Zero),
		Low:       raw.Decimal(exchanges.KeyLow, decimal.Zero),
		Volume:    raw.Decimal(exchanges.KeyBaseVolume, decimal.Zero),
		Timestamp: time.UnixMilli(a.clock()),
		Info:      info,
	}, nil
}

// ParseMarkPrice reads info.markPrice from tickers, falling back to the close price.
func (a *Adapter) ParseMarkPrice(raw exchanges.Record, fromTicker bool) (decimal.Decimal, error) {
	if fromTicker {
		if info, ok := raw.Info(); ok {
			if mark := info.NullDecimal(exchanges.KeyMarkPrice); mark.Valid {
				return mark.Decimal, nil
			}
		}
	}
	closePrice := raw.NullDecimal(exchanges.KeyClose)
	if !closePrice.Valid {
		return decimal.Zero, exchanges.MissingKey(exchanges.KeyClose)
	}
	return closePrice.Decimal, nil
}
