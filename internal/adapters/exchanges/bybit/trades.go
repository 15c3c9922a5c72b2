package bybit

import (
	"github.com/shopspring/decimal"

	"tentacles/internal/adapters/exchanges"
)

const (
	infoExecType  = "execType"
	execTypeTrade = "Trade"
)

// FixTrades normalizes account executions. On derivatives everything that is not
// a trade execution (funding settlements, liquidations) is dropped.
func (a *Adapter) FixTrades(raw []exchanges.Record) []exchanges.Trade {
	trades := make([]exchanges.Trade, 0, len(raw))
	for _, r := range raw {
		info, _ := r.Info()
		if a.market.IsFuture() && info.String(infoExecType) != execTypeTrade {
			continue
		}
		trades = append(trades, exchanges.Trade{
			ID:        r.String(exchanges.KeyID),
			OrderID:   r.String(exchanges.KeyOrderID),
			Symbol:    r.String(exchanges.KeySymbol),
			Side:      exchanges.OrderSide(r.String(exchanges.KeySide)),
			Price:     r.Decimal(exchanges.KeyPrice, decimal.Zero),
			Amount:    r.Decimal(exchanges.KeyAmount, decimal.Zero),
			Cost:      r.Decimal(exchanges.KeyCost, decimal.Zero),
			Fee:       r.Decimal(exchanges.KeyFee, decimal.Zero),
			Timestamp: r.Time(exchanges.KeyTimestamp),
			Info:      info,
		})
	}
	return trades
}
