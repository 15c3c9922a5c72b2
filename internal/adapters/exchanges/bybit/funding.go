package bybit

import (
	"time"

	"github.com/shopspring/decimal"

	"tentacles/internal/adapters/exchanges"
)

// FundingInterval is Bybit's fixed funding period. The last funding time is never
// reported and is derived from the next one.
const FundingInterval = 8 * time.Hour

// ParseFundingRate normalizes a funding payload coming either from a ticker
// (everything under info) or from the funding endpoint (only the rate under info).
// It reports false when a ticker payload carries no info.
func (a *Adapter) ParseFundingRate(raw exchanges.Record, fromTicker bool) (exchanges.FundingInfo, bool) {
	info, hasInfo := raw.Info()
	if fromTicker {
		if !hasInfo {
			return exchanges.FundingInfo{}, false
		}
		next, last := fundingTimes(info)
		return exchanges.FundingInfo{
			Symbol:          raw.String(exchanges.KeySymbol),
			FundingRate:     info.NullDecimal(exchanges.KeyFundingRate),
			NextFundingTime: next,
			LastFundingTime: last,
			// not exposed in tickers
			PredictedFundingRate: decimal.NullDecimal{},
		}, true
	}

	next, last := fundingTimes(raw)
	funding := exchanges.FundingInfo{
		Symbol:               raw.String(exchanges.KeySymbol),
		NextFundingTime:      next,
		LastFundingTime:      last,
		PredictedFundingRate: raw.NullDecimal(exchanges.KeyPredictedFundingRate),
	}
	if hasInfo {
		funding.FundingRate = info.NullDecimal(exchanges.KeyFundingRate)
	}
	return funding, true
}

// fundingTimes reads the next funding time and derives the last one from it.
// A reported timestamp of 0 is the unix epoch, so last is 8h before it.
// Both are zero times only when the exchange does not report next at all.
func fundingTimes(rec exchanges.Record) (next, last time.Time) {
	raw := rec.NullDecimal(exchanges.KeyNextFundingTime)
	if !raw.Valid {
		return time.Time{}, time.Time{}
	}
	next = time.Unix(0, 0)
	if !raw.Decimal.IsZero() {
		next = exchanges.ParseTimestamp(raw.Decimal)
	}
	return next, next.Add(-FundingInterval)
}
