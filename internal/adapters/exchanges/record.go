package exchanges

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Unified record keys written by the connector.
const (
	KeyID                   = "id"
	KeyClientOrderID        = "clientOrderId"
	KeyOrderID              = "order"
	KeySymbol               = "symbol"
	KeySide                 = "side"
	KeyType                 = "type"
	KeyStatus               = "status"
	KeyAmount               = "amount"
	KeyPrice                = "price"
	KeyStopPrice            = "stopPrice"
	KeyFilled               = "filled"
	KeyCost                 = "cost"
	KeyFee                  = "fee"
	KeyTimestamp            = "timestamp"
	KeyInfo                 = "info"
	KeyContracts            = "contracts"
	KeyEntryPrice           = "entryPrice"
	KeyLiquidationPrice     = "liquidationPrice"
	KeyUnrealizedPnL        = "unrealizedPnl"
	KeyLeverage             = "leverage"
	KeyMarginMode           = "marginMode"
	KeyInitialMargin        = "initialMargin"
	KeyNotional             = "notional"
	KeyClose                = "close"
	KeyBid                  = "bid"
	KeyAsk                  = "ask"
	KeyHigh                 = "high"
	KeyLow                  = "low"
	KeyBaseVolume           = "baseVolume"
	KeyFundingRate          = "fundingRate"
	KeyNextFundingTime      = "nextFundingTime"
	KeyPredictedFundingRate = "predictedFundingRate"
	KeyMarkPrice            = "markPrice"
)

// Params are extra request parameters forwarded verbatim to the exchange.
type Params map[string]any

// Clone returns a shallow copy so callers never mutate the caller's map.
func (p Params) Clone() Params {
	out := make(Params, len(p)+2)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Has reports whether key is set.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Record is a raw exchange payload: unified keys plus the native payload under "info".
// Records are treated as immutable once received.
type Record map[string]any

// Has reports whether key is present with a non-nil value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// Require returns the value under key or a key lookup failure.
func (r Record) Require(key string) (any, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, MissingKey(key)
	}
	return v, nil
}

// RequireString returns the string form of a mandatory key.
func (r Record) RequireString(key string) (string, error) {
	if _, err := r.Require(key); err != nil {
		return "", err
	}
	return r.String(key), nil
}

// String returns the value as a string. Absent values return "". Numbers are formatted without exponent.
func (r Record) String(key string) string {
	return stringify(r[key])
}

// Decimal parses the value as an exact decimal. Absent or unparsable values return def.
func (r Record) Decimal(key string, def decimal.Decimal) decimal.Decimal {
	d, ok := toDecimal(r[key])
	if !ok {
		return def
	}
	return d
}

// NullDecimal parses the value. Absent or unparsable values are invalid (not-a-number).
func (r Record) NullDecimal(key string) decimal.NullDecimal {
	d, ok := toDecimal(r[key])
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}

// Bool reads booleans sent either as JSON booleans or as "true"/"1". Absent values are false.
func (r Record) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case nil:
		return false
	default:
		b, err := strconv.ParseBool(stringify(v))
		return err == nil && b
	}
}

// Time reads a unix timestamp in seconds or milliseconds. Absent values return the zero time.
func (r Record) Time(key string) time.Time {
	d, ok := toDecimal(r[key])
	if !ok {
		return time.Time{}
	}
	return ParseTimestamp(d)
}

// Sub returns the nested record under key.
func (r Record) Sub(key string) (Record, bool) {
	switch v := r[key].(type) {
	case Record:
		return v, true
	case map[string]any:
		return Record(v), true
	}
	return nil, false
}

// Info returns the exchange-native payload.
func (r Record) Info() (Record, bool) {
	return r.Sub(KeyInfo)
}

// millisecondThreshold separates second and millisecond timestamps (year 2001 in ms).
var millisecondThreshold = decimal.New(1, 12)

// ParseTimestamp converts a unix timestamp to time. Values from 1e12 up are milliseconds.
func ParseTimestamp(value decimal.Decimal) time.Time {
	if value.IsZero() {
		return time.Time{}
	}
	if value.Abs().GreaterThanOrEqual(millisecondThreshold) {
		return time.UnixMilli(value.IntPart())
	}
	sec := value.IntPart()
	nanos := value.Sub(decimal.NewFromInt(sec)).Shift(9).IntPart()
	return time.Unix(sec, nanos)
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return n, true
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	default:
		s := stringify(v)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	case decimal.Decimal:
		return s.String()
	default:
		return ""
	}
}
