package bybit

import (
	"sync"

	"github.com/shopspring/decimal"

	"tentacles/internal/adapters/exchanges"
)

// QuantityBook remembers the base quantity of spot market buys.
// Bybit takes spot market buy quantities in quote currency, so the quote amount
// sent at creation is mapped back to the requested base amount, then to the
// order id once the order is first seen. Entries live as long as the adapter.
type QuantityBook struct {
	mu       sync.Mutex
	byAmount map[string]decimal.Decimal
	byID     map[string]decimal.Decimal
}

func NewQuantityBook() *QuantityBook {
	return &QuantityBook{
		byAmount: make(map[string]decimal.Decimal),
		byID:     make(map[string]decimal.Decimal),
	}
}

// Remember records the base amount of a quote amount about to be submitted.
func (b *QuantityBook) Remember(quote, base decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byAmount[amountKey(quote)] = base
}

// Resolve returns the base amount of an order, by submitted quote amount first
// and by order id second. A hit by amount is copied to the id index.
func (b *QuantityBook) Resolve(submitted decimal.NullDecimal, orderID string) (decimal.Decimal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if submitted.Valid {
		if base, ok := b.byAmount[amountKey(submitted.Decimal)]; ok {
			b.byID[orderID] = base
			return base, nil
		}
	}
	if base, ok := b.byID[orderID]; ok {
		return base, nil
	}
	return decimal.Zero, exchanges.MissingKey(orderID)
}

// Len is the number of entries over both indexes.
func (b *QuantityBook) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.byAmount) + len(b.byID)
}

// amountKey makes 300 and 300.00 the same entry.
func amountKey(d decimal.Decimal) string {
	return d.String()
}
