package bybit

import (
	"sync"

	"github.com/shopspring/decimal"

	"tentacles/internal/adapters/exchanges"
)

// FutureContract is the adapter's view of a derivatives pair configuration.
type FutureContract struct {
	Symbol       string
	ContractType exchanges.ContractType
	MarginType   exchanges.MarginType
	Leverage     decimal.Decimal
	PositionMode exchanges.PositionMode
}

// IsOneWay reports whether the account holds a single net position on the pair.
func (c FutureContract) IsOneWay() bool {
	return c.PositionMode != exchanges.PositionModeHedge
}

// Contracts is an instance-owned registry of future contracts by symbol.
type Contracts struct {
	mu        sync.RWMutex
	bySymbol  map[string]FutureContract
	defaultCT exchanges.ContractType
}

func NewContracts(market exchanges.MarketType) *Contracts {
	ct := exchanges.ContractLinearPerpetual
	if market == exchanges.MarketTypeInversePerp {
		ct = exchanges.ContractInversePerpetual
	}
	return &Contracts{
		bySymbol:  make(map[string]FutureContract),
		defaultCT: ct,
	}
}

func (c *Contracts) Get(symbol string) (FutureContract, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	contract, ok := c.bySymbol[symbol]
	return contract, ok
}

func (c *Contracts) Has(symbol string) bool {
	_, ok := c.Get(symbol)
	return ok
}

// Set registers or replaces a contract. Missing contract type and leverage get defaults.
func (c *Contracts) Set(contract FutureContract) {
	if contract.ContractType == "" {
		contract.ContractType = c.defaultCT
	}
	if contract.Leverage.IsZero() {
		contract.Leverage = decimal.NewFromInt(1)
	}
	if contract.PositionMode == "" {
		contract.PositionMode = exchanges.PositionModeOneWay
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bySymbol[contract.Symbol] = contract
}

// ContractType of a registered symbol, or the market default.
func (c *Contracts) ContractType(symbol string) exchanges.ContractType {
	if contract, ok := c.Get(symbol); ok {
		return contract.ContractType
	}
	return c.defaultCT
}

func (c *Contracts) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bySymbol)
}
