package bybitapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"tentacles/internal/adapters/exchanges"
	"tentacles/internal/adapters/exchanges/ratelimit"
	"tentacles/pkg/errors"
)

type instrument struct {
	Symbol       string `json:"symbol"`
	BaseCoin     string `json:"baseCoin"`
	QuoteCoin    string `json:"quoteCoin"`
	SettleCoin   string `json:"settleCoin"`
	ContractType string `json:"contractType"`
	Status       string `json:"status"`
}

// LoadMarkets fetches the instrument catalogue of the configured category.
func (c *Client) LoadMarkets(ctx context.Context) error {
	markets := make(map[string]exchanges.Market)
	cursor := ""
	for {
		var res struct {
			List           []instrument `json:"list"`
			NextPageCursor string       `json:"nextPageCursor"`
		}
		query := url.Values{
			"category": []string{c.category()},
			"limit":    []string{"1000"},
		}
		if cursor != "" {
			query.Set("cursor", cursor)
		}
		if _, err := c.call(ctx, request{
			method:   http.MethodGet,
			path:     "/v5/market/instruments-info",
			query:    query,
			limiters: []string{ratelimit.KeyGlobal},
		}, &res); err != nil {
			return errors.Wrap(err, "load markets")
		}
		for _, item := range res.List {
			m := c.toMarket(item)
			markets[m.Symbol] = m
		}
		if res.NextPageCursor == "" || len(res.List) == 0 || res.NextPageCursor == cursor {
			break
		}
		cursor = res.NextPageCursor
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.markets = markets
	c.marketID = make(map[string]string, len(markets))
	for symbol, m := range markets {
		c.marketID[m.ID] = symbol
	}
	c.log.Infow("Markets loaded", "count", len(markets))
	return nil
}

func (c *Client) toMarket(item instrument) exchanges.Market {
	m := exchanges.Market{
		ID:     item.Symbol,
		Base:   item.BaseCoin,
		Quote:  item.QuoteCoin,
		Settle: item.SettleCoin,
		Type:   c.cfg.Market,
	}
	switch {
	case c.cfg.Market == exchanges.MarketTypeSpot:
		m.Symbol = m.Base + "/" + m.Quote
	default:
		m.Linear = !strings.HasPrefix(item.ContractType, "Inverse")
		m.Symbol = m.Base + "/" + m.Quote + ":" + m.Settle
	}
	return m
}

// Market returns the catalogue entry of a unified symbol.
func (c *Client) Market(symbol string) (exchanges.Market, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.markets[symbol]
	return m, ok
}

// MarketID converts a unified symbol (BTC/USDT, BTC/USDT:USDT) into the exchange id.
// Symbols missing from the catalogue are converted syntactically.
func (c *Client) MarketID(symbol string) (string, error) {
	if symbol == "" {
		return "", errors.Wrap(exchanges.ErrInvalidRequest, "empty symbol")
	}
	if m, ok := c.Market(symbol); ok {
		return m.ID, nil
	}
	base := symbol
	if idx := strings.Index(base, ":"); idx >= 0 {
		base = base[:idx]
	}
	return strings.ToUpper(strings.ReplaceAll(base, "/", "")), nil
}

// SymbolFromMarketID converts an exchange id back into the unified symbol.
func (c *Client) SymbolFromMarketID(id string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if symbol, ok := c.marketID[id]; ok {
		return symbol, nil
	}
	return "", exchanges.MissingKey(id)
}

// unifiedSymbol is SymbolFromMarketID falling back to the raw id.
func (c *Client) unifiedSymbol(id string) string {
	if symbol, err := c.SymbolFromMarketID(id); err == nil {
		return symbol
	}
	return id
}
