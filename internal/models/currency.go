package models

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Currency is reference data: everything except the USD rate is fixed.
type Currency struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Precision int32           `json:"precision"`
	USDRate   decimal.Decimal `json:"usd_rate"`
}

// currencyMu guards the registry: the engine reads USD rates on every
// wager while a rate feed may refresh them.
var currencyMu sync.RWMutex

var currencies = map[string]Currency{
	"USD": {Symbol: "USD", Name: "US Dollar", Precision: 2, USDRate: decimal.NewFromInt(1)},
	"BTC": {Symbol: "BTC", Name: "Bitcoin", Precision: 8, USDRate: decimal.NewFromInt(97000)},
	"ETH": {Symbol: "ETH", Name: "Ethereum", Precision: 6, USDRate: decimal.NewFromInt(3400)},
	"LTC": {Symbol: "LTC", Name: "Litecoin", Precision: 6, USDRate: decimal.NewFromInt(105)},
}

// GetCurrency returns a snapshot of the currency record.
func GetCurrency(symbol string) (Currency, bool) {
	currencyMu.RLock()
	defer currencyMu.RUnlock()
	c, ok := currencies[symbol]
	return c, ok
}

func SupportedCurrencies() []string {
	currencyMu.RLock()
	defer currencyMu.RUnlock()
	out := make([]string, 0, len(currencies))
	for sym := range currencies {
		out = append(out, sym)
	}
	return out
}

// UpdateUSDRate refreshes the exchange rate for a currency. Rates come
// from an external feed; the engine only reads them for display.
func UpdateUSDRate(symbol string, rate decimal.Decimal) bool {
	if rate.Sign() <= 0 {
		return false
	}
	currencyMu.Lock()
	defer currencyMu.Unlock()
	c, ok := currencies[symbol]
	if !ok {
		return false
	}
	c.USDRate = rate
	currencies[symbol] = c
	return true
}
