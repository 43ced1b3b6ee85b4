package models

import "strings"

type Currency string

const (
	CurrencyBTC  Currency = "BTC"
	CurrencyETH  Currency = "ETH"
	CurrencyUSDT Currency = "USDT"
	CurrencyUSDC Currency = "USDC"
)

var Currencies = []Currency{CurrencyBTC, CurrencyETH, CurrencyUSDT, CurrencyUSDC}

// ParseCurrency accepts any casing, returns false for codes outside the enumerated set.
func ParseCurrency(s string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	return c, c.Valid()
}

func (c Currency) Valid() bool {
	switch c {
	case CurrencyBTC, CurrencyETH, CurrencyUSDT, CurrencyUSDC:
		return true
	}
	return false
}

// EVM reports whether addresses for the currency live on an EVM chain.
func (c Currency) EVM() bool {
	return c == CurrencyETH || c == CurrencyUSDT || c == CurrencyUSDC
}

func (c Currency) String() string { return string(c) }
