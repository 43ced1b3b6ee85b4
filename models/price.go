package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CryptoPrice is never persisted.
type CryptoPrice struct {
	Base      string          `json:"base"`
	Quote     string          `json:"quote"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

type PricePoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
}
