package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "Completed"
	TransactionPending   TransactionStatus = "Pending"
	TransactionFailed    TransactionStatus = "Failed"
)

// Final statuses are immutable.
func (s TransactionStatus) Final() bool {
	return s == TransactionCompleted || s == TransactionFailed
}

type Transaction struct {
	ID          string            `db:"id" json:"id"`
	WalletID    string            `db:"wallet_id" json:"walletId"`
	Amount      decimal.Decimal   `db:"amount" json:"amount"`
	Currency    Currency          `db:"currency" json:"currency"`
	Timestamp   time.Time         `db:"timestamp" json:"timestamp"`
	Hash        string            `db:"hash" json:"hash"`
	Destination string            `db:"destination" json:"destination"`
	Status      TransactionStatus `db:"status" json:"status"`
}
