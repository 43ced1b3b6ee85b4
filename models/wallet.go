package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type WalletType string

const (
	WalletFirstParty WalletType = "First-party"
	WalletThirdParty WalletType = "Third-party"
)

func (t WalletType) Valid() bool {
	return t == WalletFirstParty || t == WalletThirdParty
}

type Wallet struct {
	ID           string        `db:"id" json:"id"`
	UserID       string        `db:"user_id" json:"userId"`
	Chain        string        `db:"chain" json:"chain"`
	Address      string        `db:"address" json:"address"`
	Nickname     *string       `db:"nickname" json:"nickname,omitempty"`
	Type         WalletType    `db:"type" json:"type"`
	Currency     Currency      `db:"currency" json:"currency"`
	CreatedAt    time.Time     `db:"created_at" json:"createdAt"`
	Transactions []Transaction `db:"-" json:"transactions,omitempty"`
}

type WalletInput struct {
	Chain    string `json:"chain" validate:"required,max=64"`
	Address  string `json:"address" validate:"required,max=128"`
	Nickname string `json:"nickname" validate:"omitempty,max=64"`
	Type     string `json:"type" validate:"required,wallet_type"`
	Currency string `json:"currency" validate:"required,currency"`
}

type NicknameInput struct {
	Nickname string `json:"nickname" validate:"omitempty,max=64"`
}

type WalletBalance struct {
	WalletID string          `db:"wallet_id" json:"walletId"`
	Currency Currency        `db:"currency" json:"currency"`
	Amount   decimal.Decimal `db:"amount" json:"amount"`
}

// Dashboard is the view model of the dashboard page.
type Dashboard struct {
	User               *User           `json:"user"`
	Wallets            []Wallet        `json:"wallets"`
	Balances           []WalletBalance `json:"balances"`
	RecentTransactions []Transaction   `json:"recentTransactions"`
}
