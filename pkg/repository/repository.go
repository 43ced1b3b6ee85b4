package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"enenni_wallet_back/models"
)

type Authorization interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

type Wallet interface {
	GetWalletsByUser(ctx context.Context, userID string) ([]models.Wallet, error)
	// GetWalletByCurrency loads the wallet with its transactions, newest first.
	GetWalletByCurrency(ctx context.Context, userID string, currency models.Currency) (models.Wallet, error)
	CreateWallet(ctx context.Context, wallet models.Wallet) (string, error)
	UpdateNickname(ctx context.Context, userID, walletID string, nickname *string) error
	DeleteWallet(ctx context.Context, userID, walletID string) error
	GetRecentTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error)
	GetBalances(ctx context.Context, userID string) ([]models.WalletBalance, error)
}

type BankAccount interface {
	// ListCompanyAccounts returns company accounts in creation order; empty currency means all.
	ListCompanyAccounts(ctx context.Context, currency string) ([]models.BankAccount, error)
	CreateBankAccount(ctx context.Context, account models.BankAccount) (string, error)
}

type Repository struct {
	Authorization
	Wallet
	BankAccount
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		Authorization: NewAuthPostgres(db),
		Wallet:        NewWalletPostgres(db),
		BankAccount:   NewBankAccountPostgres(db),
	}
}
