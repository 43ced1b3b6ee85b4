package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"enenni_wallet_back/models"
	"enenni_wallet_back/pkg/apperr"
)

const bankAccountColumns = `id, company_id, user_id, account_holder, bank_name, account_number, iban,
        currency, bank_address, bank_country, is_active, created_at`

type BankAccountPostgres struct {
	db *sqlx.DB
}

func NewBankAccountPostgres(db *sqlx.DB) *BankAccountPostgres {
	return &BankAccountPostgres{db: db}
}

func (r *BankAccountPostgres) ListCompanyAccounts(ctx context.Context, currency string) ([]models.BankAccount, error) {
	accounts := []models.BankAccount{}
	query := `
        SELECT ` + bankAccountColumns + `
        FROM bank_accounts
        WHERE company_id IS NOT NULL AND ($1 = '' OR currency = $1)
        ORDER BY created_at ASC
    `
	if err := r.db.SelectContext(ctx, &accounts, query, currency); err != nil {
		return nil, apperr.Persistence("list company bank accounts", err)
	}
	return accounts, nil
}

func (r *BankAccountPostgres) CreateBankAccount(ctx context.Context, account models.BankAccount) (string, error) {
	id := uuid.NewString()
	query := `
        INSERT INTO bank_accounts (id, company_id, user_id, account_holder, bank_name, account_number, iban,
            currency, bank_address, bank_country, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	_, err := r.db.ExecContext(ctx, query,
		id,
		account.CompanyID,
		account.UserID,
		account.AccountHolder,
		account.BankName,
		account.AccountNumber,
		account.IBAN,
		account.Currency,
		account.BankAddress,
		account.BankCountry,
		account.IsActive,
	)
	if err != nil {
		return "", apperr.Persistence("create bank account", err)
	}
	return id, nil
}
