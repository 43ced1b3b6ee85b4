package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"enenni_wallet_back/models"
	"enenni_wallet_back/pkg/apperr"
)

const walletColumns = `id, user_id, chain, address, nickname, type, currency, created_at`

type WalletPostgres struct {
	db *sqlx.DB
}

func NewWalletPostgres(db *sqlx.DB) *WalletPostgres {
	return &WalletPostgres{db: db}
}

func (r *WalletPostgres) GetWalletsByUser(ctx context.Context, userID string) ([]models.Wallet, error) {
	wallets := []models.Wallet{}
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &wallets, query, userID); err != nil {
		return nil, apperr.Persistence("get wallets by user", err)
	}
	return wallets, nil
}

func (r *WalletPostgres) GetWalletByCurrency(ctx context.Context, userID string, currency models.Currency) (models.Wallet, error) {
	var wallet models.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND currency = $2 ORDER BY created_at ASC LIMIT 1`
	err := r.db.GetContext(ctx, &wallet, query, userID, currency)
	if errors.Is(err, sql.ErrNoRows) {
		return wallet, apperr.ErrNotFound
	}
	if err != nil {
		return wallet, apperr.Persistence("get wallet by currency", err)
	}

	wallet.Transactions = []models.Transaction{}
	txQuery := `
        SELECT id, wallet_id, amount, currency, timestamp, hash, destination, status
        FROM transactions
        WHERE wallet_id = $1
        ORDER BY timestamp DESC
    `
	if err := r.db.SelectContext(ctx, &wallet.Transactions, txQuery, wallet.ID); err != nil {
		return wallet, apperr.Persistence("get wallet transactions", err)
	}
	return wallet, nil
}

func (r *WalletPostgres) CreateWallet(ctx context.Context, wallet models.Wallet) (string, error) {
	id := uuid.NewString()
	query := `
        INSERT INTO wallets (id, user_id, chain, address, nickname, type, currency)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := r.db.ExecContext(ctx, query,
		id,
		wallet.UserID,
		wallet.Chain,
		wallet.Address,
		wallet.Nickname,
		wallet.Type,
		wallet.Currency,
	)
	if err != nil {
		return "", apperr.Persistence("create wallet", err)
	}
	return id, nil
}

// UpdateNickname and DeleteWallet only touch rows owned by userID.
func (r *WalletPostgres) UpdateNickname(ctx context.Context, userID, walletID string, nickname *string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE wallets SET nickname = $1 WHERE id = $2 AND user_id = $3`, nickname, walletID, userID)
	return affectedOne("update wallet nickname", res, err)
}

func (r *WalletPostgres) DeleteWallet(ctx context.Context, userID, walletID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM wallets WHERE id = $1 AND user_id = $2`, walletID, userID)
	return affectedOne("delete wallet", res, err)
}

func (r *WalletPostgres) GetRecentTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	txs := []models.Transaction{}
	query := `
        SELECT t.id, t.wallet_id, t.amount, t.currency, t.timestamp, t.hash, t.destination, t.status
        FROM transactions t
        JOIN wallets w ON w.id = t.wallet_id
        WHERE w.user_id = $1
        ORDER BY t.timestamp DESC
        LIMIT $2
    `
	if err := r.db.SelectContext(ctx, &txs, query, userID, limit); err != nil {
		return nil, apperr.Persistence("get recent transactions", err)
	}
	return txs, nil
}

func (r *WalletPostgres) GetBalances(ctx context.Context, userID string) ([]models.WalletBalance, error) {
	balances := []models.WalletBalance{}
	query := `
        SELECT w.id AS wallet_id, w.currency, COALESCE(SUM(t.amount) FILTER (WHERE t.status = 'Completed'), 0) AS amount
        FROM wallets w
        LEFT JOIN transactions t ON t.wallet_id = w.id
        WHERE w.user_id = $1
        GROUP BY w.id, w.currency
        ORDER BY w.currency
    `
	if err := r.db.SelectContext(ctx, &balances, query, userID); err != nil {
		return nil, apperr.Persistence("get balances", err)
	}
	return balances, nil
}

func affectedOne(op string, res sql.Result, err error) error {
	if err != nil {
		return apperr.Persistence(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Persistence(op, err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
