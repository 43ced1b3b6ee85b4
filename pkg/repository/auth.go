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

type AuthPostgres struct {
	db *sqlx.DB
}

func NewAuthPostgres(db *sqlx.DB) *AuthPostgres {
	return &AuthPostgres{db: db}
}

func (r *AuthPostgres) CreateUser(ctx context.Context, user models.User) (string, error) {
	id := uuid.NewString()
	query := `
        INSERT INTO users (id, email, name, password_hash)
        VALUES ($1, $2, $3, $4)
    `
	if _, err := r.db.ExecContext(ctx, query, id, user.Email, user.Name, user.PasswordHash); err != nil {
		return "", apperr.Persistence("create user", err)
	}
	return id, nil
}

func (r *AuthPostgres) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.getUser(ctx, `SELECT id, email, name, password_hash, created_at FROM users WHERE email = $1`, email)
}

func (r *AuthPostgres) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return r.getUser(ctx, `SELECT id, email, name, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (r *AuthPostgres) getUser(ctx context.Context, query string, arg string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return user, apperr.ErrNotFound
	}
	return user, apperr.Persistence("get user", err)
}
