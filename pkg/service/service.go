package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"enenni_wallet_back/models"
	"enenni_wallet_back/pkg/repository"
	"enenni_wallet_back/pkg/session"
)

type Authorization interface {
	Register(ctx context.Context, input models.RegisterInput) (models.User, error)
	Login(ctx context.Context, input models.LoginInput) (Session, error)
	// GetCurrentUser never fails: nil means unauthenticated.
	GetCurrentUser(ctx context.Context, token string) *models.User
	Logout(ctx context.Context, token string) models.ActionResult
}

type Wallet interface {
	GetWalletsByUser(ctx context.Context, userID string) []models.Wallet
	GetWalletByCurrency(ctx context.Context, userID string, currency models.Currency) *models.Wallet
	CreateWallet(ctx context.Context, userID string, input models.WalletInput) (models.Wallet, error)
	UpdateNickname(ctx context.Context, userID, walletID string, input models.NicknameInput) error
	DeleteWallet(ctx context.Context, userID, walletID string) error
	Dashboard(ctx context.Context, user *models.User) models.Dashboard
}

type BankAccount interface {
	CompanyAccounts(ctx context.Context, currency string) ([]models.BankAccount, error)
	EnenniAccounts(ctx context.Context) ([]models.BankAccount, error)
	CreateBankAccount(ctx context.Context, userID string, input models.BankAccountInput) (models.BankAccount, error)
}

// SessionManager is implemented by *session.Manager.
type SessionManager interface {
	Issue(user models.User) (string, time.Time, error)
	Parse(ctx context.Context, token string) (session.Claims, error)
	Revoke(ctx context.Context, claims session.Claims) error
}

// UserCache serves the signed-in user row through the query cache.
type UserCache interface {
	AuthUser(ctx context.Context, userID string) (models.User, error)
	InvalidateAuthUser(userID string)
}

type Service struct {
	Authorization
	Wallet
	BankAccount
}

func NewService(repos *repository.Repository, sessions SessionManager, users UserCache, log *logrus.Entry) *Service {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{
		Authorization: NewAuthService(repos.Authorization, sessions, users, log.WithField("component", "auth")),
		Wallet:        NewWalletService(repos.Wallet, log.WithField("component", "wallet")),
		BankAccount:   NewBankAccountService(repos.BankAccount, log.WithField("component", "bank_account")),
	}
}
