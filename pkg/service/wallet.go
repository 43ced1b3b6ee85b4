package service

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"enenni_wallet_back/models"
	"enenni_wallet_back/pkg/apperr"
	"enenni_wallet_back/pkg/repository"
	"enenni_wallet_back/pkg/validation"
)

const recentTransactions = 10

type WalletService struct {
	repos repository.Wallet
	log   *logrus.Entry
}

func NewWalletService(repos repository.Wallet, log *logrus.Entry) *WalletService {
	return &WalletService{
		repos: repos,
		log:   log,
	}
}

// GetWalletsByUser degrades to an empty list when the database fails; the cause is logged.
func (s *WalletService) GetWalletsByUser(ctx context.Context, userID string) []models.Wallet {
	wallets, err := s.repos.GetWalletsByUser(ctx, userID)
	if err != nil {
		s.log.WithField("user_id", userID).Errorf("get wallets: %s", err)
		return []models.Wallet{}
	}
	if wallets == nil {
		return []models.Wallet{}
	}
	return wallets
}

// GetWalletByCurrency returns nil when the wallet does not exist or cannot be read.
func (s *WalletService) GetWalletByCurrency(ctx context.Context, userID string, currency models.Currency) *models.Wallet {
	w, err := s.repos.GetWalletByCurrency(ctx, userID, currency)
	if err != nil {
		if !apperr.IsNotFound(err) {
			s.log.WithFields(logrus.Fields{
				"user_id":  userID,
				"currency": currency,
			}).Errorf("get wallet: %s", err)
		}
		return nil
	}
	sort.SliceStable(w.Transactions, func(i, j int) bool {
		return w.Transactions[i].Timestamp.After(w.Transactions[j].Timestamp)
	})
	return &w
}

func (s *WalletService) CreateWallet(ctx context.Context, userID string, input models.WalletInput) (models.Wallet, error) {
	res := validation.Wallet(input)
	if err := res.Err(); err != nil {
		return models.Wallet{}, err
	}
	in := res.Value

	w := models.Wallet{
		UserID:   userID,
		Chain:    in.Chain,
		Address:  in.Address,
		Nickname: optional(in.Nickname),
		Type:     models.WalletType(in.Type),
		Currency: models.Currency(in.Currency),
	}
	id, err := s.repos.CreateWallet(ctx, w)
	if err != nil {
		return models.Wallet{}, err
	}
	w.ID = id
	return w, nil
}

func (s *WalletService) UpdateNickname(ctx context.Context, userID, walletID string, input models.NicknameInput) error {
	res := validation.Struct(input)
	if err := res.Err(); err != nil {
		return err
	}
	return s.repos.UpdateNickname(ctx, userID, walletID, optional(res.Value.Nickname))
}

func (s *WalletService) DeleteWallet(ctx context.Context, userID, walletID string) error {
	return s.repos.DeleteWallet(ctx, userID, walletID)
}

// Dashboard collects the dashboard view. Each part degrades to empty on a database failure.
func (s *WalletService) Dashboard(ctx context.Context, user *models.User) models.Dashboard {
	d := models.Dashboard{
		User:               user,
		Balances:           []models.WalletBalance{},
		RecentTransactions: []models.Transaction{},
	}
	if user == nil {
		d.Wallets = []models.Wallet{}
		return d
	}
	log := s.log.WithField("user_id", user.ID)

	d.Wallets = s.GetWalletsByUser(ctx, user.ID)
	if balances, err := s.repos.GetBalances(ctx, user.ID); err != nil {
		log.Errorf("get balances: %s", err)
	} else if balances != nil {
		d.Balances = balances
	}
	if txs, err := s.repos.GetRecentTransactions(ctx, user.ID, recentTransactions); err != nil {
		log.Errorf("get recent transactions: %s", err)
	} else if txs != nil {
		d.RecentTransactions = txs
	}
	return d
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
