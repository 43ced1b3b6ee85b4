package service

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"enenni_wallet_back/models"
	"enenni_wallet_back/pkg/repository"
	"enenni_wallet_back/pkg/validation"
)

type BankAccountService struct {
	repos repository.BankAccount
	log   *logrus.Entry
}

func NewBankAccountService(repos repository.BankAccount, log *logrus.Entry) *BankAccountService {
	return &BankAccountService{
		repos: repos,
		log:   log,
	}
}

// CompanyAccounts lists the active accounts for currency, oldest first.
func (s *BankAccountService) CompanyAccounts(ctx context.Context, currency string) ([]models.BankAccount, error) {
	accounts, err := s.repos.ListCompanyAccounts(ctx, strings.ToUpper(strings.TrimSpace(currency)))
	if err != nil {
		return nil, err
	}
	return activeByCreation(accounts), nil
}

func (s *BankAccountService) EnenniAccounts(ctx context.Context) ([]models.BankAccount, error) {
	return s.CompanyAccounts(ctx, "")
}

func (s *BankAccountService) CreateBankAccount(ctx context.Context, userID string, input models.BankAccountInput) (models.BankAccount, error) {
	res := validation.BankAccount(input)
	if err := res.Err(); err != nil {
		return models.BankAccount{}, err
	}
	in := res.Value

	account := models.BankAccount{
		CompanyID:     in.CompanyID,
		AccountHolder: strings.TrimSpace(in.AccountHolder),
		BankName:      strings.TrimSpace(in.BankName),
		AccountNumber: optional(in.AccountNumber),
		IBAN:          optional(in.IBAN),
		Currency:      in.Currency,
		BankAddress:   strings.TrimSpace(in.BankAddress),
		BankCountry:   in.BankCountry,
		IsActive:      true,
	}
	if account.CompanyID == nil {
		account.UserID = &userID
	}

	id, err := s.repos.CreateBankAccount(ctx, account)
	if err != nil {
		return models.BankAccount{}, err
	}
	account.ID = id
	s.log.WithFields(logrus.Fields{
		"bank_account_id": id,
		"currency":        account.Currency,
	}).Info("bank account created")
	return account, nil
}

func activeByCreation(accounts []models.BankAccount) []models.BankAccount {
	active := make([]models.BankAccount, 0, len(accounts))
	for _, a := range accounts {
		if a.IsActive {
			active = append(active, a)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	return active
}
