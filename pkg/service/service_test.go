package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enenni_wallet_back/models"
	"enenni_wallet_back/pkg/apperr"
	"enenni_wallet_back/pkg/session"
)

type mockWalletRepo struct {
	getWalletsByUser      func(ctx context.Context, userID string) ([]models.Wallet, error)
	getWalletByCurrency   func(ctx context.Context, userID string, currency models.Currency) (models.Wallet, error)
	createWallet          func(ctx context.Context, wallet models.Wallet) (string, error)
	updateNickname        func(ctx context.Context, userID, walletID string, nickname *string) error
	deleteWallet          func(ctx context.Context, userID, walletID string) error
	getRecentTransactions func(ctx context.Context, userID string, limit int) ([]models.Transaction, error)
	getBalances           func(ctx context.Context, userID string) ([]models.WalletBalance, error)
}

func (m *mockWalletRepo) GetWalletsByUser(ctx context.Context, userID string) ([]models.Wallet, error) {
	return m.getWalletsByUser(ctx, userID)
}

func (m *mockWalletRepo) GetWalletByCurrency(ctx context.Context, userID string, currency models.Currency) (models.Wallet, error) {
	return m.getWalletByCurrency(ctx, userID, currency)
}

func (m *mockWalletRepo) CreateWallet(ctx context.Context, wallet models.Wallet) (string, error) {
	return m.createWallet(ctx, wallet)
}

func (m *mockWalletRepo) UpdateNickname(ctx context.Context, userID, walletID string, nickname *string) error {
	return m.updateNickname(ctx, userID, walletID, nickname)
}

func (m *mockWalletRepo) DeleteWallet(ctx context.Context, userID, walletID string) error {
	return m.deleteWallet(ctx, userID, walletID)
}

func (m *mockWalletRepo) GetRecentTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	return m.getRecentTransactions(ctx, userID, limit)
}

func (m *mockWalletRepo) GetBalances(ctx context.Context, userID string) ([]models.WalletBalance, error) {
	return m.getBalances(ctx, userID)
}

type mockBankRepo struct {
	list   func(ctx context.Context, currency string) ([]models.BankAccount, error)
	create func(ctx context.Context, account models.BankAccount) (string, error)
}

func (m *mockBankRepo) ListCompanyAccounts(ctx context.Context, currency string) ([]models.BankAccount, error) {
	return m.list(ctx, currency)
}

func (m *mockBankRepo) CreateBankAccount(ctx context.Context, account models.BankAccount) (string, error) {
	return m.create(ctx, account)
}

// memoryUsers is an in-memory repository.Authorization.
type memoryUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]models.User)}
}

func (m *memoryUsers) CreateUser(ctx context.Context, user models.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.ID = "u-" + user.Email
	m.users[user.ID] = user
	return user.ID, nil
}

func (m *memoryUsers) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, apperr.ErrNotFound
}

func (m *memoryUsers) GetUserByID(ctx context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, apperr.ErrNotFound
	}
	return u, nil
}

func newTestLogger() (*logrus.Entry, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return logrus.NewEntry(logger), hook
}

func TestGetWalletsByUserSwallowsPersistenceErrors(t *testing.T) {
	log, hook := newTestLogger()
	repo := &mockWalletRepo{getWalletsByUser: func(ctx context.Context, userID string) ([]models.Wallet, error) {
		return nil, apperr.Persistence("get wallets", errors.New(`pq: relation "wallets" does not exist`))
	}}
	s := NewWalletService(repo, log)

	wallets := s.GetWalletsByUser(context.Background(), "user-404")
	require.NotNil(t, wallets)
	assert.Empty(t, wallets)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "user-404", entry.Data["user_id"])
	assert.Contains(t, entry.Message, `relation "wallets" does not exist`)
}

func TestGetWalletsByUserEmptyStore(t *testing.T) {
	log, _ := newTestLogger()
	repo := &mockWalletRepo{getWalletsByUser: func(ctx context.Context, userID string) ([]models.Wallet, error) {
		return nil, nil
	}}
	wallets := NewWalletService(repo, log).GetWalletsByUser(context.Background(), "user-404")
	require.NotNil(t, wallets)
	assert.Empty(t, wallets)
}

func TestGetWalletByCurrency(t *testing.T) {
	now := time.Now()
	log, hook := newTestLogger()
	repo := &mockWalletRepo{getWalletByCurrency: func(ctx context.Context, userID string, currency models.Currency) (models.Wallet, error) {
		switch userID {
		case "missing":
			return models.Wallet{}, apperr.ErrNotFound
		case "broken":
			return models.Wallet{}, apperr.Persistence("get wallet", errors.New("connection reset"))
		}
		return models.Wallet{ID: "w-1", Currency: currency, Transactions: []models.Transaction{
			{ID: "t-old", Timestamp: now.Add(-time.Hour)},
			{ID: "t-new", Timestamp: now},
			{ID: "t-mid", Timestamp: now.Add(-time.Minute)},
		}}, nil
	}}
	s := NewWalletService(repo, log)

	w := s.GetWalletByCurrency(context.Background(), "u-1", models.CurrencyBTC)
	require.NotNil(t, w)
	ids := []string{w.Transactions[0].ID, w.Transactions[1].ID, w.Transactions[2].ID}
	assert.Equal(t, []string{"t-new", "t-mid", "t-old"}, ids)

	assert.Nil(t, s.GetWalletByCurrency(context.Background(), "missing", models.CurrencyBTC))
	assert.Empty(t, hook.AllEntries())

	assert.Nil(t, s.GetWalletByCurrency(context.Background(), "broken", models.CurrencyBTC))
	require.Len(t, hook.AllEntries(), 1)
}

func TestCreateWallet(t *testing.T) {
	log, _ := newTestLogger()
	var saved models.Wallet
	repo := &mockWalletRepo{createWallet: func(ctx context.Context, wallet models.Wallet) (string, error) {
		saved = wallet
		return "w-42", nil
	}}
	s := NewWalletService(repo, log)

	w, err := s.CreateWallet(context.Background(), "u-1", models.WalletInput{
		Chain:    "Ethereum",
		Address:  " 0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed ",
		Type:     "First-party",
		Currency: "eth",
	})
	require.NoError(t, err)
	assert.Equal(t, "w-42", w.ID)
	assert.Equal(t, "u-1", saved.UserID)
	assert.Equal(t, models.CurrencyETH, saved.Currency)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", saved.Address)
	assert.Nil(t, saved.Nickname)
}

func TestCreateWalletRejectsInvalidInput(t *testing.T) {
	log, _ := newTestLogger()
	repo := &mockWalletRepo{createWallet: func(ctx context.Context, wallet models.Wallet) (string, error) {
		t.Fatal("repository must not be called for invalid input")
		return "", nil
	}}
	s := NewWalletService(repo, log)

	_, err := s.CreateWallet(context.Background(), "u-1", models.WalletInput{
		Chain:    "Ethereum",
		Address:  "0x123",
		Type:     "Custodial",
		Currency: "DOGE",
	})
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))

	fields := map[string]bool{}
	for _, f := range apperr.Fields(err) {
		fields[f.Field] = true
	}
	assert.True(t, fields["type"])
	assert.True(t, fields["currency"])
}

func TestUpdateNicknameClearsEmpty(t *testing.T) {
	log, _ := newTestLogger()
	var got *string
	repo := &mockWalletRepo{updateNickname: func(ctx context.Context, userID, walletID string, nickname *string) error {
		got = nickname
		if walletID != "w-1" {
			return apperr.ErrNotFound
		}
		return nil
	}}
	s := NewWalletService(repo, log)

	require.NoError(t, s.UpdateNickname(context.Background(), "u-1", "w-1", models.NicknameInput{}))
	assert.Nil(t, got)

	require.NoError(t, s.UpdateNickname(context.Background(), "u-1", "w-1", models.NicknameInput{Nickname: "Cold storage"}))
	require.NotNil(t, got)
	assert.Equal(t, "Cold storage", *got)

	err := s.UpdateNickname(context.Background(), "u-1", "w-2", models.NicknameInput{Nickname: "x"})
	assert.True(t, apperr.IsNotFound(err))
}

func TestDashboardDegradesPerSection(t *testing.T) {
	log, hook := newTestLogger()
	repo := &mockWalletRepo{
		getWalletsByUser: func(ctx context.Context, userID string) ([]models.Wallet, error) {
			return []models.Wallet{{ID: "w-1"}}, nil
		},
		getBalances: func(ctx context.Context, userID string) ([]models.WalletBalance, error) {
			return nil, apperr.Persistence("get balances", errors.New("timeout"))
		},
		getRecentTransactions: func(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
			assert.Equal(t, recentTransactions, limit)
			return []models.Transaction{{ID: "t-1", Amount: decimal.NewFromInt(5)}}, nil
		},
	}
	d := NewWalletService(repo, log).Dashboard(context.Background(), &models.User{ID: "u-1"})

	assert.Len(t, d.Wallets, 1)
	assert.NotNil(t, d.Balances)
	assert.Empty(t, d.Balances)
	assert.Len(t, d.RecentTransactions, 1)
	assert.Len(t, hook.AllEntries(), 1)
}

func TestBankAccountsActiveOnlyInCreationOrder(t *testing.T) {
	log, _ := newTestLogger()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockBankRepo{list: func(ctx context.Context, currency string) ([]models.BankAccount, error) {
		assert.Equal(t, "AED", currency)
		return []models.BankAccount{
			{ID: "b-1", IsActive: true, CreatedAt: base},
			{ID: "b-2", IsActive: false, CreatedAt: base.Add(time.Hour)},
			{ID: "b-3", IsActive: true, CreatedAt: base.Add(2 * time.Hour)},
		}, nil
	}}
	s := NewBankAccountService(repo, log)

	accounts, err := s.CompanyAccounts(context.Background(), "aed")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "b-1", accounts[0].ID)
	assert.Equal(t, "b-3", accounts[1].ID)
}

func TestBankAccountsPropagatesErrors(t *testing.T) {
	log, _ := newTestLogger()
	repo := &mockBankRepo{list: func(ctx context.Context, currency string) ([]models.BankAccount, error) {
		return nil, apperr.Persistence("list bank accounts", errors.New("db down"))
	}}
	_, err := NewBankAccountService(repo, log).EnenniAccounts(context.Background())
	assert.True(t, apperr.IsPersistence(err))
}

func TestCreateBankAccount(t *testing.T) {
	log, _ := newTestLogger()
	var saved models.BankAccount
	repo := &mockBankRepo{create: func(ctx context.Context, account models.BankAccount) (string, error) {
		saved = account
		return "b-9", nil
	}}
	s := NewBankAccountService(repo, log)

	_, err := s.CreateBankAccount(context.Background(), "u-1", models.BankAccountInput{
		AccountHolder: "Jane Doe",
		BankName:      "Emirates NBD",
		Currency:      "AED",
		BankAddress:   "Dubai",
		BankCountry:   "AE",
	})
	require.True(t, apperr.IsValidation(err), "account number or IBAN is required")

	account, err := s.CreateBankAccount(context.Background(), "u-1", models.BankAccountInput{
		AccountHolder: "Jane Doe",
		BankName:      "Emirates NBD",
		IBAN:          "AE07 0331 2345 6789 0123 456",
		Currency:      "aed",
		BankAddress:   "Dubai",
		BankCountry:   "ae",
	})
	require.NoError(t, err)
	assert.Equal(t, "b-9", account.ID)
	assert.True(t, saved.IsActive)
	require.NotNil(t, saved.UserID)
	assert.Equal(t, "u-1", *saved.UserID)
	require.NotNil(t, saved.IBAN)
	assert.Equal(t, "AE070331234567890123456", *saved.IBAN)
}

type countingUserCache struct {
	repo        *memoryUsers
	calls       int
	invalidated []string
}

func (c *countingUserCache) AuthUser(ctx context.Context, userID string) (models.User, error) {
	c.calls++
	return c.repo.GetUserByID(ctx, userID)
}

func (c *countingUserCache) InvalidateAuthUser(userID string) {
	c.invalidated = append(c.invalidated, userID)
}

func newTestAuthService(t *testing.T) (*AuthService, *countingUserCache) {
	t.Helper()
	log, _ := newTestLogger()
	users := newMemoryUsers()
	cache := &countingUserCache{repo: users}
	sessions := session.NewManager(session.Config{Secret: "test-secret", TTL: time.Hour}, session.NewMemoryRevoker())
	return NewAuthService(users, sessions, cache, log), cache
}

func TestRegisterLoginLogout(t *testing.T) {
	s, cache := newTestAuthService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, models.RegisterInput{Email: "Jane@Enenni.com", Name: "Jane", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "jane@enenni.com", user.Email)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	_, err = s.Register(ctx, models.RegisterInput{Email: "jane@enenni.com", Name: "Jane", Password: "correct-horse"})
	require.True(t, apperr.IsValidation(err))
	assert.Equal(t, "email", apperr.Fields(err)[0].Field)

	_, err = s.Login(ctx, models.LoginInput{Email: "jane@enenni.com", Password: "wrong-password"})
	assert.True(t, apperr.IsAuth(err))
	_, err = s.Login(ctx, models.LoginInput{Email: "nobody@enenni.com", Password: "whatever1"})
	assert.True(t, apperr.IsAuth(err))

	sess, err := s.Login(ctx, models.LoginInput{Email: "jane@enenni.com", Password: "correct-horse"})
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)

	current := s.GetCurrentUser(ctx, sess.Token)
	require.NotNil(t, current)
	assert.Equal(t, user.ID, current.ID)
	assert.Equal(t, 1, cache.calls)

	assert.Equal(t, models.ActionResult{Success: true}, s.Logout(ctx, sess.Token))
	assert.Equal(t, []string{user.ID}, cache.invalidated)
	assert.Nil(t, s.GetCurrentUser(ctx, sess.Token))

	assert.Equal(t, "Not signed in", s.Logout(ctx, sess.Token).Error)
}

func TestGetCurrentUserNeverFails(t *testing.T) {
	s, _ := newTestAuthService(t)
	ctx := context.Background()

	assert.Nil(t, s.GetCurrentUser(ctx, ""))
	assert.Nil(t, s.GetCurrentUser(ctx, "garbage"))

	sessions := session.NewManager(session.Config{Secret: "test-secret", TTL: time.Hour}, nil)
	orphan, _, err := sessions.Issue(models.User{ID: "deleted-user"})
	require.NoError(t, err)
	assert.Nil(t, s.GetCurrentUser(ctx, orphan))
}
