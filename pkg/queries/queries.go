// Package queries binds each data operation of the dashboard to its cache key and refresh policy.
package queries

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"enenni_wallet_back/models"
	"enenni_wallet_back/pkg/cache"
	"enenni_wallet_back/pkg/pricefeed"
)

const (
	OpLivePrice          = "live-price"
	OpChartData          = "chart-data"
	OpCompanyBankAccount = "company-bank-account"
	OpAuthUser           = "auth-user"
)

var (
	LivePricePolicy = cache.Policy{
		PollInterval:   time.Second,
		StaleTime:      500 * time.Millisecond,
		MaxAttempts:    3,
		RefetchOnFocus: true,
		GCTime:         cache.DefaultGCTime,
	}
	ChartDataPolicy = cache.Policy{
		PollInterval:   time.Second,
		StaleTime:      0,
		MaxAttempts:    2,
		RefetchOnFocus: true,
		GCTime:         cache.DefaultGCTime,
	}
	CompanyBankAccountPolicy = cache.DefaultPolicy
	AuthUserPolicy           = cache.Policy{
		StaleTime:      cache.StaleForever,
		MaxAttempts:    cache.DefaultMaxAttempts,
		RefetchOnFocus: true,
		GCTime:         cache.DefaultGCTime,
	}
)

// ErrNoSource is returned by a hook whose data source was not wired.
var ErrNoSource = errors.New("query source not configured")

type PriceSource interface {
	FetchPrice(ctx context.Context, base, quote string) (models.CryptoPrice, error)
	FetchChartData(ctx context.Context, base, quote string, rng pricefeed.TimeRange) ([]models.PricePoint, error)
}

type BankAccountSource interface {
	CompanyBankAccounts(ctx context.Context, currency string) ([]models.BankAccount, error)
}

type UserSource interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

type Queries struct {
	cache *cache.Cache
	price PriceSource
	banks BankAccountSource
	users UserSource
}

// New wires the sources into c. Hooks whose source is nil fail with ErrNoSource.
func New(c *cache.Cache, price PriceSource, banks BankAccountSource, users UserSource) *Queries {
	return &Queries{cache: c, price: price, banks: banks, users: users}
}

func (q *Queries) Cache() *cache.Cache { return q.cache }

func LivePriceKey(base, quote string) cache.Key {
	return cache.NewKey(OpLivePrice, strings.ToUpper(base), strings.ToUpper(quote))
}

func ChartDataKey(base, quote string, rng pricefeed.TimeRange) cache.Key {
	return cache.NewKey(OpChartData, strings.ToUpper(base), strings.ToUpper(quote), string(rng))
}

func CompanyBankAccountKey(currency string) cache.Key {
	return cache.NewKey(OpCompanyBankAccount, strings.ToUpper(currency))
}

func AuthUserKey(userID string) cache.Key {
	return cache.NewKey(OpAuthUser, userID)
}

func (q *Queries) livePrice(base, quote string) func(context.Context) (models.CryptoPrice, error) {
	return func(ctx context.Context) (models.CryptoPrice, error) {
		if q.price == nil {
			return models.CryptoPrice{}, ErrNoSource
		}
		return q.price.FetchPrice(ctx, base, quote)
	}
}

func (q *Queries) chartData(base, quote string, rng pricefeed.TimeRange) func(context.Context) ([]models.PricePoint, error) {
	return func(ctx context.Context) ([]models.PricePoint, error) {
		if q.price == nil {
			return nil, ErrNoSource
		}
		return q.price.FetchChartData(ctx, base, quote, rng)
	}
}

func (q *Queries) LivePrice(ctx context.Context, base, quote string) (models.CryptoPrice, error) {
	if q.price == nil {
		return models.CryptoPrice{}, ErrNoSource
	}
	return cache.Query(ctx, q.cache, LivePriceKey(base, quote), LivePricePolicy, q.livePrice(base, quote))
}

// WatchLivePrice polls base/quote every second until the subscription is closed.
func (q *Queries) WatchLivePrice(base, quote string, fn func(cache.TypedState[models.CryptoPrice])) *cache.Subscription {
	return cache.Watch(q.cache, LivePriceKey(base, quote), LivePricePolicy, q.livePrice(base, quote), fn)
}

func (q *Queries) ChartData(ctx context.Context, base, quote string, rng pricefeed.TimeRange) ([]models.PricePoint, error) {
	if q.price == nil {
		return nil, ErrNoSource
	}
	return cache.Query(ctx, q.cache, ChartDataKey(base, quote, rng), ChartDataPolicy, q.chartData(base, quote, rng))
}

func (q *Queries) WatchChartData(base, quote string, rng pricefeed.TimeRange, fn func(cache.TypedState[[]models.PricePoint])) *cache.Subscription {
	return cache.Watch(q.cache, ChartDataKey(base, quote, rng), ChartDataPolicy, q.chartData(base, quote, rng), fn)
}

func (q *Queries) CompanyBankAccounts(ctx context.Context, currency string) ([]models.BankAccount, error) {
	if q.banks == nil {
		return nil, ErrNoSource
	}
	return cache.Query(ctx, q.cache, CompanyBankAccountKey(currency), CompanyBankAccountPolicy,
		func(ctx context.Context) ([]models.BankAccount, error) {
			return q.banks.CompanyBankAccounts(ctx, currency)
		})
}

// AuthUser is fetched once per user and kept until InvalidateAuthUser.
func (q *Queries) AuthUser(ctx context.Context, userID string) (models.User, error) {
	if q.users == nil {
		return models.User{}, ErrNoSource
	}
	return cache.Query(ctx, q.cache, AuthUserKey(userID), AuthUserPolicy,
		func(ctx context.Context) (models.User, error) {
			return q.users.GetUserByID(ctx, userID)
		})
}

func (q *Queries) InvalidateAuthUser(userID string) {
	q.cache.Invalidate(AuthUserKey(userID))
}

func (q *Queries) InvalidateCompanyBankAccounts(currency string) {
	q.cache.Invalidate(CompanyBankAccountKey(currency))
}

// BankAccountSourceFunc adapts a plain function, such as a service method, to BankAccountSource.
type BankAccountSourceFunc func(ctx context.Context, currency string) ([]models.BankAccount, error)

func (f BankAccountSourceFunc) CompanyBankAccounts(ctx context.Context, currency string) ([]models.BankAccount, error) {
	return f(ctx, currency)
}
