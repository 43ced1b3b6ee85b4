// Package pricefeed reads spot and historical crypto prices from a CoinGecko compatible API.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"enenni_wallet_back/models"
	"enenni_wallet_back/pkg/apperr"
)

const serviceName = "pricefeed"

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is stateless between calls; retries are the caller's job.
type Client struct {
	http *resty.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		http.SetHeader("x-cg-demo-api-key", cfg.APIKey)
	}
	return &Client{http: http}
}

// FetchPrice returns the current base/quote price. Any transport failure, non-2xx answer or
// missing quote is an *apperr.UpstreamError.
func (c *Client) FetchPrice(ctx context.Context, base, quote string) (models.CryptoPrice, error) {
	coin := currencyID(base)
	vs := strings.ToLower(quote)

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":                     coin,
			"vs_currencies":           vs,
			"include_last_updated_at": "true",
		}).
		SetResult(map[string]map[string]json.Number{}).
		Get("/simple/price")
	if err := checkResponse(resp, err); err != nil {
		return models.CryptoPrice{}, err
	}

	data := *resp.Result().(*map[string]map[string]json.Number)
	quotes, ok := data[coin]
	if !ok {
		return models.CryptoPrice{}, apperr.Upstream(serviceName, resp.StatusCode(), fmt.Errorf("no price for %s", coin))
	}
	price, err := decimal.NewFromString(quotes[vs].String())
	if err != nil || !price.IsPositive() {
		return models.CryptoPrice{}, apperr.Upstream(serviceName, resp.StatusCode(), fmt.Errorf("invalid %s/%s price %q", base, quote, quotes[vs]))
	}

	ts := time.Now().UTC()
	if updated, err := quotes["last_updated_at"].Int64(); err == nil && updated > 0 {
		ts = time.Unix(updated, 0).UTC()
	}

	return models.CryptoPrice{
		Base:      strings.ToUpper(base),
		Quote:     strings.ToUpper(quote),
		Price:     price,
		Timestamp: ts,
	}, nil
}

type marketChart struct {
	Prices [][2]json.Number `json:"prices"`
}

// FetchChartData returns the price history of base/quote over rng, oldest point first.
func (c *Client) FetchChartData(ctx context.Context, base, quote string, rng TimeRange) ([]models.PricePoint, error) {
	days, ok := rangeDays[rng]
	if !ok {
		return nil, errors.Errorf("unknown time range %q", rng)
	}
	coin := currencyID(base)

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("coin", coin).
		SetQueryParams(map[string]string{
			"vs_currency": strings.ToLower(quote),
			"days":        days,
		}).
		SetResult(&marketChart{}).
		Get("/coins/{coin}/market_chart")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}

	chart := resp.Result().(*marketChart)
	if len(chart.Prices) == 0 {
		return nil, apperr.Upstream(serviceName, resp.StatusCode(), fmt.Errorf("empty chart for %s", coin))
	}

	points := make([]models.PricePoint, 0, len(chart.Prices))
	for _, p := range chart.Prices {
		ms, err := p[0].Int64()
		if err != nil {
			f, ferr := p[0].Float64()
			if ferr != nil {
				return nil, apperr.Upstream(serviceName, resp.StatusCode(), errors.Wrap(err, "chart timestamp"))
			}
			ms = int64(f)
		}
		price, err := decimal.NewFromString(p[1].String())
		if err != nil {
			return nil, apperr.Upstream(serviceName, resp.StatusCode(), errors.Wrap(err, "chart price"))
		}
		points = append(points, models.PricePoint{Timestamp: time.UnixMilli(ms).UTC(), Price: price})
	}

	if w := rng.window(); w > 0 {
		cutoff := points[len(points)-1].Timestamp.Add(-w)
		i := 0
		for i < len(points) && points[i].Timestamp.Before(cutoff) {
			i++
		}
		points = points[i:]
	}
	return points, nil
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return apperr.Upstream(serviceName, 0, err)
	}
	if resp.IsError() {
		return apperr.Upstream(serviceName, resp.StatusCode(), errors.New(resp.Status()))
	}
	return nil
}

func currencyID(symbol string) string {
	switch strings.ToLower(symbol) {
	case "usdt":
		return "tether"
	case "usdc":
		return "usd-coin"
	case "btc":
		return "bitcoin"
	case "eth":
		return "ethereum"
	default:
		return strings.ToLower(symbol)
	}
}
