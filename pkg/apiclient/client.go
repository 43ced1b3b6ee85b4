// Package apiclient calls the dashboard's own JSON routes, the way the browser hooks do.
package apiclient

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"enenni_wallet_back/models"
	"enenni_wallet_back/pkg/apperr"
)

const serviceName = "enenni-api"

type Config struct {
	BaseURL string
	Timeout time.Duration
	// Token is sent as a bearer token when set.
	Token string
}

type Client struct {
	http *resty.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		http.SetAuthToken(cfg.Token)
	}
	return &Client{http: http}
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// CompanyBankAccounts lists the active company accounts for currency. Any non-2xx answer is an
// *apperr.UpstreamError so that the query layer can retry and surface it.
func (c *Client) CompanyBankAccounts(ctx context.Context, currency string) ([]models.BankAccount, error) {
	var accounts []models.BankAccount
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("currency", currency).
		SetResult(&accounts).
		SetError(&errorBody{}).
		Get("/api/bank-accounts/company")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return accounts, nil
}

// EnenniBankAccounts lists every active account, oldest first.
func (c *Client) EnenniBankAccounts(ctx context.Context) ([]models.BankAccount, error) {
	var accounts []models.BankAccount
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&accounts).
		SetError(&errorBody{}).
		Get("/api/enenni-bank-accounts")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return accounts, nil
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return apperr.Upstream(serviceName, 0, err)
	}
	if resp.IsError() {
		msg := resp.Status()
		if body, ok := resp.Error().(*errorBody); ok {
			switch {
			case body.Error != "":
				msg = body.Error
			case body.Message != "":
				msg = body.Message
			}
		}
		return apperr.Upstream(serviceName, resp.StatusCode(), errors.New(msg))
	}
	if resp.StatusCode() != http.StatusOK {
		return apperr.Upstream(serviceName, resp.StatusCode(), errors.Errorf("unexpected status %s", resp.Status()))
	}
	return nil
}
