package pricefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enenni_wallet_back/pkg/apperr"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, APIKey: "demo", Timeout: 2 * time.Second})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestFetchPrice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		assert.Equal(t, "demo", r.Header.Get("x-cg-demo-api-key"))
		writeJSON(w, http.StatusOK, `{"bitcoin":{"usd":67012.123456,"last_updated_at":1711929600}}`)
	})

	price, err := client.FetchPrice(context.Background(), "BTC", "USD")
	require.NoError(t, err)
	assert.Equal(t, "BTC", price.Base)
	assert.Equal(t, "USD", price.Quote)
	assert.Equal(t, "67012.123456", price.Price.String())
	assert.Equal(t, time.Unix(1711929600, 0).UTC(), price.Timestamp)
}

func TestFetchPriceUpstreamFailures(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"service unavailable": {http.StatusServiceUnavailable, `{"error":"down"}`},
		"rate limited":        {http.StatusTooManyRequests, `{}`},
		"unknown coin":        {http.StatusOK, `{}`},
		"zero price":          {http.StatusOK, `{"ethereum":{"usd":0}}`},
		"missing quote":       {http.StatusOK, `{"ethereum":{"eur":3100}}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			})
			_, err := client.FetchPrice(context.Background(), "ETH", "USD")
			require.Error(t, err)
			assert.True(t, apperr.IsUpstream(err), "got %v", err)
		})
	}
}

func TestFetchPriceNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second})

	_, err := client.FetchPrice(context.Background(), "ETH", "USD")
	assert.True(t, apperr.IsUpstream(err))
}

func TestFetchChartData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/ethereum/market_chart", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("days"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		writeJSON(w, http.StatusOK, `{"prices":[[1711929600000,3500.5],[1711933200000,3510.25]]}`)
	})

	points, err := client.FetchChartData(context.Background(), "ETH", "USD", Range1W)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, time.UnixMilli(1711929600000).UTC(), points[0].Timestamp)
	assert.Equal(t, "3510.25", points[1].Price.String())
}

func TestFetchChartDataOneHourTrimsWindow(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("days"))
		writeJSON(w, http.StatusOK, `{"prices":[[1711900000000,1],[1711929600000,2],[1711931400000,3],[1711933200000,4]]}`)
	})

	points, err := client.FetchChartData(context.Background(), "BTC", "USD", Range1H)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, "2", points[0].Price.String())
}

func TestFetchChartDataErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadGateway, `{}`)
	})
	_, err := client.FetchChartData(context.Background(), "BTC", "USD", Range1D)
	assert.True(t, apperr.IsUpstream(err))

	_, err = client.FetchChartData(context.Background(), "BTC", "USD", TimeRange("5Y"))
	require.Error(t, err)
	assert.False(t, apperr.IsUpstream(err))
}

func TestParseTimeRange(t *testing.T) {
	r, ok := ParseTimeRange("1w")
	assert.True(t, ok)
	assert.Equal(t, Range1W, r)

	_, ok = ParseTimeRange("2W")
	assert.False(t, ok)
}
