package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"enenni_wallet_back/models"
	"enenni_wallet_back/pkg/apiclient"
	"enenni_wallet_back/pkg/cache"
	"enenni_wallet_back/pkg/pricefeed"
	"enenni_wallet_back/pkg/queries"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	app := &cli.App{
		Name:  "pricewatch",
		Usage: "watch live prices and dashboard data through the query cache",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "feed-url", Value: "https://api.coingecko.com/api/v3", EnvVars: []string{"PRICEFEED_BASE_URL"}},
			&cli.StringFlag{Name: "feed-key", EnvVars: []string{"COINGECKO_API_KEY"}},
			&cli.StringFlag{Name: "api-url", Value: "http://localhost:8000", EnvVars: []string{"ENENNI_API_URL"}},
			&cli.StringFlag{Name: "token", Usage: "session token for the dashboard API", EnvVars: []string{"ENENNI_TOKEN"}},
		},
		Commands: []*cli.Command{
			{
				Name:  "price",
				Usage: "print every live price update until interrupted",
				Flags: pairFlags(),
				Action: func(c *cli.Context) error {
					return watchPrice(c)
				},
			},
			{
				Name:  "chart",
				Usage: "print the chart series each time it refreshes",
				Flags: append(pairFlags(), &cli.StringFlag{Name: "range", Value: string(pricefeed.Range1D)}),
				Action: func(c *cli.Context) error {
					return watchChart(c)
				},
			},
			{
				Name:  "bank-accounts",
				Usage: "list the active company bank accounts for a currency",
				Flags: []cli.Flag{&cli.StringFlag{Name: "currency", Required: true}},
				Action: func(c *cli.Context) error {
					return listBankAccounts(c)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func pairFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "base", Value: "BTC"},
		&cli.StringFlag{Name: "quote", Value: "USD"},
	}
}

func newQueries(c *cli.Context) *queries.Queries {
	feed := pricefeed.NewClient(pricefeed.Config{
		BaseURL: c.String("feed-url"),
		APIKey:  c.String("feed-key"),
		Timeout: 10 * time.Second,
	})
	api := apiclient.New(apiclient.Config{
		BaseURL: c.String("api-url"),
		Token:   c.String("token"),
	})
	return queries.New(cache.New(), feed, api, nil)
}

func pair(c *cli.Context) (string, string, error) {
	base, ok := models.ParseCurrency(c.String("base"))
	if !ok {
		return "", "", errors.Errorf("unsupported currency %q", c.String("base"))
	}
	return base.String(), c.String("quote"), nil
}

// watchPrice keeps one observer on the live price key. Closing it on SIGINT stops the polling.
func watchPrice(c *cli.Context) error {
	base, quote, err := pair(c)
	if err != nil {
		return err
	}
	q := newQueries(c)
	defer q.Cache().Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logrus.WithFields(logrus.Fields{"base": base, "quote": quote})
	sub := q.WatchLivePrice(base, quote, func(s cache.TypedState[models.CryptoPrice]) {
		switch {
		case s.Fetching:
		case s.Err != nil:
			log.WithField("status", s.Status.String()).Errorf("price unavailable: %s", s.Err)
		case s.HasValue:
			log.WithField("at", s.Value.Timestamp).Infof("%s/%s %s", base, quote, s.Value.Price.String())
		}
	})
	<-ctx.Done()
	sub.Close()
	log.Info("stopped")
	return nil
}

func watchChart(c *cli.Context) error {
	base, quote, err := pair(c)
	if err != nil {
		return err
	}
	rng, ok := pricefeed.ParseTimeRange(c.String("range"))
	if !ok {
		return errors.Errorf("unsupported time range %q", c.String("range"))
	}
	q := newQueries(c)
	defer q.Cache().Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sub := q.WatchChartData(base, quote, rng, func(s cache.TypedState[[]models.PricePoint]) {
		if s.Fetching {
			return
		}
		if s.Err != nil {
			logrus.Errorf("chart unavailable: %s", s.Err)
			return
		}
		if n := len(s.Value); n > 0 {
			last := s.Value[n-1]
			logrus.WithFields(logrus.Fields{"points": n, "range": rng}).Infof("last %s at %s", last.Price.String(), last.Timestamp.Format(time.RFC3339))
		}
	})
	<-ctx.Done()
	sub.Close()
	return nil
}

func listBankAccounts(c *cli.Context) error {
	q := newQueries(c)
	defer q.Cache().Close()

	ctx, cancel := context.WithTimeout(c.Context, time.Minute)
	defer cancel()
	accounts, err := q.CompanyBankAccounts(ctx, c.String("currency"))
	if err != nil {
		return err
	}
	for _, a := range accounts {
		fields := logrus.Fields{"bank": a.BankName, "holder": a.AccountHolder, "currency": a.Currency}
		if a.IBAN != nil {
			fields["iban"] = *a.IBAN
		}
		if a.AccountNumber != nil {
			fields["account_number"] = *a.AccountNumber
		}
		logrus.WithFields(fields).Info("bank account")
	}
	return nil
}
