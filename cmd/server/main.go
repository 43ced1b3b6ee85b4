package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	enenni "enenni_wallet_back"
	"enenni_wallet_back/models"
	"enenni_wallet_back/pkg/cache"
	"enenni_wallet_back/pkg/config"
	"enenni_wallet_back/pkg/handler"
	"enenni_wallet_back/pkg/middleware"
	"enenni_wallet_back/pkg/pricefeed"
	"enenni_wallet_back/pkg/queries"
	"enenni_wallet_back/pkg/repository"
	"enenni_wallet_back/pkg/service"
	"enenni_wallet_back/pkg/session"
	"enenni_wallet_back/pkg/uistate"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))
	logrus.Infoln("starting server")

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %s", err)
	}
	if cfg.Analyze {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
		gin.DebugPrintRouteFunc = func(method, path, handler string, handlers int) {
			logrus.WithFields(logrus.Fields{"method": method, "handlers": handlers}).Debugf("route %s -> %s", path, handler)
		}
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := repository.NewPostgresDB(cfg.DB)
	if err != nil {
		logrus.Fatalf("connect database: %s", err)
	}
	defer db.Close()
	logrus.Info("database connected")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := repository.Migrate(ctx, db.DB); err != nil {
		logrus.Fatalf("migrate database: %s", err)
	}

	revoker := newRevoker(ctx, cfg.Redis)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	queryCache := cache.New(cache.WithMetrics(cache.NewMetrics(reg)))
	defer queryCache.Close()

	repos := repository.NewRepository(db)
	sessions := session.NewManager(session.Config{
		Secret:     cfg.Auth.JWTSecret,
		CookieName: cfg.Auth.CookieName,
		TTL:        cfg.Auth.SessionTTL,
	}, revoker)
	prices := pricefeed.NewClient(pricefeed.Config{
		BaseURL: cfg.PriceFeed.BaseURL,
		APIKey:  cfg.PriceFeed.APIKey,
		Timeout: cfg.PriceFeed.Timeout,
	})

	// services and queries depend on each other; the bank source reads services lazily
	var services *service.Service
	q := queries.New(queryCache, prices, queries.BankAccountSourceFunc(func(ctx context.Context, currency string) ([]models.BankAccount, error) {
		return services.BankAccount.CompanyAccounts(ctx, currency)
	}), repos.Authorization)
	services = service.NewService(repos, sessions, q, logrus.NewEntry(logrus.StandardLogger()))

	routes := middleware.DefaultRoutes()
	routes.Login = cfg.Routes.Login
	routes.DefaultLoginRedirect = cfg.Routes.DefaultLoginRedirect

	h := handler.NewHandler(services, q, sessions, uistate.NewStore(), handler.Config{
		AllowedOrigins: cfg.AllowedOrigins,
		Routes:         routes,
		Gatherer:       reg,
		SecureCookies:  !cfg.Analyze,
	})

	srv := new(enenni.Server)
	go func() {
		if err := srv.Run(cfg.Port, h.InitRoute()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("run server: %s", err)
		}
	}()
	logrus.Infof("listening on :%s", cfg.Port)

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("shutdown: %s", err)
	}
}

// newRevoker uses redis when it is reachable and falls back to process memory otherwise.
func newRevoker(ctx context.Context, cfg config.RedisConfig) session.Revoker {
	if cfg.Addr == "" {
		logrus.Warn("redis is not configured, session revocation is kept in memory")
		return session.NewMemoryRevoker()
	}
	rdb, err := session.NewRedisClient(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		logrus.Warnf("redis unavailable, session revocation is kept in memory: %s", err)
		return session.NewMemoryRevoker()
	}
	return session.NewRedisRevoker(rdb)
}
