package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"enenni_wallet_back/pkg/middleware"
	"enenni_wallet_back/pkg/queries"
	"enenni_wallet_back/pkg/service"
	"enenni_wallet_back/pkg/session"
	"enenni_wallet_back/pkg/uistate"
)

type Config struct {
	AllowedOrigins []string
	Routes         middleware.Routes
	// Gatherer backs GET /metrics; nil disables the route.
	Gatherer prometheus.Gatherer
	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
}

type Handler struct {
	service  *service.Service
	queries  *queries.Queries
	sessions *session.Manager
	modals   *uistate.Store
	cfg      Config
}

func NewHandler(service *service.Service, queries *queries.Queries, sessions *session.Manager, modals *uistate.Store, cfg Config) *Handler {
	if modals == nil {
		modals = uistate.NewStore()
	}
	if cfg.Routes.Login == "" {
		cfg.Routes = middleware.DefaultRoutes()
	}
	return &Handler{
		service:  service,
		queries:  queries,
		sessions: sessions,
		modals:   modals,
		cfg:      cfg,
	}
}

func (h *Handler) InitRoute() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	origins := h.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if h.cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	app := router.Group("/", middleware.AuthMiddleware(h.cfg.Routes, h.service.Authorization, h.sessions.TokenFromRequest))
	{
		app.GET("/", h.HomePage)
		app.GET("/auth/login", h.AuthPage("login"))
		app.GET("/auth/register", h.AuthPage("register"))
		app.GET("/auth/error", h.AuthPage("error"))
		app.GET("/dashboard", h.DashboardPage)
		app.GET("/wallets/:currency", h.WalletPage)
		app.GET("/bank-accounts", h.BankAccountsPage)
	}

	auth := app.Group("/api/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.GetMe)
	}

	api := app.Group("/api")
	{
		wallets := api.Group("/wallets")
		{
			wallets.GET("", h.GetWallets)
			wallets.GET("/:currency", h.GetWallet)
			wallets.POST("", h.CreateWallet)
			wallets.PATCH("/:id", h.UpdateWallet)
			wallets.DELETE("/:id", h.DeleteWallet)
		}

		api.GET("/bank-accounts/company", h.GetCompanyBankAccounts)
		api.POST("/bank-accounts", h.CreateBankAccount)
		api.GET("/enenni-bank-accounts", h.GetEnenniBankAccounts)

		prices := api.Group("/prices")
		{
			prices.GET("/live", h.GetLivePrice)
			prices.GET("/chart", h.GetChartData)
			prices.GET("/stream", h.StreamLivePrice)
		}
		api.POST("/queries/focus", h.Focus)

		api.GET("/ui/modals", h.GetModals)
		api.POST("/ui/modals", h.UpdateModal)
	}

	router.NoRoute(func(c *gin.Context) {
		newErrorResponse(c, http.StatusNotFound, "not found")
	})
	return router
}
