package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enenni_wallet_back/models"
	"enenni_wallet_back/pkg/middleware"
)

// Pages answer with their view model as JSON; rendering is left to the front end.

func (h *Handler) HomePage(c *gin.Context) {
	wrapOkJSON(c, map[string]interface{}{
		"page": "home",
		"user": middleware.GetUser(c),
	})
}

func (h *Handler) AuthPage(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		view := map[string]interface{}{"page": name}
		if cb := c.Query("callbackUrl"); cb != "" {
			view["callbackUrl"] = cb
		}
		if msg := c.Query("error"); name == "error" && msg != "" {
			view["error"] = msg
		}
		wrapOkJSON(c, view)
	}
}

func (h *Handler) DashboardPage(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		newErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"page":      "dashboard",
		"dashboard": h.service.Wallet.Dashboard(c.Request.Context(), user),
		"modals":    h.modals.Get(user.ID).Views(),
	})
}

func (h *Handler) WalletPage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	currency, ok := models.ParseCurrency(c.Param("currency"))
	if !ok {
		newErrorResponse(c, http.StatusNotFound, "unsupported currency")
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"page":     "wallet",
		"currency": currency,
		"wallet":   h.service.Wallet.GetWalletByCurrency(c.Request.Context(), userID, currency),
		"modals":   h.modals.Get(userID).Views(),
	})
}

// BankAccountsPage reads the company accounts through the query cache.
func (h *Handler) BankAccountsPage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	view := map[string]interface{}{
		"page":   "bank-accounts",
		"modals": h.modals.Get(userID).Views(),
	}
	accounts, err := h.queries.CompanyBankAccounts(c.Request.Context(), c.Query("currency"))
	if err != nil {
		view["accounts"] = []models.BankAccount{}
		view["error"] = "Failed to fetch bank accounts"
	} else {
		view["accounts"] = accounts
	}
	wrapOkJSON(c, view)
}
