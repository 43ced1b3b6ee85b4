package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"enenni_wallet_back/models"
)

// GetCompanyBankAccounts lists the active company accounts for ?currency=.
func (h *Handler) GetCompanyBankAccounts(c *gin.Context) {
	accounts, err := h.service.BankAccount.CompanyAccounts(c.Request.Context(), c.Query("currency"))
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// GetEnenniBankAccounts answers 500 with an {"error"} body on failure.
func (h *Handler) GetEnenniBankAccounts(c *gin.Context) {
	accounts, err := h.service.BankAccount.EnenniAccounts(c.Request.Context())
	if err != nil {
		logrus.Errorf("list enenni bank accounts: %s", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bank accounts"})
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func (h *Handler) CreateBankAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var input models.BankAccountInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.service.BankAccount.CreateBankAccount(c.Request.Context(), userID, input)
	if err != nil {
		errorResponse(c, err)
		return
	}
	if account.CompanyID != nil {
		h.queries.InvalidateCompanyBankAccounts(account.Currency)
	}
	c.JSON(http.StatusCreated, account)
}
