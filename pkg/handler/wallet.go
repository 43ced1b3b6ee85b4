package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enenni_wallet_back/models"
)

func (h *Handler) GetWallets(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.service.Wallet.GetWalletsByUser(c.Request.Context(), userID))
}

func (h *Handler) GetWallet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	currency, ok := models.ParseCurrency(c.Param("currency"))
	if !ok {
		newErrorResponse(c, http.StatusBadRequest, "unsupported currency")
		return
	}

	w := h.service.Wallet.GetWalletByCurrency(c.Request.Context(), userID, currency)
	if w == nil {
		newErrorResponse(c, http.StatusNotFound, "wallet not found")
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *Handler) CreateWallet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var input models.WalletInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	w, err := h.service.Wallet.CreateWallet(c.Request.Context(), userID, input)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *Handler) UpdateWallet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var input models.NicknameInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.Wallet.UpdateNickname(c.Request.Context(), userID, c.Param("id"), input); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ActionResult{Success: true})
}

func (h *Handler) DeleteWallet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.service.Wallet.DeleteWallet(c.Request.Context(), userID, c.Param("id")); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ActionResult{Success: true})
}
