package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"enenni_wallet_back/pkg/uistate"
)

func (h *Handler) GetModals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.modals.Get(userID).Views())
}

func (h *Handler) UpdateModal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var cmd uistate.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "name and action (open|close) are required")
		return
	}

	modals, err := h.modals.Apply(userID, cmd)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, modals.Views())
}
