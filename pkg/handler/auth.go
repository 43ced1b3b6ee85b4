package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"enenni_wallet_back/models"
	"enenni_wallet_back/pkg/middleware"
)

func (h *Handler) Register(c *gin.Context) {
	var input models.RegisterInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.Authorization.Register(c.Request.Context(), input)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *Handler) Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := h.service.Authorization.Login(c.Request.Context(), input)
	if err != nil {
		errorResponse(c, err)
		return
	}
	h.setSessionCookie(c, sess.Token, time.Until(sess.ExpiresAt))
	wrapOkJSON(c, map[string]interface{}{
		"user":      sess.User,
		"token":     sess.Token,
		"expiresAt": sess.ExpiresAt,
	})
}

// Logout always answers 200 with an ActionResult so the page can show the message.
func (h *Handler) Logout(c *gin.Context) {
	token := h.sessions.TokenFromRequest(c.Request)
	if user := h.service.Authorization.GetCurrentUser(c.Request.Context(), token); user != nil {
		h.modals.Forget(user.ID)
	}
	res := h.service.Authorization.Logout(c.Request.Context(), token)
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetMe(c *gin.Context) {
	user := h.service.Authorization.GetCurrentUser(c.Request.Context(), h.sessions.TokenFromRequest(c.Request))
	wrapOkJSON(c, map[string]interface{}{
		"user": user,
	})
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.sessions.CookieName(), value, maxAge, "/", "", h.cfg.SecureCookies, true)
}

func currentUserID(c *gin.Context) (string, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		newErrorResponse(c, http.StatusUnauthorized, "authentication required")
	}
	return id, ok
}
