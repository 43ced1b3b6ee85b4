package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"enenni_wallet_back/models"
)

const (
	userIDKey = "userId"
	userKey   = "user"
)

// SessionResolver returns the signed-in user or nil. It must not fail open: any lookup problem
// is reported as nil.
type SessionResolver interface {
	GetCurrentUser(ctx context.Context, token string) *models.User
}

type TokenSource func(r *http.Request) string

// AuthMiddleware runs Routes.Decide for every request. Redirects to the login page become 401
// JSON answers for API paths.
func AuthMiddleware(routes Routes, sessions SessionResolver, token TokenSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := resolve(c, sessions, token)
		if user != nil {
			c.Set(userIDKey, user.ID)
			c.Set(userKey, user)
		}

		path := c.Request.URL.Path
		d := routes.Decide(path, user != nil)
		if d.Action == Allow {
			c.Next()
			return
		}

		if strings.HasPrefix(path, "/api/") && user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			return
		}
		if user == nil && c.Request.URL.RawQuery != "" {
			d = Decision{Action: Redirect, Location: routes.loginURL(path + "?" + c.Request.URL.RawQuery)}
		}
		logrus.WithFields(logrus.Fields{
			"path":     path,
			"location": d.Location,
		}).Debug("route guard redirect")
		c.Redirect(http.StatusFound, d.Location)
		c.Abort()
	}
}

func resolve(c *gin.Context, sessions SessionResolver, token TokenSource) (user *models.User) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("session lookup panicked: %v", r)
			user = nil
		}
	}()
	if sessions == nil || token == nil {
		return nil
	}
	t := token(c.Request)
	if t == "" {
		return nil
	}
	return sessions.GetCurrentUser(c.Request.Context(), t)
}

func GetUserID(c *gin.Context) (string, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func GetUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
