package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"enenni_wallet_back/pkg/apperr"
)

type Error struct {
	Message string             `json:"message"`
	Fields  apperr.FieldErrors `json:"fields,omitempty"`
}

func newErrorResponse(c *gin.Context, statusCode int, message string) {
	logrus.Error(message)
	c.AbortWithStatusJSON(statusCode, Error{Message: message})
}

func wrapOkJSON(c *gin.Context, response map[string]interface{}) {
	c.JSON(http.StatusOK, response)
}

// errorResponse maps the error taxonomy onto status codes.
func errorResponse(c *gin.Context, err error) {
	switch {
	case apperr.IsValidation(err):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, Error{Message: "validation failed", Fields: apperr.Fields(err)})
	case apperr.IsAuth(err):
		newErrorResponse(c, http.StatusUnauthorized, err.Error())
	case apperr.IsNotFound(err):
		newErrorResponse(c, http.StatusNotFound, "not found")
	case apperr.IsUpstream(err):
		newErrorResponse(c, http.StatusBadGateway, err.Error())
	default:
		logrus.WithField("path", c.FullPath()).Errorf("request failed: %+v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, Error{Message: "internal error"})
	}
}
