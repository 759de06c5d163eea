package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/middleware"
)

func errorJSON(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// serverError logs err with the request id and answers with a generic
// message.
func serverError(c *gin.Context, log logrus.FieldLogger, err error, msg string) {
	_ = c.Error(err)
	log.WithFields(logrus.Fields{
		"path":       c.FullPath(),
		"request_id": c.GetString(middleware.RequestIDKey),
	}).WithError(err).Error(msg)
	errorJSON(c, http.StatusInternalServerError, msg)
}

// paramID parses a positive numeric path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
