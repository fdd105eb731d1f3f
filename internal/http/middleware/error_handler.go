package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/patelvedant312/team-matching/internal/http/response"
	"github.com/patelvedant312/team-matching/internal/logger"
	"github.com/patelvedant312/team-matching/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно. Хэндлеры кладут ошибку
// через c.Error, middleware пишет ответ. Внутренние причины клиенту не
// показываются, только в лог.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := http.StatusInternalServerError
		if appErr, ok := apperror.As(err); ok {
			status = appErr.HTTPStatus
		}

		entry := logger.L().WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"status": status,
		})
		if orgID, ok := OrgID(c); ok {
			entry = entry.WithField("org_id", orgID)
		}
		if status >= http.StatusInternalServerError {
			entry.Error("request error")
		} else {
			entry.Info("request rejected")
		}

		response.Error(c, err)
	}
}
