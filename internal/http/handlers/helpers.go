package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/patelvedant312/team-matching/internal/http/middleware"
	"github.com/patelvedant312/team-matching/internal/models"
	"github.com/patelvedant312/team-matching/internal/pkg/apperror"
)

// currentOrgID извлекает организацию из контекста. Без неё хэндлер
// не вызывается, но маршрут может оказаться вне защищённой группы.
func currentOrgID(c *gin.Context) (uuid.UUID, bool) {
	orgID, ok := middleware.OrgID(c)
	if !ok {
		fail(c, apperror.ErrUnauthorized)
		return uuid.Nil, false
	}
	return orgID, true
}

// uuidParam разбирает UUID из параметра пути.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		fail(c, apperror.Wrap(err, apperror.ErrCodeBadRequest, "параметр "+name+" должен быть валидным UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON разбирает тело запроса; ошибка уходит в ErrorHandler.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, apperror.Wrap(err, apperror.ErrCodeBadRequest, "некорректное тело запроса: "+err.Error()))
		return false
	}
	return true
}

// pagination читает limit и offset с ограничениями по умолчанию.
func pagination(c *gin.Context) (limit, offset int) {
	limit = models.ClampLimit(intQuery(c, "limit", models.DefaultPageLimit))
	offset = intQuery(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolQuery(c *gin.Context, key string) (*bool, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return nil, errors.New("параметр " + key + " должен быть true или false")
	}
	return &parsed, nil
}

// fail передаёт ошибку в ErrorHandler и прерывает цепочку.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
