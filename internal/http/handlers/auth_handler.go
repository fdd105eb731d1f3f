package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/patelvedant312/team-matching/internal/http/response"
	"github.com/patelvedant312/team-matching/internal/service"
)

// AuthService: операции регистрации и выдачи токенов.
type AuthService interface {
	Register(ctx context.Context, name string) (*service.RegisteredOrganization, error)
	IssueToken(ctx context.Context, orgID uuid.UUID, apiKey string) (*service.AccessToken, error)
}

// AuthHandler предоставляет HTTP слой для регистрации организаций и выдачи токенов.
type AuthHandler struct {
	auth AuthService
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register обрабатывает POST /auth/organizations.
// API-ключ возвращается только в этом ответе.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Register(c.Request.Context(), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, result)
}

// Token обрабатывает POST /auth/token.
func (h *AuthHandler) Token(c *gin.Context) {
	var req struct {
		OrgID  uuid.UUID `json:"org_id" binding:"required"`
		APIKey string    `json:"api_key" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.auth.IssueToken(c.Request.Context(), req.OrgID, req.APIKey)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, token)
}
