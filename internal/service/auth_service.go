package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/patelvedant312/team-matching/internal/logger"
	"github.com/patelvedant312/team-matching/internal/models"
	"github.com/patelvedant312/team-matching/internal/pkg/apperror"
	"github.com/patelvedant312/team-matching/internal/repository"
)

// OrganizationRepository описывает зависимости AuthService от слоя хранилища.
type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
}

// AuthService регистрирует организации и выдаёт им токены по API-ключу.
type AuthService struct {
	repo         OrganizationRepository
	tokenManager *TokenManager
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo OrganizationRepository, tokenManager *TokenManager) *AuthService {
	return &AuthService{repo: repo, tokenManager: tokenManager}
}

// RegisteredOrganization возвращается один раз: ключ больше нигде не хранится в открытом виде.
type RegisteredOrganization struct {
	Organization *models.Organization `json:"organization"`
	APIKey       string               `json:"api_key"`
}

// Register создаёт организацию и её API-ключ.
func (s *AuthService) Register(ctx context.Context, name string) (*RegisteredOrganization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "название организации обязательно")
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сгенерировать ключ")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось захешировать ключ")
	}

	org := &models.Organization{Name: name, APIKeyHash: string(hash)}
	if err := s.repo.Create(ctx, org); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать организацию")
	}

	logger.L().WithField("org_id", org.ID).Info("auth: организация зарегистрирована")
	return &RegisteredOrganization{Organization: org, APIKey: apiKey}, nil
}

// IssueToken проверяет API-ключ и выпускает access токен.
func (s *AuthService) IssueToken(ctx context.Context, orgID uuid.UUID, apiKey string) (*AccessToken, error) {
	org, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, repository.ErrOrganizationNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось загрузить организацию")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(org.APIKeyHash), []byte(apiKey)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	token, err := s.tokenManager.Issue(org.ID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токен")
	}
	return token, nil
}

func generateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("api key: %w", err)
	}
	return "tm_" + base64.RawURLEncoding.EncodeToString(buf), nil
}
