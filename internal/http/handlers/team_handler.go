package handlers

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/patelvedant312/team-matching/internal/http/response"
	"github.com/patelvedant312/team-matching/internal/matching"
	"github.com/patelvedant312/team-matching/internal/models"
	"github.com/patelvedant312/team-matching/internal/pkg/apperror"
	"github.com/patelvedant312/team-matching/internal/service"
)

// TeamService: формирование команд и запуски подбора.
type TeamService interface {
	FormTeam(ctx context.Context, orgID, projectID uuid.UUID, ov *service.MatchOverrides) (*service.FormationResult, error)
	ReleaseTeam(ctx context.Context, orgID, projectID uuid.UUID) (*models.Team, error)
	Preview(ctx context.Context, orgID uuid.UUID, projectIDs []uuid.UUID, ov *service.MatchOverrides) (*matching.Result, error)
	Run(in matching.Input, ov *service.MatchOverrides) (*matching.Result, error)
	ListTeams(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]models.Team, error)
	GetTeam(ctx context.Context, orgID, id uuid.UUID) (*models.Team, error)
}

// TeamHandler обслуживает /projects/:id/team, /teams и /match.
type TeamHandler struct {
	teams TeamService
}

// NewTeamHandler создаёт хэндлер.
func NewTeamHandler(teams TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// Form обрабатывает POST /projects/:id/team. Тело с переопределениями
// параметров подбора необязательно.
func (h *TeamHandler) Form(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Overrides *service.MatchOverrides `json:"overrides"`
	}
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			fail(c, apperror.Wrap(err, apperror.ErrCodeBadRequest, "некорректное тело запроса: "+err.Error()))
			return
		}
	}

	out, err := h.teams.FormTeam(c.Request.Context(), orgID, projectID, req.Overrides)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, out)
}

// Release обрабатывает DELETE /projects/:id/team.
func (h *TeamHandler) Release(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	team, err := h.teams.ReleaseTeam(c.Request.Context(), orgID, projectID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, team)
}

// List обрабатывает GET /teams.
func (h *TeamHandler) List(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)

	teams, err := h.teams.ListTeams(c.Request.Context(), orgID, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	response.Paginated(c, teams, len(teams), limit, offset)
}

// Get обрабатывает GET /teams/:id.
func (h *TeamHandler) Get(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	team, err := h.teams.GetTeam(c.Request.Context(), orgID, id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, team)
}

// Preview обрабатывает POST /match/preview: подбор по сохранённым проектам без записи.
func (h *TeamHandler) Preview(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}
	var req struct {
		ProjectIDs []uuid.UUID             `json:"project_ids" binding:"required,min=1"`
		Overrides  *service.MatchOverrides `json:"overrides"`
	}
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.teams.Preview(c.Request.Context(), orgID, req.ProjectIDs, req.Overrides)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, result)
}

// Run обрабатывает POST /match/run: проекты, ресурсы и параметры приходят в теле.
func (h *TeamHandler) Run(c *gin.Context) {
	if _, ok := currentOrgID(c); !ok {
		return
	}
	var req struct {
		matching.Input
		Overrides *service.MatchOverrides `json:"overrides"`
	}
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.teams.Run(req.Input, req.Overrides)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, result)
}
