package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/patelvedant312/team-matching/internal/http/response"
	"github.com/patelvedant312/team-matching/internal/models"
	"github.com/patelvedant312/team-matching/internal/service"
)

// ProjectService: операции над проектами.
type ProjectService interface {
	List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]models.Project, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.Project, error)
	Create(ctx context.Context, orgID uuid.UUID, in service.ProjectInput) (*models.Project, error)
	Update(ctx context.Context, orgID, id uuid.UUID, in service.ProjectInput) (*models.Project, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// ProjectHandler обслуживает /projects.
type ProjectHandler struct {
	projects ProjectService
}

// NewProjectHandler создаёт хэндлер.
func NewProjectHandler(projects ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// List обрабатывает GET /projects.
func (h *ProjectHandler) List(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}
	limit, offset := pagination(c)

	projects, err := h.projects.List(c.Request.Context(), orgID, limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	response.Paginated(c, projects, len(projects), limit, offset)
}

// Get обрабатывает GET /projects/:id.
func (h *ProjectHandler) Get(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	p, err := h.projects.Get(c.Request.Context(), orgID, id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

// Create обрабатывает POST /projects.
func (h *ProjectHandler) Create(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}
	var req service.ProjectInput
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.projects.Create(c.Request.Context(), orgID, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, p)
}

// Update обрабатывает PUT /projects/:id.
func (h *ProjectHandler) Update(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.ProjectInput
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.projects.Update(c.Request.Context(), orgID, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, p)
}

// Delete обрабатывает DELETE /projects/:id. Ресурсы команды проекта возвращаются в пул.
func (h *ProjectHandler) Delete(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.projects.Delete(c.Request.Context(), orgID, id); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}
