package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/patelvedant312/team-matching/internal/http/response"
	"github.com/patelvedant312/team-matching/internal/models"
	"github.com/patelvedant312/team-matching/internal/pkg/apperror"
	"github.com/patelvedant312/team-matching/internal/service"
)

// ResourceService: операции над пулом специалистов.
type ResourceService interface {
	List(ctx context.Context, orgID uuid.UUID, filter models.ResourceFilter) ([]models.Resource, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*models.Resource, error)
	Create(ctx context.Context, orgID uuid.UUID, in service.ResourceInput) (*models.Resource, error)
	Update(ctx context.Context, orgID, id uuid.UUID, in service.ResourceInput) (*models.Resource, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	Import(ctx context.Context, orgID uuid.UUID, data []byte) ([]models.Resource, error)
}

// ResourceHandler обслуживает /resources.
type ResourceHandler struct {
	resources      ResourceService
	maxImportBytes int64
}

// NewResourceHandler создаёт хэндлер. maxImportBytes ограничивает размер файла импорта.
func NewResourceHandler(resources ResourceService, maxImportBytes int64) *ResourceHandler {
	return &ResourceHandler{resources: resources, maxImportBytes: maxImportBytes}
}

// List обрабатывает GET /resources?on_bench=true&limit=&offset=.
func (h *ResourceHandler) List(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}
	onBench, err := boolQuery(c, "on_bench")
	if err != nil {
		fail(c, apperror.Wrap(err, apperror.ErrCodeBadRequest, err.Error()))
		return
	}
	limit, offset := pagination(c)

	resources, err := h.resources.List(c.Request.Context(), orgID, models.ResourceFilter{
		OnBench: onBench,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		fail(c, err)
		return
	}
	response.Paginated(c, resources, len(resources), limit, offset)
}

// Get обрабатывает GET /resources/:id.
func (h *ResourceHandler) Get(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	res, err := h.resources.Get(c.Request.Context(), orgID, id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

// Create обрабатывает POST /resources.
func (h *ResourceHandler) Create(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}
	var req service.ResourceInput
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.resources.Create(c.Request.Context(), orgID, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, res)
}

// Update обрабатывает PUT /resources/:id. В теле нужен текущий version.
func (h *ResourceHandler) Update(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.ResourceInput
	if !bindJSON(c, &req) {
		return
	}
	if req.Version <= 0 {
		fail(c, apperror.New(apperror.ErrCodeValidation, "version обязателен"))
		return
	}

	res, err := h.resources.Update(c.Request.Context(), orgID, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

// Delete обрабатывает DELETE /resources/:id.
func (h *ResourceHandler) Delete(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.resources.Delete(c.Request.Context(), orgID, id); err != nil {
		fail(c, err)
		return
	}
	response.NoContent(c)
}

// Import обрабатывает POST /resources/import. Принимает multipart-поле file
// или JSON-массив в теле запроса.
func (h *ResourceHandler) Import(c *gin.Context) {
	orgID, ok := currentOrgID(c)
	if !ok {
		return
	}

	data, err := h.readUpload(c)
	if err != nil {
		fail(c, err)
		return
	}

	resources, err := h.resources.Import(c.Request.Context(), orgID, data)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, gin.H{"imported": len(resources), "resources": resources})
}

func (h *ResourceHandler) readUpload(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImportBytes)

	var src io.Reader = c.Request.Body
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, tooLargeOr(err, apperror.Wrap(err, apperror.ErrCodeBadRequest, "ожидается поле file"))
		}
		f, err := fh.Open()
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeBadRequest, "не удалось открыть файл")
		}
		defer f.Close()
		src = io.LimitReader(f, h.maxImportBytes+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, tooLargeOr(err, apperror.Wrap(err, apperror.ErrCodeBadRequest, "не удалось прочитать файл"))
	}
	if int64(len(data)) > h.maxImportBytes {
		return nil, h.tooLarge(nil)
	}
	if len(data) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "файл пуст")
	}
	return data, nil
}

func tooLargeOr(err error, fallback error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperror.Wrap(err, apperror.ErrCodeValidation,
			fmt.Sprintf("файл больше допустимых %d байт", maxErr.Limit))
	}
	return fallback
}

func (h *ResourceHandler) tooLarge(err error) error {
	return apperror.Wrap(err, apperror.ErrCodeValidation,
		fmt.Sprintf("файл больше допустимых %d байт", h.maxImportBytes))
}
