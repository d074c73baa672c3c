package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maktab-uz/maktab-api/internal/models"
	"github.com/maktab-uz/maktab-api/internal/service"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
	"github.com/maktab-uz/maktab-api/pkg/response"
)

// GradeHandler exposes grade entry endpoints.
type GradeHandler struct {
	grades   *service.GradeService
	overview *service.OverviewService
	metrics  *service.MetricsService
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades *service.GradeService, overview *service.OverviewService, metrics *service.MetricsService) *GradeHandler {
	return &GradeHandler{grades: grades, overview: overview, metrics: metrics}
}

// List godoc
// @Summary List grades
// @Tags Grades
// @Produce json
// @Param student query int false "Filter by student"
// @Param subject query int false "Filter by subject"
// @Param class query int false "Filter by class"
// @Param type query string false "Filter by category"
// @Param term query string false "Filter by term"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	var filter models.GradeFilter
	var err error
	if filter.StudentID, err = queryInt64(c, "student"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.SubjectID, err = queryInt64(c, "subject"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.ClassID, err = queryInt64(c, "class"); err != nil {
		response.Error(c, err)
		return
	}
	filter.Type = models.GradeType(c.Query("type"))
	filter.Term = c.Query("term")
	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD"))
			return
		}
		filter.Date = &date
	}

	grades, err := h.grades.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades)
}

// Set writes a single grade entry.
func (h *GradeHandler) Set(c *gin.Context) {
	var req service.GradeWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.grades.Set(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.overview.Invalidate(c.Request.Context(), grade.StudentID)
	response.JSON(c, http.StatusOK, grade)
}

// BulkSet godoc
// @Summary Write a gradebook column
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.BulkSetRequest true "Bulk payload"
// @Success 200 {object} response.Envelope
// @Router /grades/bulk [post]
func (h *GradeHandler) BulkSet(c *gin.Context) {
	var req service.BulkSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.grades.BulkSet(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveBulkResult("grades", len(result.IDs), len(result.Skipped))
	}
	h.overview.Invalidate(c.Request.Context(), 0)
	response.JSON(c, http.StatusOK, result)
}

// Delete removes a grade entry.
func (h *GradeHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.grades.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	h.overview.Invalidate(c.Request.Context(), 0)
	response.NoContent(c)
}
