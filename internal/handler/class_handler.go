package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maktab-uz/maktab-api/internal/models"
	"github.com/maktab-uz/maktab-api/internal/service"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
	"github.com/maktab-uz/maktab-api/pkg/export"
	"github.com/maktab-uz/maktab-api/pkg/response"
)

// ClassHandler exposes class CRUD plus the class-scoped views: roster,
// ranking, weekly attendance grid and the gradebooks.
type ClassHandler struct {
	classes    *service.ClassService
	ranking    *service.RankingService
	gradebooks *service.GradebookService
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
}

// NewClassHandler constructs ClassHandler.
func NewClassHandler(classes *service.ClassService, ranking *service.RankingService, gradebooks *service.GradebookService, csv *export.CSVExporter, pdf *export.PDFExporter) *ClassHandler {
	return &ClassHandler{classes: classes, ranking: ranking, gradebooks: gradebooks, csv: csv, pdf: pdf}
}

// List returns all classes with roster sizes.
func (h *ClassHandler) List(c *gin.Context) {
	classes, err := h.classes.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes)
}

// Get returns one class.
func (h *ClassHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	class, err := h.classes.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class)
}

// Create adds a class.
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.ClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	class, err := h.classes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Update replaces a class.
func (h *ClassHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.ClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	class, err := h.classes.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class)
}

// Delete removes a class.
func (h *ClassHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.classes.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Students godoc
// @Summary Class roster in alphabetical order
// @Tags Classes
// @Produce json
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students [get]
func (h *ClassHandler) Students(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	students, err := h.classes.Students(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// Ranking godoc
// @Summary Class ranking by overall average
// @Tags Classes
// @Produce json
// @Param id path int true "Class ID"
// @Param term query string false "Term"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/ranking [get]
func (h *ClassHandler) Ranking(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	ranking, err := h.ranking.ClassRanking(c.Request.Context(), id, c.Query("term"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ranking)
}

// ExportRanking godoc
// @Summary Export the class ranking as CSV or PDF
// @Tags Classes
// @Produce text/csv
// @Param id path int true "Class ID"
// @Param term query string false "Term"
// @Param format query string false "csv or pdf"
// @Success 200 {file} byte
// @Router /classes/{id}/ranking/export [get]
func (h *ClassHandler) ExportRanking(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	ranking, err := h.ranking.ClassRanking(c.Request.Context(), id, c.Query("term"))
	if err != nil {
		response.Error(c, err)
		return
	}

	data := export.Dataset{
		Title:   fmt.Sprintf("Class %d ranking", ranking.ClassID),
		Columns: []string{"Rank", "Student", "Average", "Subjects"},
	}
	for _, row := range ranking.Ranking {
		data.Rows = append(data.Rows, []string{
			fmt.Sprintf("%d", row.Rank),
			row.Name,
			fmt.Sprintf("%.2f", row.Avg),
			fmt.Sprintf("%d", row.SubjectsCounted),
		})
	}

	filename := fmt.Sprintf("ranking-class-%d", id)
	if c.DefaultQuery("format", "csv") == "pdf" {
		body, err := h.pdf.Render(data)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
			return
		}
		c.Header("Content-Disposition", "attachment; filename="+filename+".pdf")
		c.Data(http.StatusOK, "application/pdf", body)
		return
	}
	body, err := h.csv.Render(data)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename+".csv")
	c.Data(http.StatusOK, "text/csv", body)
}

// AttendanceWeek godoc
// @Summary Weekly attendance grid (Mon-Sat)
// @Tags Classes
// @Produce json
// @Param id path int true "Class ID"
// @Param date query string false "Any date inside the week (YYYY-MM-DD), today by default"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/attendance-week [get]
func (h *ClassHandler) AttendanceWeek(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	anchor, err := weekAnchor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	grid, err := h.gradebooks.AttendanceWeek(c.Request.Context(), id, anchor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid)
}

// DailyGradebook returns the week's daily-grade grid.
func (h *ClassHandler) DailyGradebook(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	anchor, err := weekAnchor(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	book, err := h.gradebooks.DailyGradebook(c.Request.Context(), id, anchor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, book)
}

// TermGradebook returns the exam or final book for a term.
func (h *ClassHandler) TermGradebook(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	book, err := h.gradebooks.TermGradebook(c.Request.Context(), id, models.GradeType(c.Query("type")), c.Query("term"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, book)
}

func weekAnchor(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), nil
	}
	anchor, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	return anchor, nil
}
