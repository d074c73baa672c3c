package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maktab-uz/maktab-api/internal/service"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
	"github.com/maktab-uz/maktab-api/pkg/response"
)

// EnrollmentHandler exposes the operator enrollment flow.
type EnrollmentHandler struct {
	enrollment *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollment *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollment: enrollment}
}

// Enroll godoc
// @Summary Enroll a student and provision the parent account
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /enroll [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.enrollment.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
