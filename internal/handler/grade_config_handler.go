package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maktab-uz/maktab-api/internal/service"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
	"github.com/maktab-uz/maktab-api/pkg/response"
)

// GradeConfigHandler exposes grade scale and GPA weight administration.
type GradeConfigHandler struct {
	config *service.GradingConfigService
}

// NewGradeConfigHandler constructs GradeConfigHandler.
func NewGradeConfigHandler(config *service.GradingConfigService) *GradeConfigHandler {
	return &GradeConfigHandler{config: config}
}

// ActivePolicy returns the active scale and weights.
func (h *GradeConfigHandler) ActivePolicy(c *gin.Context) {
	policy, err := h.config.ActivePolicy(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, policy)
}

// ListScales returns all grade scales.
func (h *GradeConfigHandler) ListScales(c *gin.Context) {
	scales, err := h.config.ListScales(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scales)
}

// CreateScale adds a grade scale.
func (h *GradeConfigHandler) CreateScale(c *gin.Context) {
	var req service.GradeScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	scale, err := h.config.SaveScale(c.Request.Context(), 0, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, scale)
}

// UpdateScale replaces a grade scale.
func (h *GradeConfigHandler) UpdateScale(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.GradeScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	scale, err := h.config.SaveScale(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scale)
}

// ListWeights returns all GPA weight rows.
func (h *GradeConfigHandler) ListWeights(c *gin.Context) {
	weights, err := h.config.ListWeights(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, weights)
}

// CreateWeights adds a GPA weight row.
func (h *GradeConfigHandler) CreateWeights(c *gin.Context) {
	var req service.GPAConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	weights, err := h.config.SaveWeights(c.Request.Context(), 0, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, weights)
}

// UpdateWeights replaces a GPA weight row.
func (h *GradeConfigHandler) UpdateWeights(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.GPAConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	weights, err := h.config.SaveWeights(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, weights)
}
