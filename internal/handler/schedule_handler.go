package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maktab-uz/maktab-api/internal/models"
	"github.com/maktab-uz/maktab-api/internal/service"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
	"github.com/maktab-uz/maktab-api/pkg/response"
)

// ScheduleHandler exposes timetable endpoints.
type ScheduleHandler struct {
	schedules *service.ScheduleService
	metrics   *service.MetricsService
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(schedules *service.ScheduleService, metrics *service.MetricsService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, metrics: metrics}
}

// List godoc
// @Summary List timetable slots
// @Tags Schedule
// @Produce json
// @Param class query int false "Filter by class"
// @Param teacher query int false "Filter by teacher"
// @Param weekday query int false "Filter by weekday (1=Mon..6=Sat)"
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	var filter models.ScheduleFilter
	var err error
	if filter.ClassID, err = queryInt64(c, "class"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.TeacherID, err = queryInt64(c, "teacher"); err != nil {
		response.Error(c, err)
		return
	}
	weekday, err := queryInt64(c, "weekday")
	if err != nil {
		response.Error(c, err)
		return
	}
	filter.Weekday = int(weekday)

	slots, err := h.schedules.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots)
}

// Create godoc
// @Summary Create a timetable slot
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body service.SaveScheduleRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req service.SaveScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.schedules.Create(c.Request.Context(), req)
	if err != nil {
		h.observeConflict(err)
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Update godoc
// @Summary Update a timetable slot
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path int true "Slot ID"
// @Param payload body service.SaveScheduleRequest true "Slot payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.SaveScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.schedules.Update(c.Request.Context(), id, req)
	if err != nil {
		h.observeConflict(err)
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry)
}

// Delete removes a timetable slot.
func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.schedules.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *ScheduleHandler) observeConflict(err error) {
	if h.metrics == nil {
		return
	}
	if appErr := appErrors.FromError(err); appErr.Code == appErrors.ErrScheduleConflict.Code {
		h.metrics.ObserveScheduleConflict()
	}
}
