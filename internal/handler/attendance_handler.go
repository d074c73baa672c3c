package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maktab-uz/maktab-api/internal/service"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
	"github.com/maktab-uz/maktab-api/pkg/response"
)

// AttendanceHandler exposes attendance marking and grid endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	overview   *service.OverviewService
	metrics    *service.MetricsService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, overview *service.OverviewService, metrics *service.MetricsService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, overview: overview, metrics: metrics}
}

// Upsert godoc
// @Summary Write one attendance mark
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.AttendanceWriteRequest true "Mark payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Upsert(c *gin.Context) {
	var req service.AttendanceWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	att, err := h.attendance.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.overview.Invalidate(c.Request.Context(), att.StudentID)
	response.JSON(c, http.StatusOK, att)
}

// BulkMark godoc
// @Summary Mark a class grid for one date
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.BulkMarkRequest true "Bulk payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/bulk [post]
func (h *AttendanceHandler) BulkMark(c *gin.Context) {
	var req service.BulkMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.attendance.BulkMark(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveBulkResult("attendance", len(result.IDs), len(result.Skipped))
	}
	h.overview.Invalidate(c.Request.Context(), 0)
	response.JSON(c, http.StatusOK, result)
}

// Lookup godoc
// @Summary Read marks back for a grid
// @Tags Attendance
// @Produce json
// @Param class query int true "Class"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param schedule query int false "Schedule slot"
// @Param subject query int false "Subject"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) Lookup(c *gin.Context) {
	classID, err := queryInt64(c, "class")
	if err != nil {
		response.Error(c, err)
		return
	}
	scheduleID, err := queryInt64Ptr(c, "schedule")
	if err != nil {
		response.Error(c, err)
		return
	}
	subjectID, err := queryInt64Ptr(c, "subject")
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.attendance.Lookup(c.Request.Context(), service.AttendanceLookupRequest{
		ClassID:    classID,
		Date:       c.Query("date"),
		ScheduleID: scheduleID,
		SubjectID:  subjectID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}
