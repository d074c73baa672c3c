package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maktab-uz/maktab-api/internal/middleware"
	"github.com/maktab-uz/maktab-api/internal/models"
	"github.com/maktab-uz/maktab-api/internal/service"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
	"github.com/maktab-uz/maktab-api/pkg/response"
)

// TeacherHandler exposes teacher profiles and teacher-scoped views.
type TeacherHandler struct {
	teachers *service.TeacherService
	classes  *service.ClassService
}

// NewTeacherHandler constructs TeacherHandler.
func NewTeacherHandler(teachers *service.TeacherService, classes *service.ClassService) *TeacherHandler {
	return &TeacherHandler{teachers: teachers, classes: classes}
}

// List returns all teachers.
func (h *TeacherHandler) List(c *gin.Context) {
	teachers, err := h.teachers.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers)
}

// Get returns one teacher.
func (h *TeacherHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	teacher, err := h.teachers.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher)
}

// Create adds a teaching profile.
func (h *TeacherHandler) Create(c *gin.Context) {
	var req service.TeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	teacher, err := h.teachers.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher)
}

// Update replaces a teaching profile.
func (h *TeacherHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.TeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	teacher, err := h.teachers.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher)
}

// Delete removes a teaching profile.
func (h *TeacherHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.teachers.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MyTimetable godoc
// @Summary The authenticated teacher's weekly timetable
// @Tags Teachers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers/me/timetable [get]
func (h *TeacherHandler) MyTimetable(c *gin.Context) {
	teacher, ok := h.myProfile(c)
	if !ok {
		return
	}
	slots, err := h.teachers.Timetable(c.Request.Context(), teacher.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots)
}

// MyClasses godoc
// @Summary Classes the authenticated teacher works with
// @Tags Teachers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers/me/classes [get]
func (h *TeacherHandler) MyClasses(c *gin.Context) {
	teacher, ok := h.myProfile(c)
	if !ok {
		return
	}
	classes, err := h.classes.ListByTeacher(c.Request.Context(), teacher.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes)
}

func (h *TeacherHandler) myProfile(c *gin.Context) (*models.Teacher, bool) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	teacher, err := h.teachers.ProfileForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return teacher, true
}
