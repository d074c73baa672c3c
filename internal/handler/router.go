package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maktab-uz/maktab-api/internal/middleware"
	"github.com/maktab-uz/maktab-api/internal/models"
	"github.com/maktab-uz/maktab-api/internal/service"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth       *AuthHandler
	Subjects   *SubjectHandler
	Teachers   *TeacherHandler
	Classes    *ClassHandler
	Students   *StudentHandler
	Schedule   *ScheduleHandler
	Attendance *AttendanceHandler
	Grades     *GradeHandler
	Config     *GradeConfigHandler
	Enrollment *EnrollmentHandler
}

type guardianLinkChecker interface {
	Exists(ctx context.Context, guardianID, studentID int64) (bool, error)
}

// RegisterRoutes mounts the API surface under the given prefix.
// Reference data is registrar-writable, attendance and grades are
// teacher-writable, parents reach only their own children's overview.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, auth *service.AuthService, metrics *service.MetricsService, guardians guardianLinkChecker) {
	if metrics != nil {
		r.Use(middleware.Metrics(metrics))
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	api := r.Group(prefix)
	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(auth))
	authed.GET("/auth/me", h.Auth.Me)

	registrar := middleware.RequireRoles(models.RoleRegistrar)
	teaching := middleware.RequireRoles(models.RoleRegistrar, models.RoleTeacher)
	staff := middleware.RequireRoles(models.RoleRegistrar, models.RoleTeacher, models.RoleOperator)

	subjects := authed.Group("/subjects")
	{
		subjects.GET("", staff, h.Subjects.List)
		subjects.GET("/:id", staff, h.Subjects.Get)
		subjects.POST("", registrar, h.Subjects.Create)
		subjects.PUT("/:id", registrar, h.Subjects.Update)
		subjects.DELETE("/:id", registrar, h.Subjects.Delete)
	}

	teachers := authed.Group("/teachers")
	{
		teachers.GET("", staff, h.Teachers.List)
		teachers.GET("/me/timetable", middleware.RequireRoles(models.RoleTeacher), h.Teachers.MyTimetable)
		teachers.GET("/me/classes", middleware.RequireRoles(models.RoleTeacher), h.Teachers.MyClasses)
		teachers.GET("/:id", staff, h.Teachers.Get)
		teachers.POST("", registrar, h.Teachers.Create)
		teachers.PUT("/:id", registrar, h.Teachers.Update)
		teachers.DELETE("/:id", registrar, h.Teachers.Delete)
	}

	classes := authed.Group("/classes")
	{
		classes.GET("", staff, h.Classes.List)
		classes.GET("/:id", staff, h.Classes.Get)
		classes.POST("", registrar, h.Classes.Create)
		classes.PUT("/:id", registrar, h.Classes.Update)
		classes.DELETE("/:id", registrar, h.Classes.Delete)
		classes.GET("/:id/students", staff, h.Classes.Students)
		classes.GET("/:id/ranking", teaching, h.Classes.Ranking)
		classes.GET("/:id/ranking/export", teaching, h.Classes.ExportRanking)
		classes.GET("/:id/attendance-week", teaching, h.Classes.AttendanceWeek)
		classes.GET("/:id/gradebook/daily", teaching, h.Classes.DailyGradebook)
		classes.GET("/:id/gradebook", teaching, h.Classes.TermGradebook)
	}

	students := authed.Group("/students")
	{
		students.GET("/:id", middleware.GuardianOf("id", guardians), h.Students.Get)
		students.GET("/:id/overview", middleware.GuardianOf("id", guardians), h.Students.Overview)
		students.POST("", registrar, h.Students.Create)
		students.PUT("/:id", registrar, h.Students.Update)
		students.DELETE("/:id", registrar, h.Students.Delete)
	}

	schedule := authed.Group("/schedule")
	{
		schedule.GET("", staff, h.Schedule.List)
		schedule.POST("", registrar, h.Schedule.Create)
		schedule.PUT("/:id", registrar, h.Schedule.Update)
		schedule.DELETE("/:id", registrar, h.Schedule.Delete)
	}

	attendance := authed.Group("/attendance")
	{
		attendance.GET("", teaching, h.Attendance.Lookup)
		attendance.POST("", teaching, h.Attendance.Upsert)
		attendance.POST("/bulk", teaching, h.Attendance.BulkMark)
	}

	grades := authed.Group("/grades")
	{
		grades.GET("", teaching, h.Grades.List)
		grades.POST("", teaching, h.Grades.Set)
		grades.POST("/bulk", teaching, h.Grades.BulkSet)
		grades.DELETE("/:id", teaching, h.Grades.Delete)
	}

	config := authed.Group("/grading-config")
	{
		config.GET("", teaching, h.Config.ActivePolicy)
		config.GET("/scales", registrar, h.Config.ListScales)
		config.POST("/scales", registrar, h.Config.CreateScale)
		config.PUT("/scales/:id", registrar, h.Config.UpdateScale)
		config.GET("/weights", registrar, h.Config.ListWeights)
		config.POST("/weights", registrar, h.Config.CreateWeights)
		config.PUT("/weights/:id", registrar, h.Config.UpdateWeights)
	}

	authed.POST("/enroll", middleware.RequireRoles(models.RoleOperator, models.RoleRegistrar), h.Enrollment.Enroll)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
