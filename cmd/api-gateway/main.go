package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/maktab-uz/maktab-api/api/swagger"
	"github.com/maktab-uz/maktab-api/internal/handler"
	"github.com/maktab-uz/maktab-api/internal/repository"
	"github.com/maktab-uz/maktab-api/internal/service"
	"github.com/maktab-uz/maktab-api/pkg/cache"
	"github.com/maktab-uz/maktab-api/pkg/config"
	"github.com/maktab-uz/maktab-api/pkg/database"
	"github.com/maktab-uz/maktab-api/pkg/export"
	"github.com/maktab-uz/maktab-api/pkg/jobs"
	"github.com/maktab-uz/maktab-api/pkg/logger"
	corsmiddleware "github.com/maktab-uz/maktab-api/pkg/middleware/cors"
	reqidmiddleware "github.com/maktab-uz/maktab-api/pkg/middleware/requestid"
)

// @title Maktab API
// @version 1.0.0
// @description School records API: timetable, attendance, grades, ranking
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	subjectRepo := repository.NewSubjectRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	classRepo := repository.NewClassRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	configRepo := repository.NewGradingConfigRepository(db)
	userRepo := repository.NewUserRepository(db)
	guardianRepo := repository.NewGuardianRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, cfg.JWT, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate)
	teacherSvc := service.NewTeacherService(teacherRepo, scheduleRepo, validate)
	classSvc := service.NewClassService(classRepo, studentRepo, validate)
	studentSvc := service.NewStudentService(studentRepo, validate)
	scheduleSvc := service.NewScheduleService(scheduleRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, scheduleRepo, studentRepo, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, studentRepo, validate, logr)
	aggregationSvc := service.NewAggregationService(gradeRepo, scheduleRepo, subjectRepo, configRepo, cfg.Grading, logr)
	rankingSvc := service.NewRankingService(classRepo, studentRepo, gradeRepo, aggregationSvc, logr)
	gradebookSvc := service.NewGradebookService(classRepo, studentRepo, attendanceRepo, gradeRepo, logr)
	overviewSvc := service.NewOverviewService(studentRepo, classRepo, subjectRepo, scheduleRepo, attendanceRepo, gradeRepo, aggregationSvc, rankingSvc, cacheRepo, cfg.Overview, logr)
	if cfg.Overview.CacheEnabled {
		warmQueue := jobs.NewQueue("overview-warm", jobs.Options{Workers: 2, MaxRetries: 1, Logger: logr})
		defer warmQueue.Stop()
		overviewSvc.AttachWarmQueue(warmQueue)
	}
	enrollmentSvc := service.NewEnrollmentService(studentRepo, userRepo, guardianRepo, validate, logr)
	configSvc := service.NewGradingConfigService(configRepo, validate)

	csvExporter := export.NewCSVExporter()
	pdfExporter := export.NewPDFExporter()

	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Subjects:   handler.NewSubjectHandler(subjectSvc),
		Teachers:   handler.NewTeacherHandler(teacherSvc, classSvc),
		Classes:    handler.NewClassHandler(classSvc, rankingSvc, gradebookSvc, csvExporter, pdfExporter),
		Students:   handler.NewStudentHandler(studentSvc, overviewSvc),
		Schedule:   handler.NewScheduleHandler(scheduleSvc, metricsSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc, overviewSvc, metricsSvc),
		Grades:     handler.NewGradeHandler(gradeSvc, overviewSvc, metricsSvc),
		Config:     handler.NewGradeConfigHandler(configSvc),
		Enrollment: handler.NewEnrollmentHandler(enrollmentSvc),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	handler.RegisterRoutes(r, cfg.APIPrefix, handlers, authSvc, metricsSvc, guardianRepo)

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "grading_strategy", cfg.Grading.Strategy)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
