package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	_ "github.com/fredora-academy/school-api/api/swagger"
	"github.com/fredora-academy/school-api/internal/handler"
	"github.com/fredora-academy/school-api/internal/middleware"
	"github.com/fredora-academy/school-api/internal/repository"
	"github.com/fredora-academy/school-api/internal/service"
	"github.com/fredora-academy/school-api/pkg/cache"
	"github.com/fredora-academy/school-api/pkg/config"
	"github.com/fredora-academy/school-api/pkg/database"
	"github.com/fredora-academy/school-api/pkg/logger"
)

// @title Fredora Academy School API
// @version 1.0
// @description Student enrollment, attendance, grading and fee management.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The API runs without Redis; the dashboard just skips its cache.
		log.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	validate := validator.New()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	classAssignRepo := repository.NewClassAssignmentRepository(db)
	subjectAssignRepo := repository.NewSubjectAssignmentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	feeRepo := repository.NewFeeRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, metrics)

	authService := service.NewAuthService(userRepo, cfg.JWT, validate, log)
	userService := service.NewUserService(userRepo, classAssignRepo, validate, log)
	assignmentService := service.NewAssignmentService(classAssignRepo, subjectAssignRepo, userRepo, classRepo, subjectRepo, validate, log)
	studentService := service.NewStudentService(studentRepo, classRepo, validate, log)
	classService := service.NewClassService(classRepo, studentRepo, validate, log)
	subjectService := service.NewSubjectService(subjectRepo, gradeRepo, validate, log)
	gradeService := service.NewGradeService(gradeRepo, studentRepo, classAssignRepo, subjectRepo, validate, log)
	attendanceService := service.NewAttendanceService(attendanceRepo, classAssignRepo, studentRepo, validate, log)
	feeService := service.NewFeeService(feeRepo, studentRepo, classRepo, validate, log)
	reportService := service.NewReportService(gradeRepo, studentRepo, classRepo, classAssignRepo, cfg.Reports, log)
	settingService := service.NewSettingService(settingRepo, validate, log)
	dashboardService := service.NewDashboardService(dashboardRepo, attendanceRepo, feeRepo, cacheRepo, cfg.Dashboard, log)

	router := handler.NewRouter(cfg, log, authService, metrics, registry, handler.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Users:      handler.NewUserHandler(userService, assignmentService),
		Students:   handler.NewStudentHandler(studentService),
		Classes:    handler.NewClassHandler(classService),
		Subjects:   handler.NewSubjectHandler(subjectService, assignmentService),
		Grades:     handler.NewGradeHandler(gradeService),
		Attendance: handler.NewAttendanceHandler(attendanceService),
		Fees:       handler.NewFeeHandler(feeService),
		Reports:    handler.NewReportHandler(reportService),
		Dashboard:  handler.NewDashboardHandler(dashboardService),
		Settings:   handler.NewSettingHandler(settingService),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.Int("port", cfg.Port), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
