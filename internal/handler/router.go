package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/fredora-academy/school-api/internal/middleware"
	"github.com/fredora-academy/school-api/internal/models"
	"github.com/fredora-academy/school-api/pkg/config"
	appErrors "github.com/fredora-academy/school-api/pkg/errors"
	"github.com/fredora-academy/school-api/pkg/logger"
	"github.com/fredora-academy/school-api/pkg/middleware/cors"
	"github.com/fredora-academy/school-api/pkg/middleware/requestid"
	"github.com/fredora-academy/school-api/pkg/response"
)

// Handlers bundles every route handler for router construction.
type Handlers struct {
	Auth       *AuthHandler
	Users      *UserHandler
	Students   *StudentHandler
	Classes    *ClassHandler
	Subjects   *SubjectHandler
	Grades     *GradeHandler
	Attendance *AttendanceHandler
	Fees       *FeeHandler
	Reports    *ReportHandler
	Dashboard  *DashboardHandler
	Settings   *SettingHandler
}

// NewRouter assembles the gin engine with the full middleware chain and all
// API routes under the configured prefix.
func NewRouter(
	cfg *config.Config,
	log *zap.Logger,
	auth middleware.Authenticator,
	metrics *middleware.Metrics,
	registry prometheus.Gatherer,
	h Handlers,
) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.Middleware())
	router.Use(logger.GinMiddleware(log))
	router.Use(cors.New(cfg.CORS.AllowedOrigins))
	if metrics != nil {
		router.Use(metrics.Handler())
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}
	if cfg.Env != config.EnvProduction {
		router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authed := middleware.Auth(auth)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	api := router.Group(cfg.APIPrefix)
	{
		api.POST("/auth/login", h.Auth.Login)
		api.GET("/auth/verify", authed, h.Auth.Verify)

		users := api.Group("/users", authed)
		{
			users.GET("/my-classes", middleware.RequireRoles(models.RoleTeacher), h.Users.MyClasses)

			teachers := users.Group("/teachers", middleware.RequireCapability(middleware.CapManageUsers))
			{
				teachers.GET("", h.Users.ListTeachers)
				teachers.POST("", h.Users.CreateTeacher)
				teachers.GET("/:id", h.Users.GetTeacher)
				teachers.POST("/:id/reset-password", h.Users.ResetPassword)
				teachers.DELETE("/:id", h.Users.DeactivateTeacher)
				teachers.POST("/:id/classes", h.Users.SetClassAssignments)
				teachers.DELETE("/:id/classes/:classId", h.Users.RemoveClassAssignment)
			}
			users.POST("/assignments/bulk", middleware.RequireCapability(middleware.CapManageAssignments), h.Users.BulkAssignClasses)
		}

		students := api.Group("/students", authed)
		{
			students.GET("", h.Students.List)
			students.GET("/:id", h.Students.Get)

			manage := students.Group("", middleware.RequireCapability(middleware.CapManageStudents))
			{
				manage.POST("", h.Students.Enroll)
				manage.PUT("/:id", h.Students.Update)
				manage.DELETE("/:id", h.Students.Deactivate)
				manage.POST("/:id/promote", h.Students.Promote)
			}
		}

		classes := api.Group("/classes", authed)
		{
			classes.GET("", h.Classes.List)
			classes.GET("/:id", h.Classes.Get)

			manage := classes.Group("", middleware.RequireCapability(middleware.CapManageClasses))
			{
				manage.POST("", h.Classes.Create)
				manage.PUT("/:id", h.Classes.Update)
				manage.DELETE("/:id", h.Classes.Delete)
			}
		}

		subjects := api.Group("/subjects", authed)
		{
			subjects.GET("", h.Subjects.List)
			subjects.GET("/assignments", h.Subjects.ListAssignments)
			subjects.GET("/assignments/teacher/:id", h.Subjects.TeacherAssignments)
			subjects.GET("/teaching/:classId", h.Subjects.Teaching)
			subjects.GET("/:id", h.Subjects.Get)

			manage := subjects.Group("", middleware.RequireCapability(middleware.CapManageSubjects))
			{
				manage.POST("", h.Subjects.Create)
				manage.PUT("/:id", h.Subjects.Update)
				manage.DELETE("/:id", h.Subjects.Delete)
			}
			assign := subjects.Group("", middleware.RequireCapability(middleware.CapManageAssignments))
			{
				assign.POST("/assign", h.Subjects.Assign)
				assign.DELETE("/assignments/:id", h.Subjects.RemoveAssignment)
			}
		}

		grades := api.Group("/grades", authed, middleware.RequireCapability(middleware.CapRecordGrades))
		{
			grades.POST("", h.Grades.Submit)
			grades.POST("/batch-update", h.Grades.BatchSubmit)
			grades.GET("", h.Grades.List)
			grades.GET("/my-students", h.Grades.MyStudents)
			grades.GET("/class/:classId/students", h.Grades.ClassStudents)
			grades.PUT("/:id", h.Grades.Update)
			grades.DELETE("/:id", h.Grades.Delete)
		}

		attendance := api.Group("/attendance", authed, middleware.RequireCapability(middleware.CapMarkAttendance))
		{
			attendance.POST("", h.Attendance.Mark)
			attendance.GET("/class/:classId", h.Attendance.ClassRegister)
			attendance.GET("/student/:studentId", h.Attendance.StudentHistory)
		}

		fees := api.Group("/fees", authed, middleware.RequireCapability(middleware.CapManageFees))
		{
			fees.GET("", h.Fees.ListFees)
			fees.POST("", h.Fees.CreateFee)
			fees.PUT("/:id", h.Fees.UpdateFee)
			fees.POST("/payments", h.Fees.RecordPayment)
			fees.GET("/payments/student/:studentId", h.Fees.PaymentHistory)
			fees.GET("/balance/:studentId", h.Fees.Balance)
		}

		reports := api.Group("/reports", authed, middleware.RequireCapability(middleware.CapViewReports))
		{
			reports.GET("/academic/:studentId", h.Reports.Academic)
			reports.GET("/class/:classId", h.Reports.Class)
		}

		api.GET("/dashboard/stats", authed, middleware.RequireCapability(middleware.CapViewDashboard), h.Dashboard.Stats)

		settings := api.Group("/settings")
		{
			settings.GET("", h.Settings.List)
			settings.GET("/:key", h.Settings.Get)
			settings.PUT("", authed, adminOnly, h.Settings.Set)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	return router
}
