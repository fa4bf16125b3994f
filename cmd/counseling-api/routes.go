package main

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/counseling-api/internal/handler"
	"github.com/noah-isme/counseling-api/internal/middleware"
	"github.com/noah-isme/counseling-api/internal/models"
	"github.com/noah-isme/counseling-api/internal/service"
	"github.com/noah-isme/counseling-api/pkg/config"
	"github.com/noah-isme/counseling-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/counseling-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/counseling-api/pkg/middleware/requestid"
)

type routeServices struct {
	auth       *service.AuthService
	sessions   *service.SessionService
	students   *service.StudentService
	counselors *service.CounselorService
	admins     *service.AdminService
	topics     *service.TopicService
	reports    *service.ReportService
	audit      *service.AuditService
	metrics    *service.MetricsService
	db         *sqlx.DB
}

func newRouter(cfg *config.Config, logr *zap.Logger, s routeServices) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(s.metrics))

	metricsHandler := handler.NewMetricsHandler(s.metrics, s.db, logr)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	admin := middleware.RequireRoles(models.RoleAdmin)
	api := r.Group(cfg.APIPrefix)

	authHandler := handler.NewAuthHandler(s.auth)
	loginLimiter := middleware.NewIPRateLimiter(cfg.RateLimit.LoginRate, cfg.RateLimit.LoginBurst)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", middleware.RateLimit(loginLimiter), authHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(s.auth))
	secured.GET("/auth/me", authHandler.Me)

	sessionHandler := handler.NewSessionHandler(s.sessions)
	sessions := secured.Group("/sessions")
	sessions.POST("", middleware.RequireRoles(models.RoleMahasiswa), sessionHandler.Create)
	sessions.GET("", admin, sessionHandler.List)
	sessions.GET("/mine", middleware.RequireRoles(models.RoleMahasiswa, models.RoleKonselor), sessionHandler.Mine)
	sessions.GET("/completed", middleware.RequireRoles(models.RoleAdmin, models.RoleKonselor), sessionHandler.Completed)
	sessions.GET("/by-specialization", admin, sessionHandler.BySpecialization)
	sessions.GET("/status-distribution", admin, sessionHandler.StatusDistribution)
	sessions.POST("/transfer", admin, sessionHandler.Transfer)
	sessions.GET("/:id", sessionHandler.Get)
	sessions.PUT("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleKonselor), sessionHandler.Update)
	sessions.PUT("/:id/schedule", middleware.RequireRoles(models.RoleAdmin, models.RoleKonselor), sessionHandler.Reschedule)
	sessions.DELETE("/:id", admin, sessionHandler.Delete)

	topicHandler := handler.NewTopicHandler(s.topics)
	topics := secured.Group("/topics")
	topics.GET("", topicHandler.List)
	topics.GET("/:id", topicHandler.Get)
	topics.POST("", admin, topicHandler.Create)
	topics.PUT("/:id", admin, topicHandler.Update)
	topics.DELETE("/:id", admin, topicHandler.Delete)

	studentHandler := handler.NewStudentHandler(s.students)
	students := secured.Group("/students")
	students.GET("", admin, studentHandler.List)
	students.GET("/recent-activity", admin, studentHandler.RecentActivity)
	students.GET("/by-topic", admin, studentHandler.ByTopic)
	students.GET("/recurring-issues", admin, studentHandler.RecurringIssues)
	students.GET("/me/recommendations", middleware.RequireRoles(models.RoleMahasiswa), studentHandler.Recommendations)
	students.GET("/:id", middleware.RequireRolesOrSelf("id", models.RoleAdmin), studentHandler.Get)
	students.PUT("/:id", middleware.RequireRolesOrSelf("id", models.RoleAdmin), studentHandler.Update)
	students.DELETE("/:id", admin, studentHandler.Delete)

	counselorHandler := handler.NewCounselorHandler(s.counselors)
	counselors := secured.Group("/counselors")
	counselors.GET("", admin, counselorHandler.List)
	counselors.GET("/idle", admin, counselorHandler.Idle)
	counselors.GET("/session-summary", admin, counselorHandler.SessionSummary)
	counselors.GET("/:id", middleware.RequireRolesOrSelf("id", models.RoleAdmin), counselorHandler.Get)
	counselors.PUT("/:id", middleware.RequireRolesOrSelf("id", models.RoleAdmin), counselorHandler.Update)
	counselors.DELETE("/:id", admin, counselorHandler.Delete)
	counselors.POST("/:id/topics", middleware.RequireRolesOrSelf("id", models.RoleAdmin), counselorHandler.AddExpertise)
	counselors.DELETE("/:id/topics/:topicId", middleware.RequireRolesOrSelf("id", models.RoleAdmin), counselorHandler.RemoveExpertise)

	adminHandler := handler.NewAdminHandler(s.admins)
	admins := secured.Group("/admins", admin)
	admins.GET("", adminHandler.List)
	admins.GET("/:id", adminHandler.Get)
	admins.PUT("/:id", adminHandler.Update)
	admins.DELETE("/:id", adminHandler.Delete)

	reportHandler := handler.NewReportHandler(s.reports)
	reports := secured.Group("/reports", admin, middleware.WithResponseMeta())
	reports.GET("/monthly", reportHandler.Monthly)
	reports.GET("/monthly/export", middleware.Audit(s.audit, models.AuditActionReportExport, "report", ""), reportHandler.Export)

	return r
}
