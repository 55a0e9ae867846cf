package app

import (
	"interview_backend/docs"
	"interview_backend/internal/config"
	"interview_backend/internal/middleware"
	"interview_backend/internal/util"
	"interview_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 候选人端（无需登录）
	a.registerPublicRoutes(router, c)

	// 2. 面试官端
	authGroup := router.Group("/api")
	authGroup.Use(middleware.ConfigMiddleware(cfg), middleware.AuthMiddleware(), middleware.RoleMiddleware(util.RoleInterviewer))
	{
		a.registerInterviewerRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/login", c.auth.Login)
		public.POST("/resume/upload", c.resume.Upload)
	}

	interview := router.Group("/api/interview")
	{
		interview.GET("", c.interview.GetSession)
		interview.POST("/begin", c.interview.Begin)
		interview.POST("/info", c.interview.ProvideInfo)
		interview.POST("/answer", c.interview.Answer)
		interview.POST("/pause", c.interview.Pause)
		interview.POST("/resume", c.interview.Resume)
		interview.POST("/confirm-pause", c.interview.ConfirmPause)
		interview.POST("/complete", c.interview.Complete)
		interview.POST("/reset", c.interview.Reset)
		interview.POST("/end", c.interview.End)
		interview.POST("/activity", c.interview.Activity)
		interview.POST("/modal", c.interview.SetModal)
		interview.DELETE("/chat", c.interview.ClearChat)
	}
}

func (a *App) registerInterviewerRoutes(rg *gin.RouterGroup, c *controllers) {
	candidates := rg.Group("/candidates")
	{
		candidates.GET("", c.dashboard.ListCandidates)
		candidates.GET("/stats", c.dashboard.GetStats)
		candidates.POST("/cleanup", c.dashboard.CleanupDuplicates)
		candidates.GET("/:id", c.dashboard.GetCandidate)
		candidates.DELETE("/:id", c.dashboard.DeleteCandidate)
	}

	rg.DELETE("/admin/database", c.admin.ClearDatabase)
}
