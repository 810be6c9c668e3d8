package app

import (
	"gamify_backend/docs"
	"gamify_backend/internal/config"
	"gamify_backend/internal/middleware"
	"gamify_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerEmployeeRoutes(authGroup, c)
		a.registerModerationRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerEmployeeRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/me", c.auth.Me)

	// 测试目录
	group.GET("/tests", middleware.RequireCapability("tests", "read"), c.test.List)
	group.GET("/tests/:id", middleware.RequireCapability("tests", "read"), c.test.Get)
	group.GET("/tests/:id/prerequisites", middleware.RequireCapability("tests", "read"), c.test.Prerequisites)

	// 答题
	group.POST("/tests/:id/attempts", middleware.RequireCapability("attempts", "write"), c.attempt.Start)
	group.POST("/attempts/:id/submit", middleware.RequireCapability("attempts", "write"), c.attempt.Submit)
	group.GET("/attempts", middleware.RequireCapability("attempts", "read"), c.attempt.ListMine)
	group.GET("/attempts/:id/result", middleware.RequireCapability("attempts", "read"), c.attempt.Result)

	// 档案
	group.GET("/employees/:id", middleware.RequireCapability("employees", "read"), c.employee.Get)
	group.GET("/employees/:id/logs", middleware.RequireCapability("employees", "read"), c.employee.Logs)
	group.GET("/employees/:id/karma", middleware.RequireCapability("employees", "read"), c.employee.KarmaHistory)
	group.POST("/employees/avatar", middleware.RequireCapability("employees", "write"), c.employee.UploadAvatar)

	// 成就与排行
	group.GET("/achievements", middleware.RequireCapability("achievements", "read"), c.achievement.List)
	group.GET("/achievements/mine", middleware.RequireCapability("achievements", "read"), c.achievement.Mine)
	group.GET("/leaderboard", middleware.RequireCapability("achievements", "read"), c.achievement.Leaderboard)
}

func (a *App) registerModerationRoutes(group *gin.RouterGroup, c *controllers) {
	moderation := group.Group("/moderation")
	moderation.Use(middleware.RequireCapability("attempts", "moderate"))
	{
		moderation.GET("/queue", c.attempt.ModerationQueue)
		moderation.POST("/attempts/:id", c.attempt.Moderate)
	}
}

func (a *App) registerAdminRoutes(group *gin.RouterGroup, c *controllers) {
	admin := group.Group("/admin")
	{
		admin.POST("/tests", middleware.RequireCapability("tests", "manage"), c.test.Create)
		admin.PUT("/tests/:id", middleware.RequireCapability("tests", "manage"), c.test.Update)
		admin.PATCH("/tests/:id/publish", middleware.RequireCapability("tests", "manage"), c.test.Publish)
		admin.DELETE("/attempts/:id", middleware.RequireCapability("tests", "manage"), c.attempt.Delete)

		admin.POST("/achievements", middleware.RequireCapability("achievements", "manage"), c.achievement.Create)

		admin.POST("/employees/:id/karma", middleware.RequireCapability("employees", "manage"), c.employee.AdjustKarma)
		admin.POST("/employees/:id/experience", middleware.RequireCapability("employees", "manage"), c.employee.GrantExperience)
		admin.PATCH("/employees/:id/active", middleware.RequireCapability("employees", "manage"), c.employee.SetActive)
	}
}
