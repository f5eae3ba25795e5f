package app

import (
	"scorm_host_backend/docs"
	"scorm_host_backend/internal/config"
	"scorm_host_backend/internal/middleware"
	"scorm_host_backend/internal/model"
	"scorm_host_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		// 内容运行时，学习者本人或管理员
		a.registerScormRoutes(authGroup, c)

		// 课程与用户管理
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/token", c.auth.IssueToken)
	}
}

func (a *App) registerScormRoutes(group *gin.RouterGroup, c *controllers) {
	scorm := group.Group("/scorm")
	{
		scorm.POST("/launch", c.scorm.Launch)

		attempts := scorm.Group("/attempts/:attemptId")
		attempts.GET("", c.scorm.GetAttempt)
		attempts.POST("/commit", c.scorm.Commit)
		attempts.POST("/finish", c.scorm.Finish)
		attempts.POST("/resume", c.scorm.Resume)
		attempts.GET("/progress", c.scorm.AttemptProgress)

		users := scorm.Group("/users/:userId/courses/:courseId")
		users.GET("/progress", c.scorm.UserProgress)
		users.GET("/attempts", c.scorm.ListAttempts)
	}

	group.GET("/courses", c.course.ListCourses)
	group.GET("/courses/:id", c.course.GetCourse)
}

func (a *App) registerAdminRoutes(group *gin.RouterGroup, c *controllers) {
	admin := group.Group("")
	admin.Use(middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.POST("/courses", c.course.RegisterCourse)
		admin.DELETE("/courses/:id", c.course.DeleteCourse)
		admin.POST("/users", c.auth.RegisterUser)
	}
}
