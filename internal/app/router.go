package app

import (
	"edu_consult_backend/internal/config"
	"edu_consult_backend/internal/middleware"
	"edu_consult_backend/internal/model"
	"edu_consult_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 2. 顾问目录：可选认证，游客也能浏览，登录用户顺带刷新活跃度
	browse := router.Group("/api")
	browse.Use(middleware.TryAuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		browse.GET("/counselors", c.counselor.Search)
		browse.GET("/counselors/:id", c.counselor.GetByID)
		browse.GET("/counselors/:id/reviews", c.counselor.ListReviews)
	}

	// 3. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		authGroup.GET("/counselors/me", middleware.RoleMiddleware(model.RoleCounselor), c.counselor.GetOwnProfile)
		authGroup.PUT("/counselors/me", middleware.RoleMiddleware(model.RoleCounselor), c.counselor.UpdateProfile)

		// 学生画像与匹配
		student := authGroup.Group("/")
		student.Use(middleware.RoleMiddleware(model.Student))
		{
			student.GET("/students/profile", c.student.GetProfile)
			student.PUT("/students/profile", c.student.UpsertProfile)
			student.GET("/matches", c.matching.FindMatches)
		}

		// 连接生命周期
		connections := authGroup.Group("/connections")
		{
			connections.POST("", middleware.RoleMiddleware(model.Student), c.connection.Create)
			connections.GET("", c.connection.List)
			connections.POST("/:id/approve", middleware.RoleMiddleware(model.RoleCounselor), c.connection.Approve)
			connections.POST("/:id/reject", middleware.RoleMiddleware(model.RoleCounselor), c.connection.Reject)
			connections.POST("/:id/complete", middleware.RoleMiddleware(model.RoleCounselor), c.connection.Complete)
			connections.POST("/:id/cancel", c.connection.Cancel)
			connections.POST("/:id/review", middleware.RoleMiddleware(model.Student), c.connection.SubmitReview)
		}

		// 仪表盘与统计
		authGroup.GET("/dashboard/student", middleware.RoleMiddleware(model.Student), c.dashboard.StudentDashboard)
		authGroup.GET("/dashboard/counselor", middleware.RoleMiddleware(model.RoleCounselor), c.dashboard.CounselorDashboard)
		authGroup.GET("/stats/counselors/:id", c.dashboard.CounselorStats)

		// 通知
		authGroup.GET("/notifications", c.notification.List)
		authGroup.GET("/notifications/unread-count", c.notification.UnreadCount)
		authGroup.POST("/notifications/:id/read", c.notification.MarkRead)
	}

	// 4. 管理员相关接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/stats", c.dashboard.PlatformStats)
	}
}
