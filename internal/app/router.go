package app

import (
	"lms_backend/docs"
	"lms_backend/internal/config"
	"lms_backend/internal/middleware"
	"lms_backend/internal/model"
	"lms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// Public routes
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		otp := public.Group("/auth/otp")
		{
			otp.POST("/send", c.auth.SendOTP)
			otp.POST("/verify", c.auth.VerifyOTP)
		}

		// Catalog reads are open to browsing.
		public.GET("/courses", c.course.List)
		public.GET("/courses/:courseId", c.course.Get)
	}

	// Authorized routes
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		// Catalog writes are admin-only.
		admin := authGroup.Group("/")
		admin.Use(middleware.RoleMiddleware(model.Admin))
		{
			admin.POST("/courses", c.course.Create)
			admin.DELETE("/courses/:courseId", c.course.Delete)
			admin.GET("/quiz-attempts", c.courseStudent.ListAllAttempts)
		}

		// Enrollment and progress tracking
		studentCourses := authGroup.Group("/student-courses")
		{
			studentCourses.POST("/enroll", c.courseStudent.Enroll)
			studentCourses.GET("", c.courseStudent.List)
			studentCourses.POST("/final-test", c.courseStudent.AttachFinalTest)
			studentCourses.GET("/:courseId", c.courseStudent.GetCourse)
			studentCourses.DELETE("/:courseId", c.courseStudent.Delete)
			studentCourses.GET("/:courseId/resume", c.courseStudent.GetResume)
			studentCourses.PUT("/:courseId/resume", c.courseStudent.UpdateResume)
			studentCourses.PATCH("/:courseId/progress", c.courseStudent.UpdateProgress)
			studentCourses.POST("/:courseId/attempts", c.courseStudent.SubmitAttempt)
			studentCourses.GET("/:courseId/attempts", c.courseStudent.ListAttempts)
		}
	}
}
