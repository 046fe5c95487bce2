package app

import (
	"course_hub_backend/docs"
	"course_hub_backend/internal/config"
	"course_hub_backend/internal/middleware"
	"course_hub_backend/internal/model"
	"course_hub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerAuthenticatedRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// Catalog
		public.GET("/categories", c.category.ListCategories)
		public.GET("/courses", c.course.ListCourses)
		public.GET("/courses/:id", c.course.GetCourse)
		public.GET("/courses/:id/lessons", c.lesson.GetLessons)
		public.GET("/courses/:id/reviews", c.review.GetCourseReviews)

		// Enrollments identify the learner in the payload or path, so the
		// endpoints stay open the way the legacy API exposed them.
		public.POST("/enrollments", c.enrollment.Enroll)
		public.GET("/enrollments/user/:userId", c.enrollment.ListByUser)
		public.GET("/enrollments/:id", c.enrollment.Get)
		public.PUT("/enrollments/:id", c.enrollment.Update)
		public.DELETE("/enrollments/:id", c.enrollment.Unenroll)
		public.GET("/enrollments/:id/progress", c.enrollment.ProgressDetail)
		public.POST("/enrollments/:id/lessons/:lessonId/progress", c.enrollment.UpdateLessonProgress)
		public.POST("/enrollments/:id/certificate", c.certificate.IssueCertificate)

		public.GET("/certificates/user/:userId", c.certificate.GetUserCertificates)
	}
}

func (a *App) registerAuthenticatedRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.PUT("/user/profile", c.user.UpdateProfile)
	rg.POST("/reviews", c.review.CreateReview)
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Instructor, model.Admin))
	{
		admin.POST("/categories", c.category.CreateCategory)
		admin.PUT("/categories/:id", c.category.UpdateCategory)
		admin.DELETE("/categories/:id", c.category.DeleteCategory)

		admin.POST("/courses", c.course.CreateCourse)
		admin.PUT("/courses/:id", c.course.UpdateCourse)
		admin.DELETE("/courses/:id", c.course.DeleteCourse)

		admin.POST("/courses/:id/lessons", c.lesson.CreateLesson)
		admin.PUT("/lessons/:id", c.lesson.UpdateLesson)
		admin.DELETE("/lessons/:id", c.lesson.DeleteLesson)
		admin.POST("/lessons/:id/video", c.lesson.UploadVideo)

		admin.DELETE("/reviews/:id", c.review.DeleteReview)

		admin.POST("/snapshot/export", c.snapshot.ExportSnapshot)
		admin.POST("/snapshot/import", c.snapshot.ImportSnapshot)

		admin.GET("/users", c.user.GetUsers)
		admin.GET("/users/:id", c.user.GetUser)
		admin.DELETE("/users/:id", c.user.DeleteUser)
	}
}
