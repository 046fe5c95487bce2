package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"course_hub_backend/internal/config"
	"course_hub_backend/internal/controller"
	"course_hub_backend/internal/repository"
	"course_hub_backend/internal/service"
	"course_hub_backend/pkg/database"
	"course_hub_backend/pkg/logger"
	"course_hub_backend/pkg/monitoring"
	"course_hub_backend/pkg/security"
	"course_hub_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user           *repository.UserRepository
	category       *repository.CategoryRepository
	course         *repository.CourseRepository
	lesson         *repository.LessonRepository
	enrollment     *repository.EnrollmentRepository
	lessonProgress *repository.LessonProgressRepository
	review         *repository.ReviewRepository
	certificate    *repository.CertificateRepository
}

type services struct {
	auth        *service.AuthService
	user        *service.UserService
	storage     *service.StorageService
	category    *service.CategoryService
	course      *service.CourseService
	lesson      *service.LessonService
	enrollment  *service.EnrollmentService
	review      *service.ReviewService
	certificate *service.CertificateService
	snapshot    *service.SnapshotService
}

type controllers struct {
	auth        *controller.AuthController
	user        *controller.UserController
	category    *controller.CategoryController
	course      *controller.CourseController
	lesson      *controller.LessonController
	enrollment  *controller.EnrollmentController
	review      *controller.ReviewController
	certificate *controller.CertificateController
	snapshot    *controller.SnapshotController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ReloadConfig is invoked by the config watcher when the config file changes.
func (a *App) ReloadConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("Configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:           repository.NewUserRepository(db),
		category:       repository.NewCategoryRepository(db),
		course:         repository.NewCourseRepository(db),
		lesson:         repository.NewLessonRepository(db),
		enrollment:     repository.NewEnrollmentRepository(db),
		lessonProgress: repository.NewLessonProgressRepository(db),
		review:         repository.NewReviewRepository(db),
		certificate:    repository.NewCertificateRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.category = service.NewCategoryService(repos.category)
	s.course = service.NewCourseService(repos.course, repos.category, repos.review, rdb)
	s.lesson = service.NewLessonService(repos.lesson, repos.course, s.storage)
	s.enrollment = service.NewEnrollmentService(repos.enrollment, repos.course, repos.lesson, repos.lessonProgress, db)
	s.review = service.NewReviewService(repos.review, repos.course, repos.enrollment)
	s.certificate = service.NewCertificateService(repos.certificate, repos.enrollment, repos.user, s.storage)
	s.snapshot = service.NewSnapshotService(db)

	return s
}

func (a *App) initControllers(s *services, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth, s.user),
		user:        controller.NewUserController(s.user),
		category:    controller.NewCategoryController(s.category),
		course:      controller.NewCourseController(s.course),
		lesson:      controller.NewLessonController(s.lesson),
		enrollment:  controller.NewEnrollmentController(s.enrollment),
		review:      controller.NewReviewController(s.review),
		certificate: controller.NewCertificateController(s.certificate),
		snapshot:    controller.NewSnapshotController(s.snapshot, cfg.Snapshot.Dir),
		health:      controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.ForceMigrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, cfg, db, rdb)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("course-hub", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Log.Sync()
	log.Println("Server exiting")
}
