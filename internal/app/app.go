package app

import (
	"context"
	"edu_consult_backend/internal/config"
	"edu_consult_backend/internal/controller"
	"edu_consult_backend/internal/repository"
	"edu_consult_backend/internal/service"
	"edu_consult_backend/pkg/database"
	"edu_consult_backend/pkg/logger"
	"edu_consult_backend/pkg/monitoring"
	"edu_consult_backend/pkg/security"
	"edu_consult_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
	stopCh   chan struct{}
}

type repositories struct {
	user         *repository.UserRepository
	student      *repository.StudentRepository
	counselor    *repository.CounselorRepository
	assignment   *repository.AssignmentRepository
	review       *repository.ReviewRepository
	notification *repository.NotificationRepository
	activity     *repository.ActivityRepository
}

type services struct {
	auth         *service.AuthService
	counselor    *service.CounselorService
	matching     *service.MatchingService
	assignment   *service.AssignmentService
	notification *service.NotificationService
	stats        *service.StatsService
	dashboard    *service.DashboardService
}

type controllers struct {
	auth         *controller.AuthController
	student      *controller.StudentController
	counselor    *controller.CounselorController
	matching     *controller.MatchingController
	connection   *controller.ConnectionController
	dashboard    *controller.DashboardController
	notification *controller.NotificationController
	health       *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		student:      repository.NewStudentRepository(db),
		counselor:    repository.NewCounselorRepository(db),
		assignment:   repository.NewAssignmentRepository(db),
		review:       repository.NewReviewRepository(db),
		notification: repository.NewNotificationRepository(db),
		activity:     repository.NewActivityRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, repos.counselor, cfg)
	s.notification = service.NewNotificationService(repos.notification)
	s.counselor = service.NewCounselorService(repos.counselor, repos.review, repos.assignment, repos.activity, rdb, cfg.Matching.DirectoryCacheTTL, logger.Log)
	s.matching = service.NewMatchingService(repos.student, s.counselor, cfg.Matching.ScoreWorkers, logger.Log)
	s.assignment = service.NewAssignmentService(repos.assignment, repos.counselor, s.notification, repos.activity, logger.Log)
	s.stats = service.NewStatsService(repos.assignment, repos.counselor, repos.user)
	s.dashboard = service.NewDashboardService(repos.student, repos.assignment, repos.activity, s.counselor, s.stats, s.notification)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		student:      controller.NewStudentController(repos.student),
		counselor:    controller.NewCounselorController(s.counselor),
		matching:     controller.NewMatchingController(s.matching),
		connection:   controller.NewConnectionController(s.assignment, s.counselor),
		dashboard:    controller.NewDashboardController(s.dashboard, s.stats),
		notification: controller.NewNotificationController(s.notification),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 定期清扫超时未处理的连接请求
func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	interval := cfg.Assignment.SweepInterval
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	ttl := cfg.Assignment.PendingTTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-a.stopCh:
				return
			case <-ticker.C:
				swept, err := s.assignment.SweepStalePending(ttl)
				if err != nil {
					logger.Log.Error("stale pending sweep failed", zap.Error(err))
					continue
				}
				if swept > 0 {
					logger.Log.Info("expired stale pending requests", zap.Int("count", swept))
				}
			}
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	// release 模式默认不自动迁移，除非显式带 -migrate 启动
	migrate := cfg.Server.Mode != "release" || cfg.ForceMigrate
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 缓存缺席时全部请求直接打数据库，仍可服务
		logger.Log.Warn("Redis unavailable, continuing without directory cache", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		stopCh: make(chan struct{}),
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, repos, db, rdb)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		_, err := tracing.InitTracer("counseling-platform", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	app.startBackgroundTasks(services, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	close(a.stopCh)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
