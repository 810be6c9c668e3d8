package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamify_backend/internal/config"
	"gamify_backend/internal/controller"
	"gamify_backend/internal/repository"
	"gamify_backend/internal/service"
	"gamify_backend/pkg/database"
	"gamify_backend/pkg/logger"
	"gamify_backend/pkg/mailer"
	"gamify_backend/pkg/monitoring"
	"gamify_backend/pkg/security"
	"gamify_backend/pkg/tracing"

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
}

// OnConfigReload 热更新运行期可调的参数；连接类配置仍需重启生效
func (a *App) OnConfigReload(cfg *config.Config) {
	a.Config.Rewards = cfg.Rewards
	a.Config.RateLimit = cfg.RateLimit
	if a.services != nil && a.services.attempt != nil {
		a.services.attempt.ModeratorXP = cfg.Rewards.ModeratorExperience
	}
	logger.Log.Info("configuration reloaded")
}

type repositories struct {
	employee    *repository.EmployeeRepository
	test        *repository.TestRepository
	attempt     *repository.AttemptRepository
	achievement *repository.AchievementRepository
}

type services struct {
	auth        *service.AuthService
	employee    *service.EmployeeService
	progression *service.ProgressionService
	catalog     *service.CatalogService
	testAdmin   *service.TestAdminService
	attempt     *service.AttemptService
	settlement  *service.SettlementService
	achievement *service.AchievementService
	storage     *service.StorageService
}

type controllers struct {
	auth        *controller.AuthController
	test        *controller.TestController
	attempt     *controller.AttemptController
	employee    *controller.EmployeeController
	achievement *controller.AchievementController
	health      *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		employee:    repository.NewEmployeeRepository(db),
		test:        repository.NewTestRepository(db),
		attempt:     repository.NewAttemptRepository(db),
		achievement: repository.NewAchievementRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	var m mailer.Mailer = mailer.NoopMailer{}
	if cfg.Mail.Host != "" {
		m = mailer.NewSMTPMailer(&cfg.Mail)
	}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.employee, cfg)
	s.employee = service.NewEmployeeService(repos.employee, db)
	s.progression = service.NewProgressionService(repos.employee, db)
	s.catalog = service.NewCatalogService(repos.test, repos.attempt, rdb)
	s.testAdmin = service.NewTestAdminService(repos.test, s.catalog, db)
	s.achievement = service.NewAchievementService(repos.achievement, repos.employee, rdb)
	s.settlement = service.NewSettlementService(repos.attempt, repos.achievement, repos.employee, s.progression, m, db)
	s.attempt = service.NewAttemptService(
		repos.attempt,
		repos.employee,
		s.catalog,
		s.progression,
		s.settlement,
		m,
		cfg.Rewards.ModeratorExperience,
		db,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth, s.employee),
		test:        controller.NewTestController(s.catalog, s.testAdmin, s.employee),
		attempt:     controller.NewAttemptController(s.attempt),
		employee:    controller.NewEmployeeController(s.employee, s.progression, s.storage),
		achievement: controller.NewAchievementController(s.achievement, a.Config),
		health:      controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
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

func (a *App) startBackgroundTasks(s *services) {
	// 结算补偿：passed 但未到账的尝试定期重试
	go func() {
		ticker := time.NewTicker(time.Minute)
		for range ticker.C {
			s.settlement.RetryUnsettled()
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("gamification-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
