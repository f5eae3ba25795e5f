package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"scorm_host_backend/internal/config"
	"scorm_host_backend/internal/controller"
	"scorm_host_backend/internal/repository"
	"scorm_host_backend/internal/service"
	"scorm_host_backend/internal/util"
	"scorm_host_backend/pkg/configwatcher"
	"scorm_host_backend/pkg/database"
	"scorm_host_backend/pkg/logger"
	"scorm_host_backend/pkg/monitoring"
	"scorm_host_backend/pkg/security"
	"scorm_host_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user    *repository.UserRepository
	course  *repository.CourseRepository
	attempt *repository.AttemptRepository
}

type services struct {
	storage  *service.StorageService
	packages *service.PackageService
	runtime  *service.RuntimeService
	auth     *service.AuthService
}

type controllers struct {
	scorm  *controller.ScormController
	course *controller.CourseController
	auth   *controller.AuthController
	health *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// applyConfig 配置文件变化后依次执行回调
func (a *App) applyConfig(cfg *config.Config) {
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("Config reloaded", zap.String("file", cfg.FilePath))
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:    repository.NewUserRepository(db),
		course:  repository.NewCourseRepository(db),
		attempt: repository.NewAttemptRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	storage := service.NewStorageService(cfg)
	packages := service.NewPackageService(repos.course, repos.attempt, storage, cfg.Scorm.DefaultLaunchFile)

	// 未启用 redis 时不加锁，依赖数据库唯一索引兜底
	var locker service.LaunchLocker
	if rdb != nil {
		locker = service.NewRedisLaunchLocker(rdb, cfg.Scorm.LaunchLockTTL())
	}

	runtime := service.NewRuntimeService(db, repos.attempt, repos.course, repos.user, packages, locker, cfg.Scorm.ClampSuccessStatus)

	return &services{
		storage:  storage,
		packages: packages,
		runtime:  runtime,
		auth:     service.NewAuthService(repos.user, cfg),
	}
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		scorm:  controller.NewScormController(s.runtime),
		course: controller.NewCourseController(s.packages),
		auth:   controller.NewAuthController(s.auth, a.Config.Server.Mode == gin.ReleaseMode),
		health: controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New 用已初始化的数据库和 redis 组装路由与服务，rdb 可以为 nil
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
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

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	// 本地存储时由本服务直接托管课程包，与 launch url 同源
	isLocal := cfg.Storage.Type == "" || cfg.Storage.Type == util.StorageLocal
	if isLocal && strings.HasPrefix(cfg.Storage.PublicPrefix, "/") && cfg.Storage.PublicPrefix != "/" {
		router.Static(cfg.Storage.PublicPrefix, cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(c *config.Config) {
		logger.SetMode(c.Server.Mode)
	})
	app.RegisterConfigCallback(func(c *config.Config) {
		services.runtime.SetClampSuccessStatus(c.Scorm.ClampSuccessStatus)
	})

	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := New(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.Config.Server.WatchConfig && a.Config.FilePath != "" {
		go func() {
			err := configwatcher.WatchConfig(ctx, a.Config.FilePath, configwatcher.DefaultDebounce, a.applyConfig)
			if err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to listen", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(shutdownCtx)
	logger.Log.Info("Server exiting")
}

// Close 释放追踪、redis 和数据库连接
func (a *App) Close(ctx context.Context) {
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Log.Warn("Failed to close redis", zap.Error(err))
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
