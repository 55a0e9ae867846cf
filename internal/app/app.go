package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"interview_backend/internal/config"
	"interview_backend/internal/controller"
	"interview_backend/internal/repository"
	"interview_backend/internal/service"
	"interview_backend/internal/session"
	"interview_backend/internal/store"
	"interview_backend/internal/util"
	"interview_backend/pkg/configwatcher"
	"interview_backend/pkg/database"
	"interview_backend/pkg/logger"
	"interview_backend/pkg/monitoring"
	"interview_backend/pkg/security"
	"interview_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Store           store.Store
	services        *services
	cron            *cron.Cron
	tracer          *sdktrace.TracerProvider
	stopWatch       chan struct{}
	configCallbacks []func(*config.Config)
}

type repositories struct {
	candidate *repository.CandidateRepository
	session   *repository.SessionRepository
}

type services struct {
	gateway   *service.GatewayService
	storage   *service.StorageService
	auth      *service.AuthService
	sync      *service.CandidateSyncService
	interview *service.InterviewService
	dashboard *service.DashboardService
	resume    *service.ResumeService
}

type controllers struct {
	auth      *controller.AuthController
	interview *controller.InterviewController
	resume    *controller.ResumeController
	dashboard *controller.DashboardController
	admin     *controller.AdminController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// initStore 按 kv_backend 打开对应后端，写入统一走重试包装
func (a *App) initStore(cfg *config.Config) (store.Store, error) {
	var inner store.Store
	switch cfg.Storage.KVBackend {
	case "redis":
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		a.Redis = rdb
		inner = store.NewRedisStore(rdb)
	default:
		db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
		if err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		a.DB = db
		inner = store.NewGormStore(db)
	}
	logger.Log.Info("Key-value store ready", zap.String("backend", cfg.Storage.KVBackend))
	return store.NewRetryStore(inner, cfg.Interview.WriteRetries, cfg.Interview.RetryBackoff()), nil
}

func (a *App) initRepositories(s store.Store, cfg *config.Config) *repositories {
	return &repositories{
		candidate: repository.NewCandidateRepository(s),
		session:   repository.NewSessionRepository(s, cfg.Interview.SingletonKey),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.gateway = service.NewGatewayService(cfg.Gateway)
	s.storage = service.NewStorageService(&cfg.Storage)
	s.auth = service.NewAuthService(&cfg.Auth)
	s.sync = service.NewCandidateSyncService(repos.candidate, s.gateway, cfg.Interview.GenerateAISummary)
	s.interview = service.NewInterviewService(
		session.NewMachine(),
		s.gateway,
		repos.session,
		s.sync,
		service.InterviewOptions{
			TickInterval: cfg.Interview.TickInterval(),
			SyncInterval: cfg.Interview.SyncInterval(),
		},
	)
	s.dashboard = service.NewDashboardService(repos.candidate)
	s.resume = service.NewResumeService(s.gateway, s.storage)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		interview: controller.NewInterviewController(s.interview),
		resume:    controller.NewResumeController(s.resume),
		dashboard: controller.NewDashboardController(s.dashboard),
		admin:     controller.NewAdminController(s.interview, a.Store),
		health:    controller.NewHealthController(a.Store),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 定时合并重复候选人，并监听配置文件变更
func (a *App) startBackgroundTasks(s *services) {
	a.cron = cron.New()
	_, err := a.cron.AddFunc(a.Config.Interview.CleanupCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.dashboard.CleanupDuplicates(ctx); err != nil {
			logger.Log.Error("Scheduled duplicate cleanup failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Log.Error("Failed to schedule duplicate cleanup",
			zap.String("schedule", a.Config.Interview.CleanupCron), zap.Error(err))
	} else {
		a.cron.Start()
	}

	a.RegisterConfigCallback(func(cfg *config.Config) {
		s.interview.SetSyncInterval(cfg.Interview.SyncInterval())
		s.gateway.SetBaseURL(cfg.Gateway.BaseURL)
	})

	a.stopWatch = make(chan struct{})
	configFile := filepath.Join(a.Config.Path, "config.yaml")
	err = configwatcher.WatchConfig(configFile, func(cfg *config.Config) {
		for _, cb := range a.configCallbacks {
			cb(cfg)
		}
	}, a.stopWatch)
	if err != nil {
		logger.Log.Warn("Config hot reload disabled", zap.String("file", configFile), zap.Error(err))
	}
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	app := &App{Config: cfg}

	st, err := app.initStore(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize store", zap.Error(err))
	}
	app.Store = st

	repos := app.initRepositories(st, cfg)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services)

	// 恢复上次未结束的会话
	loadCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := services.interview.Load(loadCtx); err != nil {
		logger.Log.Error("Failed to restore interview session", zap.Error(err))
	}
	cancel()

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("interview-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
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
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close()
	logger.Log.Info("Server exiting")
}

// Close 停止后台任务，落盘会话并释放连接
func (a *App) Close() {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
	if a.stopWatch != nil {
		close(a.stopWatch)
		a.stopWatch = nil
	}
	if a.services != nil {
		a.services.interview.Close()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	logger.Log.Sync()
}
