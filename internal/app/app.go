package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"recruit_backend/internal/config"
	"recruit_backend/internal/controller"
	"recruit_backend/internal/middleware"
	"recruit_backend/internal/repository"
	"recruit_backend/internal/seed"
	"recruit_backend/internal/service"
	"recruit_backend/pkg/cache"
	"recruit_backend/pkg/configwatcher"
	"recruit_backend/pkg/database"
	"recruit_backend/pkg/logger"
	"recruit_backend/pkg/monitoring"
	"recruit_backend/pkg/security"
	"recruit_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB // nil when database.driver is memory
	Cache  cache.Cache

	stores          *stores
	services        *services
	origins         *security.OriginPolicy
	tracer          *sdktrace.TracerProvider
	ctx             context.Context
	cancel          context.CancelFunc
	configCallbacks []func(*config.Config)
}

type stores struct {
	bank     service.QuestionBankStore
	attempts service.AttemptStore
	jobs     service.JobStore
	catalog  seed.CatalogWriter
	jobWrite seed.JobWriter
}

type services struct {
	bank     *service.QuestionBankService
	attempts *service.AttemptService
	scoring  *service.ScoringService
	pending  *service.PendingService
	review   *service.ReviewService
	results  *service.ResultService
}

type controllers struct {
	auth       *controller.AuthController
	assessment *controller.AssessmentController
	review     *controller.ReviewController
	results    *controller.ResultAdminController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func initStores(db *gorm.DB) *stores {
	if db == nil {
		mem := repository.NewMemoryStore()
		return &stores{bank: mem, attempts: mem, jobs: mem, catalog: mem, jobWrite: mem}
	}
	bank := repository.NewQuestionBankRepository(db)
	jobs := repository.NewJobRepository(db)
	return &stores{
		bank:     bank,
		attempts: repository.NewAttemptRepository(db),
		jobs:     jobs,
		catalog:  bank,
		jobWrite: jobs,
	}
}

func initServices(st *stores, c cache.Cache, cfg *config.Config, clock service.Clock) *services {
	bank := service.NewQuestionBankService(st.bank, c, cfg.Cache.QuestionTTL())
	return &services{
		bank:     bank,
		attempts: service.NewAttemptService(st.attempts, bank, clock),
		scoring:  service.NewScoringService(st.attempts, bank, clock),
		pending:  service.NewPendingService(st.jobs, st.attempts, bank, clock),
		review:   service.NewReviewService(st.attempts, bank, clock),
		results:  service.NewResultService(st.attempts, bank, clock),
	}
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(a.Config, a.Cache),
		assessment: controller.NewAssessmentController(s.bank, s.attempts, s.scoring, s.pending, s.results),
		review:     controller.NewReviewController(s.review),
		results:    controller.NewResultAdminController(s.results),
		health:     controller.NewHealthController(a.DB, a.Cache),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.RequestID())
	router.Use(security.CORS(a.origins))
	router.Use(security.Secure())
	if cfg.RateLimit.MaxRequests > 0 && cfg.RateLimit.WindowMinutes > 0 {
		router.Use(security.RateLimiter(a.ctx, cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// selectCache prefers redis when it is enabled and answers a ping; otherwise the
// in-process cache is used for the lifetime of the process.
func selectCache(ctx context.Context, cfg *config.RedisConfig) cache.Cache {
	if !cfg.Enabled {
		logger.Log.Info("Redis disabled, using in-memory cache")
		return cache.NewMemoryCache()
	}
	rdb, err := database.InitRedis(ctx, cfg)
	if err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
		return cache.NewMemoryCache()
	}
	return cache.NewRedisCache(rdb)
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	var db *gorm.DB
	if cfg.Database.Driver != config.DriverMemory {
		var err error
		db, err = database.InitDB(&cfg.Database, cfg.Server.Mode)
		if err != nil {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		}
		if cfg.Server.Mode != "release" || cfg.ForceMigrate {
			if err := database.Migrate(db); err != nil {
				logger.Log.Fatal("Failed to migrate database", zap.Error(err))
			}
		}
	}

	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	c := selectCache(context.Background(), &cfg.Redis)

	app := newApp(cfg, db, c, time.Now)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("recruit-portal", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	seedFile := cfg.SeedFile
	if seedFile == "" {
		seedFile = cfg.Assessment.SeedFile
	}
	if seedFile != "" {
		if err := app.Seed(app.ctx, seedFile); err != nil {
			logger.Log.Fatal("Failed to seed assessment catalog", zap.String("file", seedFile), zap.Error(err))
		}
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetMode(newCfg.Server.Mode)
		app.origins.Update(newCfg.CORS.AllowedOrigins)
		logger.Log.Info("Config reloaded",
			zap.Stringer("logLevel", logger.Level()),
			zap.Strings("allowedOrigins", newCfg.CORS.AllowedOrigins),
		)
	})
	app.startBackgroundTasks()

	return app
}

// newApp wires stores, services and routes on top of already opened infrastructure.
func newApp(cfg *config.Config, db *gorm.DB, c cache.Cache, clock service.Clock) *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:  cfg,
		DB:      db,
		Cache:   c,
		origins: security.NewOriginPolicy(cfg.CORS.AllowedOrigins),
		ctx:     ctx,
		cancel:  cancel,
	}

	app.stores = initStores(db)
	app.services = initServices(app.stores, c, cfg, clock)
	controllers := app.initControllers(app.services)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	return app
}

// Seed loads a catalog file, writes it and drops cached copies of the templates it touched.
func (a *App) Seed(ctx context.Context, path string) error {
	cat, err := seed.Load(path)
	if err != nil {
		return err
	}
	if _, err := seed.Apply(ctx, cat, a.stores.catalog, a.stores.jobWrite); err != nil {
		return err
	}
	if err := a.services.bank.Invalidate(ctx, cat.TemplateIDs()...); err != nil {
		return fmt.Errorf("invalidate template cache: %w", err)
	}
	return nil
}

func (a *App) startBackgroundTasks() {
	if !a.Config.Server.WatchConfig {
		return
	}
	configFile := filepath.Join(a.Config.ConfigDir, "config.yaml")
	go func() {
		err := configwatcher.WatchConfig(a.ctx, configFile, func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) shutdown(ctx context.Context) {
	a.cancel()
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if closer, ok := a.Cache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Log.Error("Failed to close cache", zap.String("cache", a.Cache.Name()), zap.Error(err))
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
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
	a.shutdown(ctx)

	logger.Log.Info("Server exiting")
}
