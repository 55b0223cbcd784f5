package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/storefleet/server/internal/module/audit"
	"github.com/storefleet/server/internal/module/inventory"
	"github.com/storefleet/server/internal/module/ledger"
	"github.com/storefleet/server/internal/module/order"
	"github.com/storefleet/server/internal/module/payment"
	paymentprovider "github.com/storefleet/server/internal/module/payment/provider"
	"github.com/storefleet/server/internal/module/refund"
	sharedcache "github.com/storefleet/server/internal/shared/cache"
	"github.com/storefleet/server/internal/shared/config"
	"github.com/storefleet/server/internal/shared/database"
	"github.com/storefleet/server/internal/shared/events"
	"github.com/storefleet/server/internal/shared/logger"
	"github.com/storefleet/server/internal/utils/metrics"
	"github.com/storefleet/server/internal/utils/middleware"
	"github.com/storefleet/server/internal/utils/requestctx"
)

// App wires the refund engine together: configuration, storage, payment
// providers, the refund service, and its background worker.
type App struct {
	config  *config.Config
	db      *gorm.DB
	redis   redis.UniversalClient
	router  *gin.Engine
	logger  *zap.Logger
	metrics *metrics.Metrics

	producer *events.Producer
	worker   *refund.Worker
	stopBg   context.CancelFunc

	refundHandler *refund.Handler
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	app := &App{
		config: cfg,
		logger: log,
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app.db = db

	redisClient, err := sharedcache.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}
	app.redis = redisClient

	app.metrics = metrics.New("storefleet")

	if len(cfg.Kafka.Brokers) > 0 {
		app.producer = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.RefundTopic, cfg.Kafka.BufferSize, log)
	}

	if err := app.initModules(); err != nil {
		return nil, fmt.Errorf("init modules: %w", err)
	}

	app.router = app.setupRouter()

	bgCtx, cancel := context.WithCancel(context.Background())
	app.stopBg = cancel
	app.producer.Start(bgCtx)
	app.worker.Start(bgCtx)

	return app, nil
}

// initModules builds the module graph bottom-up.
func (a *App) initModules() error {
	orderRepo := order.NewRepository(a.db)
	paymentRepo := payment.NewRepository(a.db)

	registry := payment.NewProviderRegistry()
	if a.config.Payment.Stripe.APIKey != "" {
		stripe := paymentprovider.NewStripeProvider(&paymentprovider.StripeConfig{
			APIKey: a.config.Payment.Stripe.APIKey,
		})
		registry.Register(paymentprovider.WithBreaker(stripe))
	}
	if a.config.Payment.Alipay.AppID != "" {
		alipay, err := paymentprovider.NewAlipayProvider(&paymentprovider.AlipayConfig{
			AppID:           a.config.Payment.Alipay.AppID,
			PrivateKey:      a.config.Payment.Alipay.PrivateKey,
			AlipayPublicKey: a.config.Payment.Alipay.AlipayPublicKey,
			IsProd:          a.config.Payment.Alipay.IsProd,
		})
		if err != nil {
			return fmt.Errorf("init alipay provider: %w", err)
		}
		registry.Register(paymentprovider.WithBreaker(alipay))
	}
	a.logger.Info("payment providers registered", zap.Strings("providers", registry.List()))

	restorer := inventory.NewRestorer(inventory.NewRepository(a.db), a.logger)
	ledgerService := ledger.NewService(ledger.NewRepository(a.db), a.logger)
	auditRecorder := audit.NewRecorder(a.db, a.logger)

	refundRepo := refund.NewRepository(a.db)
	lock := refund.NewOrderLock(a.redis, a.config.Refund.OrderLockTTL)

	refundService := refund.NewService(
		orderRepo,
		paymentRepo,
		registry,
		refundRepo,
		lock,
		restorer,
		ledgerService,
		auditRecorder,
		a.producer,
		a.metrics,
		a.logger,
	)
	a.refundHandler = refund.NewHandler(refundService)

	a.worker = refund.NewWorker(
		refundRepo,
		restorer,
		ledgerService,
		a.metrics,
		a.logger,
		a.config.Refund.WorkerInterval,
		a.config.Refund.WorkerBatchSize,
		a.config.Refund.MaxAttempts,
	)

	return nil
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(a.metrics.GinMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	validator := middleware.NewJWTValidator(a.config.Auth.JWTSecret, a.config.Auth.Issuer)
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RequireAuth(validator))
	v1.Use(middleware.RequireRoles(requestctx.RoleAdmin, requestctx.RoleSystem))
	v1.Use(middleware.Idempotency(a.redis, 24*time.Hour))
	a.refundHandler.RegisterRoutes(v1)

	return r
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop shuts down background components and closes connections.
func (a *App) Stop() {
	if a.stopBg != nil {
		a.stopBg()
	}
	if a.worker != nil {
		a.worker.WaitStopped()
	}
	if a.producer != nil {
		a.producer.WaitClosed()
	}
	if a.redis != nil {
		if err := sharedcache.Close(a.redis); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.logger.Warn("close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
