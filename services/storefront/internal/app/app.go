package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	platformlogging "github.com/shestoi/storefront/platform/logging"
	platformobservability "github.com/shestoi/storefront/platform/observability"
	platformshutdown "github.com/shestoi/storefront/platform/shutdown"
	httpapi "github.com/shestoi/storefront/services/storefront/internal/api/http"
	"github.com/shestoi/storefront/services/storefront/internal/cartstore"
	httpclient "github.com/shestoi/storefront/services/storefront/internal/client/http"
	"github.com/shestoi/storefront/services/storefront/internal/config"
	eventkafka "github.com/shestoi/storefront/services/storefront/internal/event/kafka"
	"github.com/shestoi/storefront/services/storefront/internal/metrics"
	"github.com/shestoi/storefront/services/storefront/internal/repository"
	"github.com/shestoi/storefront/services/storefront/internal/repository/memory"
	pebblerepo "github.com/shestoi/storefront/services/storefront/internal/repository/pebble"
	"github.com/shestoi/storefront/services/storefront/internal/repository/postgres"
	redisrepo "github.com/shestoi/storefront/services/storefront/internal/repository/redis"
	"github.com/shestoi/storefront/services/storefront/internal/service"
	"github.com/shestoi/storefront/services/storefront/migrations"
)

const (
	serviceName     = "storefront"
	janitorInterval = time.Minute
	slotGCInterval  = time.Hour
)

// App содержит все зависимости для запуска и корректного shutdown Storefront Service
type App struct {
	logger      *zap.Logger
	httpServer  *http.Server
	shutdownMgr *platformshutdown.Manager
	// background - фоновые задачи (janitor), останавливаются через cancel при shutdown
	background []func(ctx context.Context)
	cancel     context.CancelFunc
	ctx        context.Context
	wg         sync.WaitGroup
}

// Build создаёт и настраивает все зависимости Storefront Service
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	// Создаём logger
	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: serviceName,
		Env:         string(cfg.AppEnv),
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Building Storefront service", append([]zap.Field{zap.String("op", op)}, cfg.LogFields()...)...)

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	// Создаём shutdown manager
	a.shutdownMgr = platformshutdown.New(cfg.ShutdownTimeout, logger)

	// OpenTelemetry: tracer/meter providers и propagator
	otelShutdown, err := platformobservability.Init(context.Background(), platformobservability.Config{
		Enabled:               cfg.OTelEnabled,
		OTLPEndpoint:          cfg.OTelEndpoint,
		SamplingRatio:         cfg.OTelSamplingRatio,
		ServiceName:           serviceName,
		DeploymentEnvironment: string(cfg.AppEnv),
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%s: init observability: %w", op, err)
	}
	// регистрируем первым, чтобы закрыть последним (LIFO) и выгрузить спаны shutdown'а
	a.shutdownMgr.Add("otel", otelShutdown)

	categories, err := config.LoadCategories(cfg.CategoriesFile)
	if err != nil {
		a.abort()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Хранилище корзин
	slots, err := a.openSlotRepository(ctx, cfg)
	if err != nil {
		a.abort()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	carts := cartstore.New(slots, cfg.CartSlotName, logger)

	readiness := func(ctx context.Context) error {
		return carts.Ping(ctx)
	}

	// Внешние REST сервисы
	catalogClient := httpclient.NewCatalogClient(httpclient.CatalogConfig{
		URL:             cfg.CatalogURL,
		ErrorMessage:    cfg.CatalogErrorMessage,
		MaxRetries:      cfg.CatalogMaxRetries,
		RetryInterval:   cfg.CatalogRetryInterval,
		BreakerFailures: cfg.CatalogBreakerFailures,
		BreakerTimeout:  cfg.CatalogBreakerTimeout,
	}, platformobservability.NewHTTPClient("catalog", cfg.CatalogTimeout), logger)

	paymentClient := httpclient.NewPaymentClient(
		cfg.PaymentBaseURL,
		platformobservability.NewHTTPClient("payment", cfg.PaymentTimeout),
		logger,
	)

	// События оформления: Kafka, если заданы брокеры
	var events service.CheckoutEventPublisher
	if cfg.Kafka.Enabled() {
		publisher := eventkafka.NewCheckoutEventPublisher(logger, cfg.Kafka)
		a.shutdownMgr.Add("kafka_publisher", platformshutdown.Close(publisher))
		events = publisher
		logger.Info("Checkout events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	} else {
		events = eventkafka.NewNoopPublisher(logger)
		logger.Info("KAFKA_BROKERS not set, checkout events disabled")
	}

	reg := metrics.New()

	// Создаем service слой с зависимостями
	storefrontService := service.NewStorefrontService(catalogClient, carts, categories, reg, logger)
	checkoutService := service.NewCheckoutService(carts, paymentClient, events, reg, cfg.CheckoutClearCartOnCapture, logger)

	a.background = append(a.background, func(ctx context.Context) {
		storefrontService.RunJanitor(ctx, janitorInterval, cfg.SessionIdleTTL)
	})

	// Создаем HTTP слой
	handler := httpapi.NewHandler(storefrontService, checkoutService, logger)
	pages, err := httpapi.NewPages(storefrontService, checkoutService, httpapi.PagesConfig{
		PayPalClientID: cfg.PayPalClientID,
		Currency:       cfg.Currency,
	}, logger)
	if err != nil {
		a.abort()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	router := httpapi.NewRouter(handler, pages, readiness, reg.Handler(), httpapi.RouterConfig{
		SessionCookieTTL:    cfg.CartTTL,
		SessionCookieSecure: cfg.SessionCookieSecure,
	}, logger)

	// Создаём HTTP сервер
	a.httpServer = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	a.shutdownMgr.Add("background", func(ctx context.Context) error {
		a.cancel()
		return nil
	})
	a.shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(a.httpServer))

	return a, nil
}

// openSlotRepository открывает выбранный бэкенд и регистрирует его закрытие
func (a *App) openSlotRepository(ctx context.Context, cfg config.Config) (repository.SlotRepository, error) {
	switch cfg.CartStore {
	case config.CartStoreRedis:
		a.logger.Info("Connecting to Redis", zap.String("addr", cfg.RedisAddr))
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		a.shutdownMgr.Add("redis_client", platformshutdown.Close(client))
		a.logger.Info("Redis connection established")
		return redisrepo.NewRepository(client, cfg.CartTTL, a.logger), nil

	case config.CartStorePebble:
		a.logger.Info("Opening Pebble store", zap.String("dir", cfg.PebbleDir))
		repo, err := pebblerepo.Open(cfg.PebbleDir)
		if err != nil {
			return nil, err
		}
		a.shutdownMgr.Add("pebble", platformshutdown.Close(repo))
		return repo, nil

	case config.CartStorePostgres:
		return a.openPostgres(ctx, cfg)

	default:
		a.logger.Warn("Using in-memory cart store, carts are lost on restart")
		return memory.NewRepository(), nil
	}
}

func (a *App) openPostgres(ctx context.Context, cfg config.Config) (repository.SlotRepository, error) {
	a.logger.Info("Applying migrations")
	db, err := sql.Open("pgx", cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres for migrations: %w", err)
	}
	err = migrations.Up(ctx, db)
	_ = db.Close()
	if err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	// Подключаемся к PostgreSQL
	a.logger.Info("Connecting to PostgreSQL")
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	a.shutdownMgr.Add("postgres_pool", platformshutdown.ClosePool(pool))
	a.logger.Info("PostgreSQL connection established")

	repo := postgres.NewRepository(pool)

	// В PostgreSQL нет TTL: брошенные корзины удаляет периодическая задача
	if cfg.CartTTL > 0 {
		a.background = append(a.background, func(ctx context.Context) {
			a.collectSlots(ctx, repo, cfg.CartTTL)
		})
	}
	return repo, nil
}

func (a *App) collectSlots(ctx context.Context, repo *postgres.Repository, ttl time.Duration) {
	ticker := time.NewTicker(slotGCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteOlderThan(ctx, ttl)
			if err != nil {
				a.logger.Warn("Failed to delete expired cart slots", zap.Error(err))
				continue
			}
			if n > 0 {
				a.logger.Info("Deleted expired cart slots", zap.Int64("count", n))
			}
		}
	}
}

// abort выполняет уже зарегистрированные shutdown функции при ошибке сборки
func (a *App) abort() {
	a.cancel()
	a.shutdownMgr.Shutdown()
}

// Run запускает сервис и блокируется до получения сигнала shutdown
func (a *App) Run() error {
	defer platformlogging.Sync(a.logger)

	a.logger.Info("Starting Storefront service", zap.String("addr", a.httpServer.Addr))
	a.logger.Info("Health check available", zap.String("url", "http://"+a.httpServer.Addr+"/health"))

	for _, task := range a.background {
		a.wg.Add(1)
		go func(task func(context.Context)) {
			defer a.wg.Done()
			task(a.ctx)
		}(task)
	}

	// ошибка сервера отменяет serveCtx и запускает shutdown без сигнала
	serveCtx, stop := context.WithCancelCause(context.Background())
	defer stop(nil)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", zap.Error(err))
			stop(fmt.Errorf("http server: %w", err))
		}
	}()

	// Ожидаем сигнал (или падение сервера) и выполняем shutdown
	a.shutdownMgr.WaitContext(serveCtx)

	a.wg.Wait()
	if err := context.Cause(serveCtx); err != nil {
		return err
	}
	a.logger.Info("Storefront service stopped")
	return nil
}
