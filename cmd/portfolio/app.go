package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	marketApp "github.com/wyfcoding/portfolioanalytics/internal/market/application"
	marketHTTP "github.com/wyfcoding/portfolioanalytics/internal/market/interfaces/http"
	portfolioApp "github.com/wyfcoding/portfolioanalytics/internal/portfolio/application"
	portfolioDomain "github.com/wyfcoding/portfolioanalytics/internal/portfolio/domain"
	portfolioMessaging "github.com/wyfcoding/portfolioanalytics/internal/portfolio/infrastructure/messaging"
	portfolioMemory "github.com/wyfcoding/portfolioanalytics/internal/portfolio/infrastructure/persistence/memory"
	portfolioMongo "github.com/wyfcoding/portfolioanalytics/internal/portfolio/infrastructure/persistence/mongo"
	portfolioMySQL "github.com/wyfcoding/portfolioanalytics/internal/portfolio/infrastructure/persistence/mysql"
	portfolioHTTP "github.com/wyfcoding/portfolioanalytics/internal/portfolio/interfaces/http"
	strategyApp "github.com/wyfcoding/portfolioanalytics/internal/strategy/application"
	strategyDomain "github.com/wyfcoding/portfolioanalytics/internal/strategy/domain"
	strategyMessaging "github.com/wyfcoding/portfolioanalytics/internal/strategy/infrastructure/messaging"
	strategyCache "github.com/wyfcoding/portfolioanalytics/internal/strategy/infrastructure/persistence/cache"
	strategyMemory "github.com/wyfcoding/portfolioanalytics/internal/strategy/infrastructure/persistence/memory"
	strategyMongo "github.com/wyfcoding/portfolioanalytics/internal/strategy/infrastructure/persistence/mongo"
	strategyMySQL "github.com/wyfcoding/portfolioanalytics/internal/strategy/infrastructure/persistence/mysql"
	strategyHTTP "github.com/wyfcoding/portfolioanalytics/internal/strategy/interfaces/http"
	"github.com/wyfcoding/portfolioanalytics/pkg/cache"
	"github.com/wyfcoding/portfolioanalytics/pkg/config"
	"github.com/wyfcoding/portfolioanalytics/pkg/db"
	"github.com/wyfcoding/portfolioanalytics/pkg/logger"
	"github.com/wyfcoding/portfolioanalytics/pkg/metrics"
	"github.com/wyfcoding/portfolioanalytics/pkg/middleware"
	"github.com/wyfcoding/portfolioanalytics/pkg/mq"
	"github.com/wyfcoding/portfolioanalytics/pkg/ratelimit"
	"github.com/wyfcoding/portfolioanalytics/pkg/response"
)

// app holds the wired services and the resources that must be released on exit.
type app struct {
	cfg       *config.Config
	metrics   *metrics.Metrics
	portfolio *portfolioApp.PortfolioService
	strategy  *strategyApp.StrategyService
	market    *marketApp.MarketService
	limiter   ratelimit.Limiter

	checks  []func(context.Context) error
	closers []func(context.Context) error
}

type stores struct {
	portfolio portfolioDomain.PortfolioRepository
	strategy  strategyDomain.StrategyRepository
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}
	if cfg.Metrics.Enabled {
		a.metrics = metrics.New(cfg.ServiceName)
	}

	// 1. Storage
	st, err := a.openStores(ctx)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	// 2. Cache
	if cfg.Redis.Enabled {
		rc, err := cache.New(ctx, cache.Config{
			Host:        cfg.Redis.Host,
			Port:        cfg.Redis.Port,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			MaxPoolSize: cfg.Redis.MaxPoolSize,
		})
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		a.checks = append(a.checks, rc.Ping)
		a.closers = append(a.closers, func(context.Context) error { return rc.Close() })
		st.strategy = strategyCache.NewCachedStrategyRepository(st.strategy, rc, time.Duration(cfg.Redis.TTL)*time.Second, a.metrics)
		if cfg.RateLimit.Enabled {
			a.limiter = ratelimit.NewRedisRateLimiter(rc.Client())
		}
	}

	// 3. Messaging
	var portfolioPublisher portfolioDomain.EventPublisher = portfolioMessaging.NoopEventPublisher{}
	var strategyPublisher strategyDomain.EventPublisher
	if cfg.Kafka.Enabled {
		producer := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		a.closers = append(a.closers, func(context.Context) error { return producer.Close() })
		portfolioPublisher = portfolioMessaging.NewKafkaEventPublisher(producer, cfg.Kafka.Topic, a.metrics)
		strategyPublisher = strategyMessaging.NewKafkaEventPublisher(producer, cfg.Kafka.Topic, a.metrics)
	}

	// 4. Application
	a.portfolio = portfolioApp.NewPortfolioService(st.portfolio, portfolioPublisher, nil, portfolioApp.Config{
		DemoUserID:   cfg.Portfolio.DemoUserID,
		StartValue:   cfg.Portfolio.StartValue,
		SeedDays:     cfg.Portfolio.SeedDays,
		StoreTimeout: cfg.RequestTimeout(),
	}, a.metrics)
	a.strategy = strategyApp.NewStrategyService(st.strategy, strategyPublisher, cfg.RequestTimeout(), a.metrics)
	a.market = marketApp.NewMarketService(nil)

	// closers run in reverse, so pending events drain before the producer closes
	a.closers = append(a.closers, a.drainEvents)
	return a, nil
}

func (a *app) openStores(ctx context.Context) (*stores, error) {
	cfg := a.cfg.Database
	switch cfg.Driver {
	case config.DriverMongo:
		m, err := db.OpenMongo(ctx, db.MongoConfig{
			URI:            cfg.URI,
			Database:       cfg.Name,
			MaxPoolSize:    uint64(cfg.MaxOpenConns),
			ConnectTimeout: time.Duration(cfg.ConnectTimeout) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		a.checks = append(a.checks, m.Ping)
		a.closers = append(a.closers, m.Close)

		portfolios := portfolioMongo.NewPortfolioRepository(m.DB, a.metrics)
		strategies := strategyMongo.NewStrategyRepository(m.DB, a.metrics)
		if err := portfolios.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		if err := strategies.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return &stores{portfolio: portfolios, strategy: strategies}, nil

	case config.DriverMySQL:
		gdb, err := db.OpenMySQL(ctx, db.MySQLConfig{
			DSN:                cfg.DSN,
			MaxOpenConns:       cfg.MaxOpenConns,
			MaxIdleConns:       cfg.MaxIdleConns,
			ConnMaxLifetime:    cfg.ConnMaxLifetime,
			LogEnabled:         cfg.LogEnabled,
			SlowQueryThreshold: cfg.SlowQueryThreshold,
		})
		if err != nil {
			return nil, err
		}
		a.checks = append(a.checks, func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
		a.closers = append(a.closers, func(context.Context) error { return db.CloseMySQL(gdb) })

		portfolios := portfolioMySQL.NewPortfolioRepository(gdb, a.metrics)
		strategies := strategyMySQL.NewStrategyRepository(gdb, a.metrics)
		if err := portfolios.AutoMigrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate portfolios failed: %w", err)
		}
		if err := strategies.AutoMigrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate strategies failed: %w", err)
		}
		return &stores{portfolio: portfolios, strategy: strategies}, nil

	case config.DriverMemory:
		logger.Warn(ctx, "Using in-memory store, data is lost on restart")
		return &stores{
			portfolio: portfolioMemory.NewPortfolioRepository(),
			strategy:  strategyMemory.NewStrategyRepository(),
		}, nil
	}
	return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
}

func (a *app) drainEvents(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.portfolio.WaitEvents()
		a.strategy.WaitEvents()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain events: %w", ctx.Err())
	}
}

// router builds the HTTP surface: the API under /api plus health and metrics.
func (a *app) router() *gin.Engine {
	r := gin.New()
	// logging first so a recovered panic is logged with the request ids
	r.Use(
		middleware.GinLogging(),
		middleware.GinRecovery(),
		middleware.GinSecurityHeaders(),
		middleware.GinCORS(a.cfg.HTTP.AllowedOrigins),
		middleware.GinMetrics(a.metrics),
	)

	api := r.Group("/api")
	if a.limiter != nil {
		api.Use(middleware.GinRateLimit(a.limiter, ratelimit.Limit{
			Rate:   a.cfg.RateLimit.Rate,
			Burst:  a.cfg.RateLimit.Burst,
			Period: time.Duration(a.cfg.RateLimit.Period) * time.Second,
		}))
	}
	portfolioHTTP.NewPortfolioHandler(a.portfolio).RegisterRoutes(api)
	strategyHTTP.NewStrategyHandler(a.strategy).RegisterRoutes(api)
	marketHTTP.NewMarketHandler(a.market).RegisterRoutes(api)

	r.GET("/health", a.health)
	if a.metrics != nil {
		r.GET(a.cfg.Metrics.Path, gin.WrapH(a.metrics.Handler()))
	}
	return r
}

func (a *app) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	for _, check := range a.checks {
		if err := check(ctx); err != nil {
			logger.Error(ctx, "Health check failed", "error", err)
			response.ErrorWithStatus(c, http.StatusServiceUnavailable, "Service unavailable")
			return
		}
	}
	response.Success(c, gin.H{"status": "ok", "service": a.cfg.ServiceName})
}

// close releases resources in reverse order of acquisition.
func (a *app) close(ctx context.Context) {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		logger.Error(ctx, "Failed to release resources", "error", err)
	}
}
