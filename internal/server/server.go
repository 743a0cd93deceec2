// Package server wires configuration, storage, and transport into a
// runnable Clover service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/go-playground/validator/v10"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/internal/handlers"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/health"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/middleware"
	"github.com/Ramsey-B/clover/pkg/redis"
	"github.com/Ramsey-B/clover/pkg/repositories"
	"github.com/Ramsey-B/clover/pkg/schema"
	"github.com/Ramsey-B/clover/pkg/startup"
	syncengine "github.com/Ramsey-B/clover/pkg/sync"
	"github.com/Ramsey-B/clover/pkg/tracing"
	"github.com/Ramsey-B/clover/pkg/tracing/exporters"
)

// Server owns the service's long-lived dependencies
type Server struct {
	cfg    *config.Config
	logger ectologger.Logger

	echo     *echo.Echo
	sqlDB    *sqlx.DB
	db       database.DB
	redis    *redis.Client
	producer *kafka.Producer
	checker  *health.Checker

	shutdownTracing func(context.Context) error
	startup         *startup.Startup
}

// New loads configuration and builds an unstarted server
func New() (*Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg, logger: logger}
	s.startup = startup.NewStartup(logger, cfg.StartupMaxAttempts)
	s.registerDependencies()
	return s, nil
}

func buildLogger(cfg *config.Config) (ectologger.Logger, error) {
	var zapLogger *zap.Logger
	var err error
	if cfg.PrettyLogs {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return zapadapter.NewZapEctoLogger(zapLogger.Named(cfg.AppName), nil), nil
}

// Run starts every dependency in order and blocks until the context is
// cancelled, then stops them in reverse order.
func (s *Server) Run(ctx context.Context) error {
	if err := s.startup.Start(ctx); err != nil {
		return err
	}
	s.checker.SetReady(true)

	<-ctx.Done()

	s.checker.SetReady(false)
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.startup.Stop(stopCtx)
}

func (s *Server) registerDependencies() {
	s.startup.AddDependency(&startup.Func{
		Name:    "tracing",
		OnStart: s.startTracing,
		OnStop:  s.stopTracing,
	})
	s.startup.AddDependency(&startup.Func{
		Name:    "database",
		OnStart: s.startDatabase,
		OnStop:  s.stopDatabase,
	})
	s.startup.AddDependency(&startup.Func{
		Name:    "migrations",
		Needs:   []string{"database"},
		OnStart: s.runMigrations,
	})
	s.startup.AddDependency(&startup.Func{
		Name:    "redis",
		OnStart: s.startRedis,
		OnStop:  s.stopRedis,
	})
	s.startup.AddDependency(&startup.Func{
		Name:    "kafka",
		OnStart: s.startKafka,
		OnStop:  s.stopKafka,
	})
	s.startup.AddDependency(&startup.Func{
		Name:    "http",
		Needs:   []string{"database", "migrations", "redis", "kafka"},
		OnStart: s.startHTTP,
		OnStop:  s.stopHTTP,
	})
}

func (s *Server) startTracing(ctx context.Context) error {
	if !s.cfg.OTLPEnabled {
		return nil
	}
	otlpCfg := exporters.DefaultOTLPConfig()
	otlpCfg.Endpoint = s.cfg.OTLPEndpoint
	otlpCfg.Protocol = s.cfg.OTLPProtocol
	otlpCfg.Insecure = s.cfg.OTLPInsecure

	shutdown, err := tracing.InitProvider(ctx, s.cfg.AppName, otlpCfg)
	if err != nil {
		return err
	}
	s.shutdownTracing = shutdown
	return nil
}

func (s *Server) stopTracing(ctx context.Context) error {
	if s.shutdownTracing == nil {
		return nil
	}
	return s.shutdownTracing(ctx)
}

func (s *Server) startDatabase(ctx context.Context) error {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		s.cfg.DatabaseHost,
		s.cfg.DatabasePort,
		s.cfg.DatabaseUserName,
		s.cfg.DatabasePassword,
		s.cfg.DatabaseName,
		s.cfg.DatabaseSSLMode,
	)

	db, err := sqlx.ConnectContext(ctx, s.cfg.DatabaseDriver, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(s.cfg.DatabaseMaxOpenConns)
	db.SetMaxIdleConns(s.cfg.DatabaseMaxIdleConns)
	db.SetConnMaxLifetime(s.cfg.DatabaseConnMaxLifetime)

	s.sqlDB = db
	s.db = database.NewDatabaseInstance(db, s.logger)
	return nil
}

func (s *Server) stopDatabase(_ context.Context) error {
	if s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Server) runMigrations(_ context.Context) error {
	driver, err := migratepg.WithInstance(s.sqlDB.DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	ms := database.NewMigrationService(s.logger, &database.MigrationConfig{
		MigrationFolderPath: s.cfg.DatabaseMigrationFolderPath,
		Version:             uint(s.cfg.DatabaseMigrationVersion),
		Force:               s.cfg.DatabaseMigrationForce,
		AutoRollback:        s.cfg.DatabaseMigrationAutoRollback,
	})
	return ms.Migrate(s.cfg.DatabaseName, driver)
}

func (s *Server) startRedis(_ context.Context) error {
	if !s.cfg.RedisEnabled {
		s.logger.Info("Redis disabled; save locking is off")
		return nil
	}
	client, err := redis.NewClient(redis.Config{
		Host:     s.cfg.RedisHost,
		Port:     s.cfg.RedisPort,
		Password: s.cfg.RedisPassword,
		DB:       s.cfg.RedisDB,
	}, s.logger)
	if err != nil {
		return err
	}
	s.redis = client
	return nil
}

func (s *Server) stopRedis(_ context.Context) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Close()
}

func (s *Server) startKafka(_ context.Context) error {
	if !s.cfg.KafkaEnabled {
		s.logger.Info("Kafka disabled; item events will not be published")
		return nil
	}
	s.producer = kafka.NewProducer(kafka.Config{
		Brokers: s.cfg.KafkaBrokers,
		Topic:   s.cfg.KafkaItemsTopic,
	}, s.logger)
	return nil
}

func (s *Server) stopKafka(_ context.Context) error {
	if s.producer == nil {
		return nil
	}
	return s.producer.Close()
}

func (s *Server) startHTTP(_ context.Context) error {
	layout, err := schema.ForName(s.cfg.JunctionLayout)
	if err != nil {
		return err
	}

	items := repositories.NewPlanningItemRepository(s.db, s.logger)
	links := repositories.NewLinkRepository(s.db, s.logger, layout)
	notes := repositories.NewNoteRepository(s.db, s.logger)
	goals := repositories.NewGoalRepository(s.db, s.logger)
	facets := repositories.NewFacetRepository(s.db, s.logger)

	engine := syncengine.NewEngine(s.db, items, links, notes, goals, s.logger).
		WithRetention(syncengine.RetentionPolicy(s.cfg.NoteRetentionPolicy))
	if s.redis != nil {
		engine = engine.WithLocker(redis.NewLocker(s.redis, s.cfg.AppName))
	}
	if s.producer != nil {
		engine = engine.WithProducer(s.producer)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.HTTPErrorHandler = middleware.Error(s.logger)
	e.Use(otelecho.Middleware(s.cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(s.logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: s.cfg.AllowOrigins,
		AllowMethods: s.cfg.AllowMethods,
	}))
	e.Use(echomiddleware.Recover())

	s.checker = health.NewChecker(s.db, s.redis, "")
	s.checker.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	handlers.NewPlanningItemHandler(engine, items, links, notes).RegisterRoutes(api)
	handlers.NewFacetHandler(facets).RegisterRoutes(api)
	handlers.NewGoalHandler(goals).RegisterRoutes(api)

	e.Server.ReadTimeout = time.Duration(s.cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(s.cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(s.cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.ReadHeaderTimeout = time.Duration(s.cfg.ReadHeaderTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = s.cfg.MaxHeaderBytes

	s.echo = e
	go func() {
		if err := e.Start(fmt.Sprintf(":%d", s.cfg.Port)); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("HTTP server stopped unexpectedly")
		}
	}()
	return nil
}

// requestValidator adapts go-playground/validator to echo's Validator hook
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func (s *Server) stopHTTP(ctx context.Context) error {
	if s.echo == nil {
		return nil
	}
	return s.echo.Shutdown(ctx)
}
