package main

import (
	"context"
	"expvar"
	"runtime"
	"time"

	"github.com/mesarpg/mesa/internal/domain"
	"github.com/mesarpg/mesa/internal/infrastructure/configs"
	"github.com/mesarpg/mesa/internal/infrastructure/events"
	"github.com/mesarpg/mesa/internal/infrastructure/logging"
	"github.com/mesarpg/mesa/internal/infrastructure/messaging"
	"github.com/mesarpg/mesa/internal/infrastructure/ratelimiter"
	memrepo "github.com/mesarpg/mesa/internal/infrastructure/repository"
	"github.com/mesarpg/mesa/internal/infrastructure/tracing"
	"github.com/mesarpg/mesa/internal/infrastructure/ws"
	"github.com/mesarpg/mesa/internal/persistence/db"
	mongorepo "github.com/mesarpg/mesa/internal/persistence/repository"
	"github.com/mesarpg/mesa/internal/presentation/api"
	"github.com/mesarpg/mesa/internal/presentation/handler/health"
	"github.com/mesarpg/mesa/internal/presentation/handler/tables"
)

const serviceName = "mesa-http"

func main() {
	logger := logging.NewLogger(logging.NewDefaultConfig())
	logger.Init()

	shutdownTracer, err := tracing.InitTracer(tracing.NewDefaultConfig(serviceName))
	if err != nil {
		logger.Fatal(logging.General, logging.Startup, "failed to init tracer", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(ctx)
	}()

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		logger.Fatal(logging.General, logging.Startup, "failed to load config", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	store, tableRepo, userDir := buildStore(cfg, logger)

	var publisher ws.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbit, err := messaging.NewRabbitMQ(cfg.RabbitMQ.URI)
		if err != nil {
			logger.Fatal(logging.RabbitMQ, logging.Startup, "failed to connect to rabbitmq", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
		defer rabbit.Close()

		publisher = events.NewActionPublisher(rabbit)

		consumer := events.NewActionConsumer(rabbit, logger)
		go func() {
			if err := consumer.Listen(); err != nil {
				logger.Error(logging.RabbitMQ, logging.Consume, "consumer stopped", map[logging.ExtraKey]any{
					logging.ErrorMessage: err.Error(),
				})
			}
		}()
	}

	registry := ws.NewRegistry()
	engine := ws.NewEngine(store, userDir, registry, publisher, logger)
	gateway := ws.NewGateway(registry, engine, logger, cfg.Gateway, cfg.HTTP.AllowedOrigins)

	rateLimiter := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})

	app := api.NewApplication(
		*cfg,
		gateway,
		tables.NewHandler(store, tableRepo, userDir, logger),
		health.NewHandler(),
		logger,
		rateLimiter,
	)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Fatal(logging.General, logging.Shutdown, "server exited", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
}

// buildStore wires the configured action store with its collaborators. The
// memory mode serves demos and tests; mongo is the production path.
func buildStore(cfg *configs.Config, logger logging.Logger) (domain.ActionStore, domain.TableRepository, domain.UserDirectory) {
	switch cfg.Store.Mode {
	case configs.StoreModeMongo:
		ctx, cancel := context.WithTimeout(context.Background(), db.DefaultConnectionTimeout)
		defer cancel()

		mongoCfg := db.NewMongoDefaultConfig()
		client, err := db.NewMongoClient(ctx, mongoCfg)
		if err != nil {
			logger.Fatal(logging.Mongo, logging.Startup, "failed to connect to mongodb", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}

		database := db.GetDatabase(client, mongoCfg)
		tableRepo := mongorepo.NewTableRepository(database)
		userDir := mongorepo.NewUserDirectory(database)
		store := mongorepo.NewActionStore(database, tableRepo, userDir)

		if err := store.EnsureIndexes(ctx); err != nil {
			logger.Fatal(logging.Mongo, logging.Startup, "failed to ensure indexes", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}

		return store, tableRepo, userDir

	case configs.StoreModeMemory:
		fallthrough
	default:
		tableRepo := memrepo.NewTableRepository()
		userDir := memrepo.NewUserDirectory()
		return memrepo.NewActionStore(tableRepo, userDir), tableRepo, userDir
	}
}
