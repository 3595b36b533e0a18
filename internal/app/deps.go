package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kaifgrit/Rifakat/internal/config"
	"github.com/kaifgrit/Rifakat/internal/imagehost"
	"github.com/kaifgrit/Rifakat/internal/imagehost/cloudinary"
	"github.com/kaifgrit/Rifakat/internal/imagehost/memory"
	"github.com/kaifgrit/Rifakat/internal/repository"
	"github.com/kaifgrit/Rifakat/internal/repository/cache"
	mongorepo "github.com/kaifgrit/Rifakat/internal/repository/mongo"
	"github.com/kaifgrit/Rifakat/internal/repository/postgres"
	"github.com/kaifgrit/Rifakat/pkg/database"
	"github.com/kaifgrit/Rifakat/pkg/health"
	"github.com/kaifgrit/Rifakat/pkg/httpclient"
)

// unwind collects cleanup steps for a constructor that may fail halfway.
// run executes them newest first; a constructor that succeeds calls disarm.
type unwind struct {
	steps []func()
}

func (u *unwind) add(step func()) {
	u.steps = append(u.steps, step)
}

func (u *unwind) disarm() {
	u.steps = nil
}

func (u *unwind) run() {
	for i := len(u.steps) - 1; i >= 0; i-- {
		u.steps[i]()
	}
	u.steps = nil
}

// shutdownTracerStep flushes the tracer during an unwind.
func shutdownTracerStep(shutdown func(context.Context) error, logger *slog.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
}

// stores holds the open connections behind the product repository.
type stores struct {
	mongo *mongo.Client
	pool  *pgxpool.Pool
	redis *redis.Client
}

func (s *stores) close(logger *slog.Logger) {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if s.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.mongo.Disconnect(ctx); err != nil {
			logger.Error("mongodb disconnect error", slog.String("error", err.Error()))
		}
	}
}

// openProductRepository connects to the configured store, prepares its
// schema, and wraps it in the redis cache when enabled. Checks are added to
// healthHandler.
func openProductRepository(
	ctx context.Context,
	cfg *config.Config,
	service string,
	healthHandler *health.Handler,
	logger *slog.Logger,
) (repository.ProductRepository, *stores, error) {
	s := &stores{}
	var repo repository.ProductRepository

	switch cfg.CatalogStore {
	case config.StoreMongo:
		metrics := database.NewMongoPoolMetrics(prometheus.DefaultRegisterer, service)
		client, err := database.NewMongoClient(ctx, cfg.Mongo, metrics.Monitor(), logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		s.mongo = client
		logger.Info("connected to MongoDB", slog.String("database", cfg.Mongo.Database))

		mongoRepo := mongorepo.NewProductRepository(client.Database(cfg.Mongo.Database).Collection(mongorepo.CollectionName))
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			s.close(logger)
			return nil, nil, err
		}
		repo = mongoRepo
		healthHandler.Register("mongodb", func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		})

	case config.StorePostgres:
		pool, err := database.NewPostgresPool(ctx, &cfg.Postgres, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		s.pool = pool
		logger.Info("connected to PostgreSQL",
			slog.String("host", cfg.Postgres.Host),
			slog.Int("port", cfg.Postgres.Port),
			slog.String("database", cfg.Postgres.DBName),
		)

		if err := database.RunMigrations(ctx, pool, postgres.Migrations(), logger); err != nil {
			s.close(logger)
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")

		prometheus.MustRegister(database.NewPoolStatsCollector(pool, service))
		repo = postgres.NewProductRepository(pool)
		healthHandler.Register("postgres", func(ctx context.Context) error {
			return pool.Ping(ctx)
		})

	default:
		return nil, nil, fmt.Errorf("unknown catalog store %q", cfg.CatalogStore)
	}

	if cfg.CacheEnabled {
		client, err := database.NewRedisClient(ctx, cfg.Redis, logger)
		if err != nil {
			s.close(logger)
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		s.redis = client
		repo = cache.NewProductRepository(repo, client, cfg.CacheTTL, logger)
		logger.Info("product cache enabled",
			slog.String("addr", cfg.Redis.Addr()),
			slog.Duration("ttl", cfg.CacheTTL),
		)
		healthHandler.RegisterOptional("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}

	return repo, s, nil
}

// newImageHost builds the breaker-guarded image host client.
func newImageHost(cfg *config.Config, healthHandler *health.Handler, logger *slog.Logger) (*imagehost.Client, error) {
	var provider imagehost.Provider
	switch cfg.ImageHost {
	case config.ImageHostCloudinary:
		p, err := cloudinary.New(cloudinary.Config{
			URL:       cfg.CloudinaryURL,
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
		}, logger)
		if err != nil {
			return nil, err
		}
		provider = p
	case config.ImageHostMemory:
		logger.Warn("using in-memory image host, hosted images are never deleted")
		provider = memory.New()
	default:
		return nil, fmt.Errorf("unknown image host %q", cfg.ImageHost)
	}

	client := imagehost.NewClient(provider, cfg.ImageHost, httpclient.DefaultCircuitBreakerConfig(""), logger)
	healthHandler.RegisterOptional("image_host", func(context.Context) error {
		if client.State() == gobreaker.StateOpen {
			return errors.New("circuit breaker open")
		}
		return nil
	})
	return client, nil
}
