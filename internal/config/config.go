package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kaifgrit/Rifakat/internal/search/elasticsearch"
	pkgconfig "github.com/kaifgrit/Rifakat/pkg/config"
	"github.com/kaifgrit/Rifakat/pkg/database"
	"github.com/kaifgrit/Rifakat/pkg/tracing"
)

// Store backends for the product catalog.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

// Image host backends.
const (
	ImageHostCloudinary = "cloudinary"
	ImageHostMemory     = "memory"
)

// Config holds all configuration for the catalog API and its workers.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort           int           `env:"HTTP_PORT" envDefault:"5000"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000,http://localhost:5500,http://127.0.0.1:5500"`

	// Product store
	CatalogStore string `env:"CATALOG_STORE" envDefault:"mongo"`
	Mongo        database.MongoConfig
	Postgres     database.PostgresConfig

	// Read-through cache in front of the product store.
	CacheEnabled bool          `env:"CACHE_ENABLED" envDefault:"false"`
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"60s"`
	Redis        database.RedisConfig

	// Kafka. An empty broker list disables event publishing.
	KafkaBrokers     []string `env:"KAFKA_BROKERS" envSeparator:","`
	ReaperGroupID    string   `env:"REAPER_GROUP_ID" envDefault:"rifakat-image-reaper"`
	ReaperMaxRetries int      `env:"REAPER_MAX_RETRIES" envDefault:"3"`
	ReaperHTTPPort   int      `env:"REAPER_HTTP_PORT" envDefault:"5001"`

	// Search. An empty ELASTICSEARCH_URLS disables the search endpoint.
	Search          elasticsearch.Config
	IndexerGroupID    string `env:"INDEXER_GROUP_ID" envDefault:"rifakat-search-indexer"`
	IndexerMaxRetries int    `env:"INDEXER_MAX_RETRIES" envDefault:"3"`
	IndexerHTTPPort   int    `env:"INDEXER_HTTP_PORT" envDefault:"5002"`

	// Image host
	ImageHost           string `env:"IMAGE_HOST" envDefault:"cloudinary"`
	CloudinaryURL       string `env:"CLOUDINARY_URL"`
	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`

	// Admin authentication
	JWTSecret         string        `env:"JWT_SECRET"`
	JWTTTL            time.Duration `env:"JWT_TTL" envDefault:"24h"`
	AdminUsername     string        `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	LoginRateLimit    int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`

	// Observability
	Tracing              tracing.Config
	PprofAllowedCIDRs    []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`
	SlowQueryThresholdMs int      `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from .env and the environment and validates it.
func Load(dotenvFiles ...string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, dotenvFiles...); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.ReaperHTTPPort < 1 || c.ReaperHTTPPort > 65535 {
		return fmt.Errorf("invalid reaper HTTP port: %d", c.ReaperHTTPPort)
	}
	if c.IndexerHTTPPort < 1 || c.IndexerHTTPPort > 65535 {
		return fmt.Errorf("invalid indexer HTTP port: %d", c.IndexerHTTPPort)
	}

	switch c.CatalogStore {
	case StoreMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required")
		}
	case StorePostgres:
		if c.Postgres.Host == "" {
			return fmt.Errorf("POSTGRES_HOST is required")
		}
	default:
		return fmt.Errorf("CATALOG_STORE must be %q or %q, got %q", StoreMongo, StorePostgres, c.CatalogStore)
	}

	switch c.ImageHost {
	case ImageHostMemory:
	case ImageHostCloudinary:
		if !c.HasCloudinaryCredentials() {
			return fmt.Errorf("CLOUDINARY_URL or CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required")
		}
	default:
		return fmt.Errorf("IMAGE_HOST must be %q or %q, got %q", ImageHostCloudinary, ImageHostMemory, c.ImageHost)
	}

	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if !strings.HasPrefix(c.AdminPasswordHash, "$2") {
		return fmt.Errorf("ADMIN_PASSWORD_HASH must be a bcrypt hash")
	}
	if c.CacheEnabled && c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive when the cache is enabled")
	}
	if c.LoginRateLimit < 1 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be at least 1, got %d", c.LoginRateLimit)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.Tracing.SampleRate)
	}
	return nil
}

// HasCloudinaryCredentials reports whether either credential form is set.
func (c *Config) HasCloudinaryCredentials() bool {
	if c.CloudinaryURL != "" {
		return true
	}
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// SearchEnabled reports whether an Elasticsearch cluster is configured.
func (c *Config) SearchEnabled() bool {
	return len(c.Search.URLs) > 0
}

// EventsEnabled reports whether Kafka brokers are configured.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}
