package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/utafrali/devcamper/pkg/config"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageLocal  = "local"
	StorageMinio  = "minio"
	StorageMemory = "memory"
)

// Config holds all configuration for the devcamper API.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	// HTTP server
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"5000"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// PostgreSQL
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"devcamper"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"devcamper_secret"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"devcamper"`
	PostgresSSLMode  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	PostgresMaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"20"`

	DBTimeout        time.Duration `env:"DB_TIMEOUT" envDefault:"5s"`
	AggregateTimeout time.Duration `env:"AGGREGATE_TIMEOUT" envDefault:"5s"`
	SlowQueryMS      int           `env:"LOG_SLOW_QUERY_MS" envDefault:"200"`

	// Redis backs the geocode cache.
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Auth
	JWTSecret string        `env:"JWT_SECRET" envDefault:""`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"720h"`

	// Geocoder
	GeocoderProvider string        `env:"GEOCODER_PROVIDER" envDefault:"mapquest"`
	GeocoderAPIKey   string        `env:"GEOCODER_API_KEY" envDefault:""`
	GeocoderBaseURL  string        `env:"GEOCODER_BASE_URL" envDefault:"https://www.mapquestapi.com"`
	GeocoderTimeout  time.Duration `env:"GEOCODER_TIMEOUT" envDefault:"5s"`
	GeocodeCacheTTL  time.Duration `env:"GEOCODE_CACHE_TTL" envDefault:"168h"`

	// File storage
	StorageDriver  string `env:"STORAGE_DRIVER" envDefault:"local"`
	FileUploadPath string `env:"FILE_UPLOAD_PATH" envDefault:"./public/uploads"`
	MaxFileUpload  int64  `env:"MAX_FILE_UPLOAD" envDefault:"1000000"`
	PublicBaseURL  string `env:"PUBLIC_BASE_URL" envDefault:""`

	MinioEndpoint  string `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY" envDefault:""`
	MinioSecretKey string `env:"MINIO_SECRET_KEY" envDefault:""`
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"devcamper-photos"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	// Edge protection; the defaults allow 100 requests per 10 minutes per IP.
	// Forwarding headers are trusted only from TrustedProxyCIDRs.
	RateLimitRequests  int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	RateLimitWindow    time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"10m"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST" envDefault:"100"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	PprofAllowedCIDRs  []string      `env:"PPROF_ALLOWED_CIDRS" envSeparator:","`
	TrustedProxyCIDRs  []string      `env:"TRUSTED_PROXY_CIDRS" envSeparator:","`

	// Tracing
	OTelEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTelSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load devcamper config: %w", err)
	}
	return cfg, nil
}

// Validate implements pkg/config.Validator.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT %d out of range", c.HTTPPort))
	}
	if c.JWTSecret == "" {
		if c.Environment == "production" {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		} else {
			c.JWTSecret = "devcamper-development-secret"
		}
	} else if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters"))
	}
	if c.JWTExpiry <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY must be positive"))
	}
	if c.MaxFileUpload <= 0 {
		errs = append(errs, errors.New("MAX_FILE_UPLOAD must be positive"))
	}
	if c.DBTimeout <= 0 || c.GeocoderTimeout <= 0 {
		errs = append(errs, errors.New("DB_TIMEOUT and GEOCODER_TIMEOUT must be positive"))
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive"))
	}

	switch c.StorageDriver {
	case StorageLocal, StorageMemory:
	case StorageMinio:
		if c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			errs = append(errs, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER %q must be one of local, minio, memory", c.StorageDriver))
	}

	switch strings.ToLower(c.GeocoderProvider) {
	case "mapquest":
		if c.GeocoderAPIKey == "" && c.Environment == "production" {
			errs = append(errs, errors.New("GEOCODER_API_KEY is required in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("GEOCODER_PROVIDER %q is not supported", c.GeocoderProvider))
	}

	return errors.Join(errs...)
}

// PublicURL is the externally reachable base URL of the API.
func (c *Config) PublicURL() string {
	if c.PublicBaseURL != "" {
		return strings.TrimRight(c.PublicBaseURL, "/")
	}
	return fmt.Sprintf("http://localhost:%d", c.HTTPPort)
}
