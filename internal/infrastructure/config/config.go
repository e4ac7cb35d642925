package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported values for database.driver
const (
	DriverPostgres = "postgres"
	DriverMongoDB  = "mongodb"
)

// Supported values for ratelimit.backend
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// DefaultRateLimitKeyPrefix namespaces rate limit counters in Redis
const DefaultRateLimitKeyPrefix = "shopledger:ratelimit:"

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	RateLimit RateLimitConfig
	Breaker   BreakerConfig
	Ledger    LedgerConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds the relational store connection settings.
// Driver selects which store backs the ledger readers.
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// MongoDBConfig holds document store connection settings
type MongoDBConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	AuthDB         string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
	MinPoolSize    uint64
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// RateLimitConfig holds request rate limiting settings
type RateLimitConfig struct {
	Enabled   bool
	Backend   string // memory or redis
	Requests  int
	Window    time.Duration
	KeyPrefix string
}

// BreakerConfig holds circuit breaker settings for ledger source reads
type BreakerConfig struct {
	Enabled          bool
	MaxRequests      uint32        // Requests allowed through while half-open
	Interval         time.Duration // Window after which closed-state counts reset
	Timeout          time.Duration // Time spent open before probing again
	FailureThreshold uint32        // Consecutive failures that open the breaker
}

// LedgerConfig holds ledger computation settings
type LedgerConfig struct {
	ReturnPolicy string
	FetchTimeout time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	// Database tracing options
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool          // Log full SQL statements (dev only)
	DBSlowQueryThresh time.Duration // Slow query threshold for warnings
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with LEDGER_ prefix (e.g., LEDGER_DATABASE_PASSWORD)
// 2. Variables from a .env file in the working directory
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	// A missing .env file is the normal case outside local development
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/shopledger")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("database.driver")),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		MongoDB: MongoDBConfig{
			URI:            v.GetString("mongodb.uri"),
			Database:       v.GetString("mongodb.database"),
			Username:       v.GetString("mongodb.username"),
			Password:       v.GetString("mongodb.password"),
			AuthDB:         v.GetString("mongodb.auth_db"),
			ConnectTimeout: v.GetDuration("mongodb.connect_timeout"),
			MaxPoolSize:    v.GetUint64("mongodb.max_pool_size"),
			MinPoolSize:    v.GetUint64("mongodb.min_pool_size"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		RateLimit: RateLimitConfig{
			Enabled:   v.GetBool("ratelimit.enabled"),
			Backend:   strings.ToLower(v.GetString("ratelimit.backend")),
			Requests:  v.GetInt("ratelimit.requests"),
			Window:    v.GetDuration("ratelimit.window"),
			KeyPrefix: v.GetString("ratelimit.key_prefix"),
		},
		Breaker: BreakerConfig{
			Enabled:          v.GetBool("breaker.enabled"),
			MaxRequests:      v.GetUint32("breaker.max_requests"),
			Interval:         v.GetDuration("breaker.interval"),
			Timeout:          v.GetDuration("breaker.timeout"),
			FailureThreshold: v.GetUint32("breaker.failure_threshold"),
		},
		Ledger: LedgerConfig{
			ReturnPolicy: v.GetString("ledger.return_policy"),
			FetchTimeout: v.GetDuration("ledger.fetch_timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "shopledger"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "shopledger"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.MongoDB.URI == "" {
		cfg.MongoDB.URI = "mongodb://localhost:27017"
	}
	if cfg.MongoDB.Database == "" {
		cfg.MongoDB.Database = "shopledger"
	}
	if cfg.MongoDB.AuthDB == "" {
		cfg.MongoDB.AuthDB = "admin"
	}
	if cfg.MongoDB.ConnectTimeout == 0 {
		cfg.MongoDB.ConnectTimeout = 10 * time.Second
	}
	if cfg.MongoDB.MaxPoolSize == 0 {
		cfg.MongoDB.MaxPoolSize = 50
	}
	if cfg.MongoDB.MinPoolSize == 0 {
		cfg.MongoDB.MinPoolSize = 5
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	// CORS origins have no fallback: an empty list allows no cross-origin requests.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.RateLimit.Backend == "" {
		cfg.RateLimit.Backend = RateLimitBackendMemory
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 120
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = time.Minute
	}
	if cfg.RateLimit.KeyPrefix == "" {
		cfg.RateLimit.KeyPrefix = DefaultRateLimitKeyPrefix
	}
	if cfg.Breaker.MaxRequests == 0 {
		cfg.Breaker.MaxRequests = 3
	}
	if cfg.Breaker.Interval == 0 {
		cfg.Breaker.Interval = time.Minute
	}
	if cfg.Breaker.Timeout == 0 {
		cfg.Breaker.Timeout = 30 * time.Second
	}
	if cfg.Breaker.FailureThreshold == 0 {
		cfg.Breaker.FailureThreshold = 5
	}
	if cfg.Ledger.ReturnPolicy == "" {
		cfg.Ledger.ReturnPolicy = "exclude"
	}
	if cfg.Ledger.FetchTimeout == 0 {
		cfg.Ledger.FetchTimeout = 10 * time.Second
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "shopledger"
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMongoDB:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverMongoDB, c.Database.Driver)
	}

	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.MongoDB.MinPoolSize > c.MongoDB.MaxPoolSize {
		return fmt.Errorf("mongodb.min_pool_size (%d) cannot exceed mongodb.max_pool_size (%d)",
			c.MongoDB.MinPoolSize, c.MongoDB.MaxPoolSize)
	}

	switch c.RateLimit.Backend {
	case RateLimitBackendMemory, RateLimitBackendRedis:
	default:
		return fmt.Errorf("ratelimit.backend must be %q or %q, got %q", RateLimitBackendMemory, RateLimitBackendRedis, c.RateLimit.Backend)
	}
	if c.RateLimit.Requests < 0 {
		return fmt.Errorf("ratelimit.requests cannot be negative")
	}

	if c.App.Env == "production" {
		if c.Database.Driver == DriverPostgres {
			if c.Database.Password == "" {
				return fmt.Errorf("database.password is required in production")
			}
			if c.Database.SSLMode == "disable" {
				return fmt.Errorf("database.sslmode cannot be 'disable' in production")
			}
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Log.Level == "debug" {
			return fmt.Errorf("log.level cannot be 'debug' in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the host:port address of the Redis server
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
