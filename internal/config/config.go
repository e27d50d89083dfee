package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	API       APIConfig       `yaml:"api"`
	GraphQL   GraphQLConfig   `yaml:"graphql"`
	Notifier  NotifierConfig  `yaml:"notifier"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Debug     DebugConfig     `yaml:"debug"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
}

// CORSConfig holds CORS settings. AllowedOrigins also governs which origins
// may open websocket connections.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,If-None-Match,X-Request-Id"`
	ExposedHeaders   string `yaml:"exposed_headers"   env:"CORS_EXPOSED_HEADERS"   env-default:"ETag,Location,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// APIConfig holds REST surface settings.
type APIConfig struct {
	// Prefix is the versioned path prefix. Breaking changes get a new prefix.
	Prefix string `yaml:"prefix" env:"API_PREFIX" env-default:"/api/v1"`
}

// ServicesPath returns the collection path of service records.
func (a APIConfig) ServicesPath() string {
	return strings.TrimRight(a.Prefix, "/") + "/services"
}

// QueryPath returns the path of the structured query endpoint.
func (a APIConfig) QueryPath() string {
	return strings.TrimRight(a.Prefix, "/") + "/query"
}

// GraphQLConfig holds GraphQL server settings.
type GraphQLConfig struct {
	Path              string        `yaml:"path"                env:"GRAPHQL_PATH"                env-default:"/graphql"`
	ComplexityLimit   int           `yaml:"complexity_limit"    env:"GRAPHQL_COMPLEXITY_LIMIT"    env-default:"300"`
	QueryCacheSize    int           `yaml:"query_cache_size"    env:"GRAPHQL_QUERY_CACHE_SIZE"    env-default:"1000"`
	KeepAliveInterval time.Duration `yaml:"keep_alive_interval" env:"GRAPHQL_KEEP_ALIVE_INTERVAL" env-default:"10s"`
}

// NotifierConfig holds change-event delivery settings.
type NotifierConfig struct {
	Path         string        `yaml:"path"          env:"NOTIFIER_PATH"          env-default:"/ws"`
	BufferSize   int           `yaml:"buffer_size"   env:"NOTIFIER_BUFFER_SIZE"   env-default:"64"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"NOTIFIER_WRITE_TIMEOUT" env-default:"10s"`
	PingInterval time.Duration `yaml:"ping_interval" env:"NOTIFIER_PING_INTERVAL" env-default:"30s"`
}

// RateLimitConfig limits mutating REST requests per client IP.
type RateLimitConfig struct {
	WritesPerMinute int           `yaml:"writes_per_minute" env:"RATE_LIMIT_WRITES_PER_MINUTE" env-default:"0"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"  env:"RATE_LIMIT_CLEANUP_INTERVAL"  env-default:"5m"`
}

// Enabled reports whether write limiting is on.
func (r RateLimitConfig) Enabled() bool { return r.WritesPerMinute > 0 }

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Path    string `yaml:"path"    env:"METRICS_PATH"    env-default:"/metrics"`
}

// DebugConfig toggles troubleshooting endpoints.
type DebugConfig struct {
	Enabled bool `yaml:"enabled" env:"DEBUG_ENABLED" env-default:"false"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
