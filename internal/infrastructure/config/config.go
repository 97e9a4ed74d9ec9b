package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET, required"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo        MongoConfig
	Redis        RedisConfig
	Geocoder     GeocoderConfig
	Router       RouterConfig
	GeocodeCache GeocodeCacheConfig
	Tracker      TrackerConfig
	Notifier     NotifierConfig
}

type MongoConfig struct {
	URI         string        `env:"MONGO_URI,           default=mongodb://localhost:27017"`
	Database    string        `env:"MONGO_DB,            default=route_tracking"`
	MaxPoolSize uint64        `env:"MONGO_MAX_POOL_SIZE, default=50"`
	Timeout     time.Duration `env:"MONGO_TIMEOUT,       default=10s"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,  default=5s"`
}

// GeocoderConfig points at a Nominatim compatible search API. Its usage policy
// requires an identifying User-Agent.
type GeocoderConfig struct {
	BaseURL     string        `env:"GEOCODER_BASE_URL,     default=https://nominatim.openstreetmap.org"`
	UserAgent   string        `env:"GEOCODER_USER_AGENT,   default=route-tracking/1.0"`
	CountryCode string        `env:"GEOCODER_COUNTRY_CODE, default=mx"`
	Timeout     time.Duration `env:"GEOCODER_TIMEOUT,      default=10s"`
	Concurrency int           `env:"GEOCODER_CONCURRENCY,  default=4"`
}

// RouterConfig points at an OSRM compatible route service.
type RouterConfig struct {
	BaseURL string        `env:"ROUTER_BASE_URL, default=https://router.project-osrm.org"`
	Profile string        `env:"ROUTER_PROFILE,  default=driving"`
	Timeout time.Duration `env:"ROUTER_TIMEOUT,  default=15s"`
}

// GeocodeCacheConfig enables the SQL geocode cache when DSN is set.
// Driver is "pgx" for PostgreSQL or "sqlite".
type GeocodeCacheConfig struct {
	Driver string `env:"GEOCODE_CACHE_DRIVER, default=sqlite"`
	DSN    string `env:"GEOCODE_CACHE_DSN"`
}

type TrackerConfig struct {
	LockTTL  time.Duration `env:"PACKAGE_LOCK_TTL,  default=10s"`
	LockWait time.Duration `env:"PACKAGE_LOCK_WAIT, default=2s"`
}

type NotifierConfig struct {
	Workers  int           `env:"NOTIFY_WORKERS,   default=4"`
	DedupTTL time.Duration `env:"NOTIFY_DEDUP_TTL, default=24h"`
}

// Development reports whether the service runs with developer defaults.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
