package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App        AppConfig
	Redis      RedisConfig
	EventStore EventStoreConfig
	Directory  DirectoryConfig
	Cache      CacheConfig
	Historical HistoricalConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Historical.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DASH_APP_ENV" required:"true"`
	Port         string `envconfig:"DASH_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DASH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DASH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"DASH_REDIS_URL"`
	Address      string        `envconfig:"DASH_REDIS_ADDR"`
	Password     string        `envconfig:"DASH_REDIS_PASSWORD"`
	DB           int           `envconfig:"DASH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DASH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DASH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DASH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DASH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DASH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type EventStoreConfig struct {
	Endpoint       string        `envconfig:"DASH_EVENT_STORE_ENDPOINT" required:"true"`
	Username       string        `envconfig:"DASH_EVENT_STORE_USERNAME"`
	Password       string        `envconfig:"DASH_EVENT_STORE_PASSWORD"`
	Index          string        `envconfig:"DASH_EVENT_STORE_INDEX" default:"events-v2"`
	RequestTimeout time.Duration `envconfig:"DASH_EVENT_STORE_REQUEST_TIMEOUT" default:"30s"`
	MaxAttempts    int           `envconfig:"DASH_EVENT_STORE_MAX_ATTEMPTS" default:"3"`
	RetryBaseDelay time.Duration `envconfig:"DASH_EVENT_STORE_RETRY_BASE_DELAY" default:"1s"`
}

type DirectoryConfig struct {
	Endpoint    string `envconfig:"DASH_DIRECTORY_ENDPOINT" default:"https://api.descope.com"`
	BearerToken string `envconfig:"DASH_DIRECTORY_BEARER_TOKEN"`
	PageSize    int    `envconfig:"DASH_DIRECTORY_PAGE_SIZE" default:"100"`
}

type CacheConfig struct {
	TTL    time.Duration `envconfig:"DASH_CACHE_TTL" default:"5m"`
	Bypass bool          `envconfig:"DASH_CACHE_BYPASS" default:"false"`
}

type HistoricalConfig struct {
	MinDate   Date `envconfig:"DASH_HISTORICAL_MIN_DATE" default:"2024-10-01"`
	LiveStart Date `envconfig:"DASH_HISTORICAL_LIVE_START" default:"2025-01-20"`
	Cutover   Date `envconfig:"DASH_HISTORICAL_CUTOVER" default:"2025-01-26"`
}

func (h HistoricalConfig) validate() error {
	if h.LiveStart.Time().After(h.Cutover.Time()) {
		return fmt.Errorf("%s must not be after %s", EnvHistoricalLiveStart, EnvHistoricalCutover)
	}
	if h.MinDate.Time().After(h.LiveStart.Time()) {
		return fmt.Errorf("%s must not be after %s", EnvHistoricalMinDate, EnvHistoricalLiveStart)
	}
	return nil
}

// Date decodes a YYYY-MM-DD env value into a UTC midnight instant.
type Date struct {
	value time.Time
}

func (d *Date) Decode(value string) error {
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", value, err)
	}
	d.value = parsed.UTC()
	return nil
}

func (d Date) Time() time.Time {
	return d.value
}
