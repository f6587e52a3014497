package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// PageSize is the fixed number of countries per listing page.
const PageSize = 25

// Server captures process level configuration.
type Server struct {
	Addr           string          `toml:"addr"`
	LogLevel       string          `toml:"log_level"`
	RequestTimeout time.Duration   `toml:"request_timeout"`
	Directory      DirectoryConfig `toml:"directory"`
	Cache          CacheConfig     `toml:"cache"`
	Redis          RedisConfig     `toml:"redis"`
	Borders        BorderConfig    `toml:"borders"`
}

// DirectoryConfig describes the upstream country directory.
type DirectoryConfig struct {
	BaseURL          string        `toml:"base_url"`
	Timeout          time.Duration `toml:"timeout"`
	FailureThreshold int           `toml:"failure_threshold"`
	SuccessThreshold int           `toml:"success_threshold"`
}

// CacheConfig selects and tunes the directory cache.
type CacheConfig struct {
	Backend string        `toml:"backend"` // memory or redis
	TTL     time.Duration `toml:"ttl"`
}

// RedisConfig configures the Redis client used by the redis cache backend.
type RedisConfig struct {
	URL          string        `toml:"url"`
	PoolSize     int           `toml:"pool_size"`
	MinIdleConns int           `toml:"min_idle_conns"`
	DialTimeout  time.Duration `toml:"dial_timeout"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// BorderConfig controls border-country resolution on the detail page.
type BorderConfig struct {
	Concurrency int `toml:"concurrency"`
	// Strict fails the whole detail view when any border lookup fails.
	Strict bool `toml:"strict"`
}

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Default returns the configuration used when nothing is set.
func Default() Server {
	return Server{
		Addr:           ":8080",
		LogLevel:       "info",
		RequestTimeout: 30 * time.Second,
		Directory: DirectoryConfig{
			BaseURL:          "https://restcountries.com/v2",
			Timeout:          10 * time.Second,
			FailureThreshold: 5,
			SuccessThreshold: 2,
		},
		Cache: CacheConfig{
			Backend: CacheBackendMemory,
			TTL:     time.Hour,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Borders: BorderConfig{
			Concurrency: 8,
		},
	}
}

// FromEnv builds the configuration from the optional TOML file named by
// ATLAS_CONFIG, then applies environment overrides so main stays lean.
func FromEnv() (Server, error) {
	return Load(os.Getenv("ATLAS_CONFIG"))
}

// Load reads path (if non-empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (Server, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Server{}, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Server{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Server) error {
	setString(&cfg.Addr, "ATLAS_ADDR")
	setString(&cfg.LogLevel, "ATLAS_LOG_LEVEL")
	setString(&cfg.Directory.BaseURL, "ATLAS_DIRECTORY_URL")
	setString(&cfg.Cache.Backend, "ATLAS_CACHE_BACKEND")
	setString(&cfg.Redis.URL, "ATLAS_REDIS_URL")

	var errs []error
	errs = append(errs,
		setDuration(&cfg.RequestTimeout, "ATLAS_REQUEST_TIMEOUT"),
		setDuration(&cfg.Directory.Timeout, "ATLAS_DIRECTORY_TIMEOUT"),
		setDuration(&cfg.Cache.TTL, "ATLAS_CACHE_TTL"),
		setInt(&cfg.Directory.FailureThreshold, "ATLAS_BREAKER_FAILURES"),
		setInt(&cfg.Directory.SuccessThreshold, "ATLAS_BREAKER_SUCCESSES"),
		setInt(&cfg.Redis.PoolSize, "ATLAS_REDIS_POOL_SIZE"),
		setInt(&cfg.Borders.Concurrency, "ATLAS_BORDER_CONCURRENCY"),
		setBool(&cfg.Borders.Strict, "ATLAS_STRICT_BORDERS"),
	)
	return errors.Join(errs...)
}

// Validate rejects configurations the server cannot start with.
func (c Server) Validate() error {
	u, err := url.Parse(c.Directory.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid directory base URL %q", c.Directory.BaseURL)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.Directory.Timeout <= 0 {
		return errors.New("directory timeout must be positive")
	}
	switch c.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.Redis.URL == "" {
			return errors.New("redis cache backend requires ATLAS_REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return errors.New("cache TTL must be positive")
	}
	if c.Borders.Concurrency < 1 {
		return errors.New("border concurrency must be at least 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}
