package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"sjsage522/filmwaiver/pkg/errors"
)

// Data source modes
const (
	SourceLive   = "live"
	SourceStatic = "static"
)

// Config represents the application configuration
type Config struct {
	// HTTP server
	Port string

	// Data source
	DataSource    string
	SourceURL     string
	SourceBaseURL string

	// Snapshot cache
	CacheTTL        time.Duration
	RefreshInterval time.Duration

	// Fetching
	FetchTimeout   time.Duration
	RateLimitBlock time.Duration
	FetchRate      float64
	FetchBurst     int
	RespectRobots  bool

	// Extraction and queries
	MinRecords int
	PageSize   int

	// Memcache configuration, empty keeps the rate limit marker in process
	MemcacheAddr string

	// Redis configuration, empty disables snapshot publishing
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		Port:                 getEnv("PORT", "3000"),
		DataSource:           getEnv("WAIVER_DATA_SOURCE", SourceLive),
		SourceURL:            getEnv("SOURCE_URL", "https://filmfreeway.com/festivals/discounts"),
		SourceBaseURL:        getEnv("SOURCE_BASE_URL", "https://filmfreeway.com"),
		CacheTTL:             getSeconds("CACHE_TTL_SECONDS", 300),
		RefreshInterval:      getSeconds("REFRESH_INTERVAL_SECONDS", 0),
		FetchTimeout:         getSeconds("FETCH_TIMEOUT_SECONDS", 15),
		RateLimitBlock:       getSeconds("RATE_LIMIT_BLOCK_SECONDS", 300),
		FetchRate:            getFloat("FETCH_RATE_PER_SECOND", 1),
		FetchBurst:           getInt("FETCH_RATE_BURST", 1),
		RespectRobots:        getBool("RESPECT_ROBOTS", false),
		MinRecords:           getInt("MIN_RECORDS", 3),
		PageSize:             getInt("PAGE_SIZE", 10),
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              getInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "filmwaiver:discounts"),
		RedisStreamMaxLength: getInt("REDIS_STREAM_MAX_LENGTH", 100),
		Environment:          getEnv("WAIVER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return errors.NewConfiguration(fmt.Sprintf("invalid port %q", c.Port), err)
	}

	switch c.DataSource {
	case SourceLive:
		u, err := url.Parse(c.SourceURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.NewConfiguration(fmt.Sprintf("invalid source url %q", c.SourceURL), err)
		}
		if _, err := url.Parse(c.SourceBaseURL); err != nil {
			return errors.NewConfiguration(fmt.Sprintf("invalid source base url %q", c.SourceBaseURL), err)
		}
	case SourceStatic:
	default:
		return errors.NewConfiguration(fmt.Sprintf("unknown data source %q", c.DataSource), nil)
	}

	if c.CacheTTL <= 0 {
		return errors.NewConfiguration("cache ttl must be positive", nil)
	}
	if c.FetchTimeout <= 0 {
		return errors.NewConfiguration("fetch timeout must be positive", nil)
	}
	if c.PageSize <= 0 {
		return errors.NewConfiguration("page size must be positive", nil)
	}
	if c.FetchRate <= 0 || c.FetchBurst <= 0 {
		return errors.NewConfiguration("fetch rate and burst must be positive", nil)
	}

	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}

func getSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getInt(key, defaultSeconds)) * time.Second
}
