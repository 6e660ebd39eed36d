package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "3000", config.Port)
	assert.Equal(t, SourceLive, config.DataSource)
	assert.Equal(t, "https://filmfreeway.com/festivals/discounts", config.SourceURL)
	assert.Equal(t, 5*time.Minute, config.CacheTTL)
	assert.Equal(t, 15*time.Second, config.FetchTimeout)
	assert.Equal(t, time.Duration(0), config.RefreshInterval)
	assert.Equal(t, 10, config.PageSize)
	assert.Equal(t, 3, config.MinRecords)
	assert.Empty(t, config.MemcacheAddr)
	assert.Empty(t, config.RedisAddr)
	assert.False(t, config.RespectRobots)
	assert.NoError(t, config.Validate())

	// Test with environment variables
	t.Setenv("PORT", "8080")
	t.Setenv("WAIVER_DATA_SOURCE", "static")
	t.Setenv("CACHE_TTL_SECONDS", "30")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "5")
	t.Setenv("REDIS_ADDR", "redis.example.com:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("RESPECT_ROBOTS", "true")
	t.Setenv("FETCH_RATE_PER_SECOND", "0.5")

	config = LoadConfig()
	assert.Equal(t, "8080", config.Port)
	assert.Equal(t, SourceStatic, config.DataSource)
	assert.Equal(t, 30*time.Second, config.CacheTTL)
	assert.Equal(t, 5*time.Second, config.FetchTimeout)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 2, config.RedisDB)
	assert.True(t, config.RespectRobots)
	assert.Equal(t, 0.5, config.FetchRate)
	assert.NoError(t, config.Validate())
}

func TestLoadConfigIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("PAGE_SIZE", "ten")
	t.Setenv("RESPECT_ROBOTS", "maybe")

	config := LoadConfig()
	assert.Equal(t, 10, config.PageSize)
	assert.False(t, config.RespectRobots)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Port = "http" }},
		{"unknown source", func(c *Config) { c.DataSource = "database" }},
		{"relative source url", func(c *Config) { c.SourceURL = "/festivals/discounts" }},
		{"zero ttl", func(c *Config) { c.CacheTTL = 0 }},
		{"zero timeout", func(c *Config) { c.FetchTimeout = 0 }},
		{"zero page size", func(c *Config) { c.PageSize = 0 }},
		{"zero rate", func(c *Config) { c.FetchRate = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := LoadConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestValidateStaticSkipsSourceURL(t *testing.T) {
	config := LoadConfig()
	config.DataSource = SourceStatic
	config.SourceURL = ""
	assert.NoError(t, config.Validate())
	assert.False(t, config.IsProduction())
}
