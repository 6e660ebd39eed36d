package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryService(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	mc := NewMemoryService()
	mc.now = func() time.Time { return now }

	_, err := mc.Get("missing")
	assert.ErrorIs(t, err, ErrMiss)

	value := []byte("blocked")
	assert.NoError(t, mc.Set("filmfreeway_rate_limited", value, time.Minute))
	value[0] = 'X'

	got, err := mc.Get("filmfreeway_rate_limited")
	assert.NoError(t, err)
	assert.Equal(t, "blocked", string(got))

	// Expired entries are misses
	now = now.Add(time.Minute)
	_, err = mc.Get("filmfreeway_rate_limited")
	assert.ErrorIs(t, err, ErrMiss)

	// Zero expiration keeps the value
	assert.NoError(t, mc.Set("forever", []byte("1"), 0))
	now = now.Add(24 * time.Hour)
	_, err = mc.Get("forever")
	assert.NoError(t, err)

	assert.NoError(t, mc.Delete("forever"))
	_, err = mc.Get("forever")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestNew(t *testing.T) {
	assert.IsType(t, &MemoryService{}, New(""))
	assert.IsType(t, &MemcacheService{}, New("localhost:11211"))
}
