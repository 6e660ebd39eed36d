package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sjsage522/filmwaiver/pkg/errors"
)

// This test requires a running memcached instance
// If memcached is not available, the test will be skipped
func TestMemcacheService(t *testing.T) {
	mc := NewMemcacheService("localhost:11211")

	// Test if memcached is available
	if err := mc.Ping(); err != nil {
		t.Skip("Memcached is not available, skipping test")
	}

	// Set a value
	err := mc.Set("filmwaiver_test_key", []byte("test_value"), 1*time.Second)
	assert.NoError(t, err)

	// Get the value
	value, err := mc.Get("filmwaiver_test_key")
	assert.NoError(t, err)
	assert.Equal(t, "test_value", string(value))

	// Delete the value
	err = mc.Delete("filmwaiver_test_key")
	assert.NoError(t, err)

	// Try to get the deleted value
	_, err = mc.Get("filmwaiver_test_key")
	assert.ErrorIs(t, err, ErrMiss)

	// Deleting twice is fine
	assert.NoError(t, mc.Delete("filmwaiver_test_key"))
}

func TestMemcacheServiceUnreachable(t *testing.T) {
	// Nothing listens on the discard port
	mc := NewMemcacheService("127.0.0.1:9")

	_, err := mc.Get("filmwaiver_test_key")
	assert.True(t, errors.IsType(err, errors.ErrorTypeCache))
	assert.NotErrorIs(t, err, ErrMiss)

	err = mc.Set("filmwaiver_test_key", []byte("1"), time.Second)
	assert.True(t, errors.IsType(err, errors.ErrorTypeCache))

	assert.True(t, errors.IsType(mc.Ping(), errors.ErrorTypeCache))
}
