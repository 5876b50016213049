package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetenv(t *testing.T) {
	const (
		key          = "METRICS_PUBLISHER_TEST_KEY"
		defaultValue = "default"
	)

	t.Run("unset key falls back to the default", func(t *testing.T) {
		assert.Equal(t, defaultValue, Getenv("METRICS_PUBLISHER_UNSET_KEY", defaultValue))
	})
	t.Run("empty value wins over the default", func(t *testing.T) {
		t.Setenv(key, "")
		assert.Empty(t, Getenv(key, defaultValue))
	})
	t.Run("set value", func(t *testing.T) {
		t.Setenv(key, "production")
		assert.Equal(t, "production", Getenv(key, defaultValue))
	})
}
