package shared

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("SHARED_TEST_VALUE", "  value ")
	assert.Equal(t, "value", EnvOrDefault("SHARED_TEST_VALUE", "fallback"))

	t.Setenv("SHARED_TEST_VALUE", "   ")
	assert.Equal(t, "fallback", EnvOrDefault("SHARED_TEST_VALUE", "fallback"))
}

func TestEnvSeconds(t *testing.T) {
	t.Setenv("SHARED_TEST_SECONDS", "30")
	assert.Equal(t, 30*time.Second, EnvSeconds("SHARED_TEST_SECONDS", time.Minute))

	for _, raw := range []string{"", "abc", "0", "-5"} {
		t.Setenv("SHARED_TEST_SECONDS", raw)
		assert.Equal(t, time.Minute, EnvSeconds("SHARED_TEST_SECONDS", time.Minute), raw)
	}
}

func TestHostPort(t *testing.T) {
	t.Setenv("SHARED_TEST_HOST", "localhost")
	t.Setenv("SHARED_TEST_PORT", "6379")
	assert.Equal(t, "localhost:6379", HostPort("SHARED_TEST_HOST", "SHARED_TEST_PORT"))

	t.Setenv("SHARED_TEST_PORT", "")
	assert.Empty(t, HostPort("SHARED_TEST_HOST", "SHARED_TEST_PORT"))
}

func TestNewLogger(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("nonsense"))

	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", "Product Service")

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, `service="Product Service"`)
	assert.Contains(t, out, "key=value")
}
