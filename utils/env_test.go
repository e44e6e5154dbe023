package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		t.Setenv("TEST_ENV_STRING", "hello")
		assert.Equal(t, "hello", GetEnv("TEST_ENV_STRING", "default"))
		assert.Equal(t, "default", GetEnv("TEST_ENV_STRING_MISSING", "default"))
	})

	t.Run("int", func(t *testing.T) {
		t.Setenv("TEST_ENV_INT", "42")
		assert.Equal(t, 42, GetEnv("TEST_ENV_INT", 7))
		assert.Equal(t, 7, GetEnv("TEST_ENV_INT_MISSING", 7))
	})

	t.Run("bool", func(t *testing.T) {
		t.Setenv("TEST_ENV_BOOL", "true")
		assert.Equal(t, true, GetEnv("TEST_ENV_BOOL", false))
	})

	t.Run("duration", func(t *testing.T) {
		t.Setenv("TEST_ENV_DURATION", "1h30m")
		assert.Equal(t, 90*time.Minute, GetEnv("TEST_ENV_DURATION", time.Minute))
	})

	t.Run("empty value falls back to default", func(t *testing.T) {
		t.Setenv("TEST_ENV_EMPTY", "")
		assert.Equal(t, "default", GetEnv("TEST_ENV_EMPTY", "default"))
	})

	t.Run("invalid int panics", func(t *testing.T) {
		t.Setenv("TEST_ENV_BAD_INT", "not-a-number")
		assert.Panics(t, func() {
			GetEnv("TEST_ENV_BAD_INT", 0)
		})
	})
}

func TestGetRequiredEnv(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		t.Setenv("TEST_ENV_REQUIRED", "value")
		assert.Equal(t, "value", GetRequiredEnv[string]("TEST_ENV_REQUIRED"))
	})

	t.Run("missing panics", func(t *testing.T) {
		assert.Panics(t, func() {
			GetRequiredEnv[string]("TEST_ENV_REQUIRED_MISSING")
		})
	})
}
