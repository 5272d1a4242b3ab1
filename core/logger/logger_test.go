package logger

import (
	"net/http/httptest"
	"testing"

	"consent-manager/core/middleware/rayid"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		enabled zapcore.Level
		muted   zapcore.Level
		wantErr bool
	}{
		{"Debug Console", Config{Level: "debug", Format: "console"}, zapcore.DebugLevel, zapcore.DebugLevel - 1, false},
		{"Info JSON", Config{Level: "info", Format: "json"}, zapcore.InfoLevel, zapcore.DebugLevel, false},
		{"Warn", Config{Level: "warn"}, zapcore.WarnLevel, zapcore.InfoLevel, false},
		{"Empty Level Is Info", Config{}, zapcore.InfoLevel, zapcore.DebugLevel, false},
		{"Invalid Level", Config{Level: "loud"}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.enabled))
			assert.False(t, l.Core().Enabled(tt.muted))
		})
	}
}

func TestWithRayID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		WithRayID(base, c).Info("without id")
		c.Locals(rayid.LocalsKey, "abc")
		WithRayID(base, c).Info("with id")
		return nil
	})

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Empty(t, entries[0].Context)
	assert.Equal(t, "abc", entries[1].ContextMap()["ray_id"])
}
