package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/vsinha/fleetdash/pkg/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, logging.ParseLevel(tt.in))
		})
	}
}

func TestFromContext(t *testing.T) {
	t.Run("falls back to default", func(t *testing.T) {
		assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	})

	t.Run("carries fields", func(t *testing.T) {
		var buf bytes.Buffer
		base := zerolog.New(&buf)
		ctx := logging.WithLogger(context.Background(), &base)
		ctx = logging.WithReservation(ctx, "R-100")
		ctx = logging.WithOperation(ctx, "override")

		logging.FromContext(ctx).Info().Msg("pinned")

		out := buf.String()
		assert.Contains(t, out, `"res_number":"R-100"`)
		assert.Contains(t, out, `"operation":"override"`)
		assert.Contains(t, out, `"message":"pinned"`)
	})
}

func TestNewLoggerFromConfig_Discard(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.Output = "discard"
	cfg.Fields = map[string]any{"app": "fleetdash"}

	logger := logging.NewLoggerFromConfig(cfg)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
