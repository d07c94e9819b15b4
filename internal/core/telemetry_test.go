// AngelaMos | 2026
// telemetry_test.go

package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/carterperez-dev/perkhub/internal/config"
)

func TestNewTelemetryDisabledStillTraces(t *testing.T) {
	tel, err := NewTelemetry(context.Background(),
		config.OtelConfig{ServiceName: "perkhub-test"},
		config.AppConfig{Version: "test"},
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	assert.False(t, tel.Exporting())

	ctx, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	assert.Len(t, TraceIDFromContext(ctx), 32)
	SetSpanError(ctx, errors.New("boom"))
}

func TestTraceIDFromContextWithoutSpan(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestSampleRateClamp(t *testing.T) {
	assert.Equal(t, defaultSampleRate, sampleRate(0))
	assert.Equal(t, defaultSampleRate, sampleRate(1.5))
	assert.Equal(t, 0.5, sampleRate(0.5))
}
