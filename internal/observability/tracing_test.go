package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/valpere/pogoda/internal/config"
	"github.com/valpere/pogoda/tests/helpers"
)

func TestInitTracer(t *testing.T) {
	logger := helpers.NewSilentTestLogger()

	t.Run("disabled without endpoint", func(t *testing.T) {
		shutdown, err := InitTracer(config.MetricsConfig{}, "pogoda", "test", logger)

		require.NoError(t, err)
		assert.NoError(t, shutdown(context.Background()))
	})

	t.Run("installs provider with endpoint", func(t *testing.T) {
		previous := otel.GetTracerProvider()
		t.Cleanup(func() { otel.SetTracerProvider(previous) })

		shutdown, err := InitTracer(config.MetricsConfig{ZipkinEndpoint: "http://127.0.0.1:9411/api/v2/spans"}, "pogoda", "test", logger)

		require.NoError(t, err)
		_, isSDK := otel.GetTracerProvider().(*sdktrace.TracerProvider)
		assert.True(t, isSDK)
		assert.NoError(t, shutdown(context.Background()))
	})

	t.Run("rejects malformed endpoint", func(t *testing.T) {
		shutdown, err := InitTracer(config.MetricsConfig{ZipkinEndpoint: "://bad"}, "pogoda", "test", logger)

		assert.Error(t, err)
		assert.NotNil(t, shutdown)
	})
}
