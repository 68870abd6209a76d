package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracerWithoutEndpoint(t *testing.T) {
	ctx := context.Background()
	tp, err := InitTracer(ctx, "")
	require.NoError(t, err)
	defer tp.Shutdown(ctx)

	assert.Same(t, tp, otel.GetTracerProvider())

	_, span := otel.Tracer("test").Start(ctx, "noop")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}

func TestInitTracerWithEndpoint(t *testing.T) {
	ctx := context.Background()
	tp, err := InitTracer(ctx, "http://127.0.0.1:4318/v1/traces")
	require.NoError(t, err)
	assert.NotNil(t, tp)
	_ = tp.Shutdown(ctx)
}
