package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/poppy/pkg/tracing/exporters"
)

func TestStartSpan(t *testing.T) {
	t.Run("should be a no-op without a tracer", func(t *testing.T) {
		SetTracer(nil)
		ctx, span := StartSpan(context.Background(), "noop")
		defer span.End()

		assert.Empty(t, GetTraceID(ctx))
		assert.Empty(t, GetSpanID(ctx))
		assert.Nil(t, GetActiveSpan(ctx))
	})

	t.Run("should expose ids once the provider is installed", func(t *testing.T) {
		logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
		shutdown, err := Setup(context.Background(), "poppy-test", false, exporters.DefaultOTLPConfig(), logger)
		require.NoError(t, err)
		defer func() {
			SetTracer(nil)
			_ = shutdown(context.Background())
		}()

		ctx, span := StartSpan(context.Background(), "op")
		RecordError(span, errors.New("boom"))
		span.End()

		assert.Len(t, GetTraceID(ctx), 32)
		assert.Len(t, GetSpanID(ctx), 16)
	})
}

func TestNewOTLPExporter(t *testing.T) {
	cfg := exporters.DefaultOTLPConfig()
	cfg.Protocol = "carrier-pigeon"

	_, err := exporters.NewOTLPExporter(context.Background(), cfg)
	assert.EqualError(t, err, "unsupported OTLP protocol: carrier-pigeon (use 'grpc' or 'http')")

	cfg.Endpoint = ""
	_, err = exporters.NewOTLPExporter(context.Background(), cfg)
	assert.EqualError(t, err, "OTLP endpoint is required")
}
