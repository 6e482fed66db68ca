package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitDisabled(t *testing.T) {
	Init(Config{Enabled: false, ServiceName: "test"})
	assert.False(t, IsEnabled())

	ctx, span := StartSpan(context.Background(), "noop.span")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())
	assert.NotNil(t, ctx)
}

func TestInitEnabled(t *testing.T) {
	Init(Config{Enabled: true, ServiceName: "test"})
	assert.True(t, IsEnabled())

	Init(Config{Enabled: false, ServiceName: "test"})
}

func TestRecordErrorNil(t *testing.T) {
	Init(Config{Enabled: false, ServiceName: "test"})
	ctx, span := StartSpan(context.Background(), "span")
	defer span.End()

	assert.NotPanics(t, func() {
		RecordError(ctx, nil)
		RecordError(ctx, errors.New("boom"))
	})
}

func TestTraceAndSpanIDEmptyWithoutSpan(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", TraceID(ctx))
	assert.Equal(t, "", SpanID(ctx))
}

func TestStartUploadSpanAttachesIdentity(t *testing.T) {
	Init(Config{Enabled: false, ServiceName: "test"})
	ctx, span := StartUploadSpan(context.Background(), SpanUploadPart, "ws-1", "/docs", "file-abc", PartNumber(2))
	defer span.End()
	assert.NotNil(t, ctx)
}

func TestDefaultConfigDisabled(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "storage-engine", cfg.ServiceName)
}
