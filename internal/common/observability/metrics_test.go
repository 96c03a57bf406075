package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *metric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findSum(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok, "metric %s is not an int64 sum", name)
				return sum
			}
		}
	}
	t.Fatalf("metric %s was never recorded", name)
	return metricdata.Sum[int64]{}
}

func TestRecordGenAICall_CountsPerOperationAndStatus(t *testing.T) {
	reader := metric.NewManualReader()
	obs := newWithReader("test", reader)
	ctx := context.Background()

	obs.RecordGenAICall(ctx, "classify-intent", "success")
	obs.RecordGenAICall(ctx, "classify-intent", "success")
	obs.RecordGenAICall(ctx, "fallback-plan", "error")

	sum := findSum(t, collect(t, reader), "genai.calls")
	assert.Len(t, sum.DataPoints, 2)

	want := attribute.NewSet(
		attribute.String("operation", "classify-intent"),
		attribute.String("status", "success"),
	)
	var classified int64
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
		if dp.Attributes.Equals(&want) {
			classified = dp.Value
		}
	}
	assert.Equal(t, int64(2), classified)
	assert.Equal(t, int64(3), total)
}

func TestRecordQueryMetrics(t *testing.T) {
	reader := metric.NewManualReader()
	obs := newWithReader("test", reader)
	ctx := context.Background()

	obs.RecordQueryProcessed(ctx, "MTL_STATUS", "success")
	obs.RecordQueryDuration(ctx, 25*time.Millisecond, "MTL_STATUS")

	rm := collect(t, reader)
	sum := findSum(t, rm, "queries.processed")
	assert.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
}

func TestObservability_NilSafeWhenUnconfigured(t *testing.T) {
	ctx := context.Background()
	obs := &Observability{}

	obs.RecordGenAICall(ctx, "classify-intent", "success")
	obs.RecordQueryProcessed(ctx, "MTL_STATUS", "success")
	obs.RecordQueryDuration(ctx, time.Millisecond, "MTL_STATUS")
	obs.Shutdown()
}
