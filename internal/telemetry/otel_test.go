package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), Options{ServiceName: "sola-table-test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		root  string
	}{
		{1, "AlwaysOnSampler"},
		{2, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		desc := Sampler(tt.ratio).Description()
		assert.Contains(t, desc, "ParentBased{root:"+tt.root, "ratio %v", tt.ratio)
	}
}

func TestAttributes(t *testing.T) {
	attrs := attributes(Options{ServiceName: "sola-table-api", ServiceVersion: "1.2.3", StorageDriver: "sqlite"})
	require.Len(t, attrs, 3)
	assert.Equal(t, semconv.ServiceName("sola-table-api"), attrs[0])
	assert.Equal(t, semconv.ServiceVersion("1.2.3"), attrs[1])
	assert.Equal(t, "sqlite", attrs[2].Value.AsString())

	assert.Len(t, attributes(Options{ServiceName: "sola-table-api"}), 1)
}
