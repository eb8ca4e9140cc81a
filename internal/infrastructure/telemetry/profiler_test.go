package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_RequiresAddressAndName(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "pfo"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server address")

	_, err = NewProfiler(ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "application name")
}

func TestSanitizeLabels(t *testing.T) {
	pairs := sanitizeLabels(map[string]string{
		"Route":      "/api/v1/estates/:id",
		"method":     "POST",
		"request_id": "abc",
		"empty":      "",
		"operation":  strings.Repeat("x", MaxLabelValueLength+10),
	})

	require.Len(t, pairs, 6)
	assert.Equal(t, []string{"method", "POST"}, pairs[0:2])
	assert.Equal(t, "operation", pairs[2])
	assert.Len(t, pairs[3], MaxLabelValueLength)
	assert.Equal(t, []string{"route", "/api/v1/estates/:id"}, pairs[4:6])
}

func TestWithProfilingLabels(t *testing.T) {
	labels := map[string]string{ProfilingLabelOperation: "issue_receipt"}

	var got string
	WithProfilingLabels(context.Background(), labels, func(ctx context.Context) {
		got, _ = pprof.Label(ctx, ProfilingLabelOperation)
	})
	assert.Equal(t, "issue_receipt", got)

	called := false
	WithProfilingLabels(context.Background(), nil, func(ctx context.Context) {
		called = true
	})
	assert.True(t, called)
}
