package profiling

import (
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/maxappraiser/appraiser-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileTypes_Default(t *testing.T) {
	got, err := profileTypes("")
	require.NoError(t, err)

	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileAllocSpace,
		pyroscope.ProfileAllocObjects,
		pyroscope.ProfileGoroutines,
	}, got)
}

func TestProfileTypes_CustomDeduplicates(t *testing.T) {
	got, err := profileTypes("CPU, mutex,cpu,,mutex")
	require.NoError(t, err)

	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileMutexCount,
		pyroscope.ProfileMutexDuration,
	}, got)
}

func TestProfileTypes_OnlySeparators(t *testing.T) {
	got, err := profileTypes(" , ,")
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestProfileTypes_Invalid(t *testing.T) {
	_, err := profileTypes("cpu,heap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported O11Y_PROFILING_SAMPLE_TYPES value: "heap"`)
}

func TestApplicationName(t *testing.T) {
	assert.Equal(t, "custom", applicationName(" custom ", "svc"))
	assert.Equal(t, "svc", applicationName("", "svc"))
	assert.Equal(t, "appraiser-api", applicationName(" ", ""))
}

func TestProfileTags(t *testing.T) {
	got := profileTags(config.ObservabilityConfig{
		ServiceName:      "appraiser-api",
		ServiceNamespace: "max-appraiser",
		ServiceVersion:   "0.1.0",
	}, "production")

	assert.Equal(t, map[string]string{
		"service_name":    "appraiser-api",
		"namespace":       "max-appraiser",
		"service_version": "0.1.0",
		"environment":     "production",
	}, got)
}

func TestStart_Disabled(t *testing.T) {
	stop, err := Start(config.ProfilingConfig{Enabled: false}, config.ObservabilityConfig{}, "test")
	require.NoError(t, err)
	require.NotNil(t, stop)
	stop()
}

func TestStart_EnabledWithoutEndpoint(t *testing.T) {
	_, err := Start(config.ProfilingConfig{Enabled: true, Endpoint: "  "}, config.ObservabilityConfig{}, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profiling endpoint is required")
}
