package profiling

import (
	"fmt"
	"strings"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/maxappraiser/appraiser-api/config"
	"github.com/maxappraiser/appraiser-api/pkg/logger"
	"go.uber.org/zap"
)

const (
	defaultApplicationName = "appraiser-api"
	defaultUploadInterval  = 15 * time.Second
)

// sampleTypes maps O11Y_PROFILING_SAMPLE_TYPES entries to pyroscope profile types
var sampleTypes = map[string][]pyroscope.ProfileType{
	"cpu":           {pyroscope.ProfileCPU},
	"alloc_space":   {pyroscope.ProfileAllocSpace},
	"alloc_objects": {pyroscope.ProfileAllocObjects},
	"inuse_space":   {pyroscope.ProfileInuseSpace},
	"goroutines":    {pyroscope.ProfileGoroutines},
	"mutex":         {pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration},
	"block":         {pyroscope.ProfileBlockCount, pyroscope.ProfileBlockDuration},
}

// defaultSampleTypes is used when no sample types are configured
const defaultSampleTypes = "cpu,alloc_space,alloc_objects,goroutines"

// Start begins continuous profiling when enabled and returns the function
// that stops it. Scoring is CPU bound, so cpu and allocation profiles are the
// useful defaults.
func Start(cfg config.ProfilingConfig, o11y config.ObservabilityConfig, environment string) (func(), error) {
	if !cfg.Enabled {
		logger.Info("Continuous profiling disabled")
		return func() {}, nil
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("profiling endpoint is required when profiling is enabled")
	}

	uploadRate := time.Duration(cfg.UploadIntervalSeconds) * time.Second
	if uploadRate <= 0 {
		uploadRate = defaultUploadInterval
	}

	types, err := profileTypes(cfg.SampleTypes)
	if err != nil {
		return nil, err
	}

	appName := applicationName(cfg.AppName, o11y.ServiceName)
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: appName,
		ServerAddress:   endpoint,
		UploadRate:      uploadRate,
		ProfileTypes:    types,
		Tags:            profileTags(o11y, environment),
		Logger:          logger.Log.Sugar(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start profiler: %w", err)
	}

	logger.Info("Continuous profiling initialized",
		zap.String("application_name", appName),
		zap.String("endpoint", endpoint),
		zap.Int("profile_types", len(types)),
		zap.Duration("upload_rate", uploadRate),
	)

	return func() {
		if stopErr := profiler.Stop(); stopErr != nil {
			logger.Error("Failed to stop profiler", zap.Error(stopErr))
		}
	}, nil
}

// profileTypes parses a comma-separated sample type list, dropping duplicates
func profileTypes(value string) ([]pyroscope.ProfileType, error) {
	if strings.TrimSpace(value) == "" {
		value = defaultSampleTypes
	}

	var out []pyroscope.ProfileType
	seen := map[pyroscope.ProfileType]bool{}

	for _, raw := range strings.Split(value, ",") {
		key := strings.ToLower(strings.TrimSpace(raw))
		if key == "" {
			continue
		}
		mapped, ok := sampleTypes[key]
		if !ok {
			return nil, fmt.Errorf("unsupported O11Y_PROFILING_SAMPLE_TYPES value: %q", key)
		}
		for _, t := range mapped {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}

	if len(out) == 0 {
		return profileTypes(defaultSampleTypes)
	}
	return out, nil
}

func applicationName(appName, serviceName string) string {
	for _, name := range []string{appName, serviceName} {
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	return defaultApplicationName
}

// profileTags labels every profile with the service identity; blank values are left out
func profileTags(o11y config.ObservabilityConfig, environment string) map[string]string {
	tags := map[string]string{}
	for k, v := range map[string]string{
		"service_name":    o11y.ServiceName,
		"namespace":       o11y.ServiceNamespace,
		"service_version": o11y.ServiceVersion,
		"instance":        o11y.ServiceInstanceID,
		"environment":     environment,
	} {
		if v = strings.TrimSpace(v); v != "" {
			tags[k] = v
		}
	}
	return tags
}
