package services_test

import (
	"github.com/maxappraiser/appraiser-api/pkg/logger"
)

func init() {
	// Initialize logger for tests
	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
		ServiceName: "appraiser-api-test",
	}); err != nil {
		panic(err)
	}
}
