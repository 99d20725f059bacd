package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maxappraiser/appraiser-api/pkg/logger"
	"github.com/maxappraiser/appraiser-api/pkg/metrics"
	"go.uber.org/zap"
)

// unmatchedRoute labels requests that hit no route, keeping metric cardinality bounded
const unmatchedRoute = "unmatched"

// redactedQueryParams never reach the request log
var redactedQueryParams = map[string]bool{
	"token": true, "password": true, "secret": true, "key": true,
	"auth": true, "api_key": true, "apikey": true,
}

// ObservabilityMiddleware records request metrics and writes one log line per request
func ObservabilityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		// route is unknown before c.Next, so the gauge is keyed by method only
		active := metrics.ActiveRequests.WithLabelValues(method)
		active.Inc()
		defer active.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		duration := metrics.MeasureDuration(start)
		status := c.Writer.Status()
		statusLabel := strconv.Itoa(status)

		metrics.HTTPRequestDuration.WithLabelValues(method, route, statusLabel).Observe(duration)
		metrics.HTTPRequestTotal.WithLabelValues(method, route, statusLabel).Inc()

		fields := []zap.Field{
			zap.String("route", route),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Int("response_size", c.Writer.Size()),
		}
		if id := RequestID(c); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if status >= 400 {
			fields = append(fields, errorFields(c)...)
		}

		logger.LogHTTPRequest(c.Request.Context(), method, c.Request.URL.Path, status, duration, fields...)
	}
}

func errorFields(c *gin.Context) []zap.Field {
	var fields []zap.Field

	if query := c.Request.URL.Query(); len(query) > 0 {
		kept := make(map[string]string, len(query))
		for k, v := range query {
			if !redactedQueryParams[strings.ToLower(k)] && len(v) > 0 {
				kept[k] = v[0]
			}
		}
		if len(kept) > 0 {
			fields = append(fields, zap.Any("query_params", kept))
		}
	}

	if len(c.Errors) > 0 {
		fields = append(fields, zap.String("error", c.Errors.String()))
	}
	return fields
}
