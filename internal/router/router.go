package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/maxappraiser/appraiser-api/config"
	"github.com/maxappraiser/appraiser-api/internal/handlers"
	"github.com/maxappraiser/appraiser-api/internal/middleware"
	"github.com/maxappraiser/appraiser-api/pkg/metrics"
	"github.com/maxappraiser/appraiser-api/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Handlers groups the HTTP handlers mounted by New
type Handlers struct {
	Evaluation *handlers.EvaluationHandler
	Health     *handlers.HealthHandler
	Info       *handlers.InfoHandler
}

// New builds the gin engine with global middleware and every route
func New(cfg *config.Config, h Handlers) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(cors.New(corsConfig(cfg)))

	router.GET("/", h.Info.Info)

	// The evaluation endpoint is reachable both at the root and under /api
	registerEvaluationRoutes(router.Group(""), cfg, h.Evaluation)

	api := router.Group("/api")
	api.GET("/healthcheck", h.Health.Healthcheck)
	api.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	registerEvaluationRoutes(api, cfg, h.Evaluation)

	router.StaticFS("/app", http.FS(web.Static()))

	// methods outside handlers.NotAllowedMethods, e.g. PROPFIND
	router.NoMethod(h.Evaluation.NoMethod(evaluatePath, "/api"+evaluatePath))

	return router
}

const evaluatePath = "/evaluate/idea"

func registerEvaluationRoutes(group *gin.RouterGroup, cfg *config.Config, h *handlers.EvaluationHandler) {
	group.POST(evaluatePath, middleware.BodySizeLimitMiddleware(cfg.Server.MaxBodyBytes), h.EvaluateIdea)
	for _, method := range handlers.NotAllowedMethods {
		group.Handle(method, evaluatePath, h.MethodNotAllowed)
	}
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader, "traceparent", "tracestate"},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	if cfg.AllowsAnyOrigin() {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}

	corsCfg.AllowOrigins = append([]string{}, cfg.Server.AllowedOrigins...)
	// Allow localhost in development
	if cfg.IsDevelopment() {
		corsCfg.AllowOrigins = append(corsCfg.AllowOrigins, "http://localhost:8080", "http://127.0.0.1:8080")
	}
	return corsCfg
}
