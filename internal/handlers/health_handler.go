package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	scorerName   string
	breakerState func() string
}

// NewHealthHandler creates the health handler. breakerState may be nil when
// the active scorer has no upstream dependency.
func NewHealthHandler(scorerName string, breakerState func() string) *HealthHandler {
	return &HealthHandler{
		scorerName:   scorerName,
		breakerState: breakerState,
	}
}

func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	body := gin.H{
		"status": "ok",
		"scorer": h.scorerName,
	}
	// A tripped breaker degrades scoring to keyword analysis; the service stays up.
	if h.breakerState != nil {
		body["inference_breaker"] = h.breakerState()
	}

	c.JSON(http.StatusOK, body)
}
