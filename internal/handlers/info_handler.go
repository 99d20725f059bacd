package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type InfoHandler struct {
	name    string
	version string
}

func NewInfoHandler(name, version string) *InfoHandler {
	return &InfoHandler{name: name, version: version}
}

// Info handles GET /
func (h *InfoHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    h.name,
		"version": h.version,
	})
}
