package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/maxappraiser/appraiser-api/internal/models"
)

// respondError writes {"error": message}. err is recorded on the gin context
// and shows up as error_reason in the request log; clients never see it.
func respondError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck // returns *gin.Error, nothing to check
	}
	c.JSON(status, models.ErrorResponse{Error: message})
}
