package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// forcedFault short-circuits any request carrying force=500 with a server
// error, so black-box tests can exercise client error handling. It runs ahead
// of every other stage and is not scoped to the posts collection.
func forcedFault() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Query("force") == "500" {
			pipelineRejections.WithLabelValues("forced_fault").Inc()
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "forced server error"})
			return
		}
		c.Next()
	}
}
