package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Health(storage Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /health"
		defer handlePanic(c, route)

		if err := ensureStorage(c.Request.Context(), storage); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "storage unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
