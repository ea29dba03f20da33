package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sweetshop/internal/orders"
)

/* =========================
   GET ORDERS
========================= */

// GetOrders lists the logged-in user's past orders.
func GetOrders(history *orders.Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		entry, ok := currentSession(c, route)
		if !ok {
			return
		}

		list, err := history.ListByUser(c.Request.Context(), entry.User.ID)
		if err != nil {
			respondWithDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}
