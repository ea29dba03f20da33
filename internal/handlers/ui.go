package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sweetshop/internal/catalog"
	"sweetshop/internal/middleware"
)

// Home is the shop front: the catalog plus, for a browser that carries a
// session cookie, whether someone appears to be logged in.
func Home(products *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /"
		defer handlePanic(c, route)

		categories, err := products.Categories(c.Request.Context())
		if err != nil {
			respondWithDomainError(c, route, err)
			return
		}

		_, cookieErr := c.Cookie(middleware.SessionCookie)
		c.JSON(http.StatusOK, gin.H{
			"title":      "Sweet Shop",
			"categories": categories,
			"loggedIn":   cookieErr == nil,
		})
	}
}
