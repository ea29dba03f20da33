package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"sweetshop/internal/catalog"
)

// GetCategories lists every category with its products, stock included.
func GetCategories(products *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /catalog"
		defer handlePanic(c, route)

		categories, err := products.Categories(c.Request.Context())
		if err != nil {
			respondWithDomainError(c, route, err)
			return
		}

		log.Debug().Str("area", "http").Str("route", route).Int("categories", len(categories)).Msg("returning categories")
		c.JSON(http.StatusOK, gin.H{"categories": categories})
	}
}
