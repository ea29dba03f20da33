package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"sweetshop/internal/catalog"
)

/*
GET /products
- pagination is optional
- without both page and limit every matching product is returned
*/
func GetProducts(products *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, route)

		log.Debug().
			Str("area", "http").
			Str("route", route).
			Str("page", c.Query("page")).
			Str("limit", c.Query("limit")).
			Str("category", c.Query("category")).
			Str("search", c.Query("search")).
			Msg("hit")

		filter := catalog.Filter{
			Category: strings.TrimSpace(c.Query("category")),
			Search:   strings.TrimSpace(c.Query("search")),
		}

		pageStr := c.Query("page")
		limitStr := c.Query("limit")
		paginated := pageStr != "" && limitStr != ""
		if paginated {
			page, limit, err := parsePaginationParams(pageStr, limitStr)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, err.Error())
				return
			}
			filter.Page = page
			filter.Limit = limit
		}

		list, total, err := products.Products(c.Request.Context(), filter)
		if err != nil {
			respondWithDomainError(c, route, err)
			return
		}

		if !paginated {
			c.JSON(http.StatusOK, list)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"data": list,
			"pagination": gin.H{
				"page":  filter.Page,
				"limit": filter.Limit,
				"total": total,
			},
		})
	}
}

func GetProduct(products *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id"
		defer handlePanic(c, route)

		product, err := products.FindProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondWithDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
