package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type addToCartRequest struct {
	Quantity *int `json:"quantity" form:"quantity"`
}

type updateCartRequest struct {
	Quantity *int `json:"quantity" form:"quantity" binding:"required"`
}

func GetCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		entry, ok := currentSession(c, route)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, newCartView(entry.Cart.Items()))
	}
}

// AddToCart adds one unit unless the body names a quantity.
func AddToCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/add/:productId"
		defer handlePanic(c, route)

		entry, ok := currentSession(c, route)
		if !ok {
			return
		}

		var req addToCartRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBind(&req); err != nil {
				respondValidationError(c, err)
				return
			}
		}
		qty := 1
		if req.Quantity != nil {
			qty = *req.Quantity
		}

		productID := c.Param("productId")
		if err := entry.Cart.Add(c.Request.Context(), productID, qty); err != nil {
			respondWithDomainError(c, route, err)
			return
		}

		items := entry.Cart.Items()
		log.Debug().Str("area", "cart").Str("userId", entry.User.ID).Str("productId", productID).Int("quantity", qty).Msg("added to cart")
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Product added to cart",
			"cartCount": cartCount(items),
		})
	}
}

func UpdateCartItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/update/:productId"
		defer handlePanic(c, route)

		entry, ok := currentSession(c, route)
		if !ok {
			return
		}

		var req updateCartRequest
		if err := c.ShouldBind(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if err := entry.Cart.Update(c.Request.Context(), c.Param("productId"), *req.Quantity); err != nil {
			respondWithDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, newCartView(entry.Cart.Items()))
	}
}

func RemoveFromCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/remove/:productId"
		defer handlePanic(c, route)

		entry, ok := currentSession(c, route)
		if !ok {
			return
		}

		if err := entry.Cart.Remove(c.Request.Context(), c.Param("productId")); err != nil {
			respondWithDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, newCartView(entry.Cart.Items()))
	}
}
