package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"sweetshop/internal/accounts"
	"sweetshop/internal/catalog"
	"sweetshop/internal/middleware"
	"sweetshop/internal/orders"
	"sweetshop/internal/session"
)

type Deps struct {
	Storage    Pinger
	Catalog    *catalog.Catalog
	Accounts   *accounts.Service
	Orders     *orders.Reader
	Sessions   *session.Registry
	JWTSecret  string
	SessionTTL time.Duration
}

// Mount registers every route on r.
func Mount(r gin.IRouter, d Deps) {
	r.GET("/", Home(d.Catalog))
	r.GET("/catalog", GetCategories(d.Catalog))
	r.GET("/products", GetProducts(d.Catalog))
	r.GET("/products/:id", GetProduct(d.Catalog))
	r.GET("/health", Health(d.Storage))

	r.POST("/auth/register", Register(d.Accounts))
	r.POST("/auth/login", Login(d.Accounts, d.Sessions, d.JWTSecret, d.SessionTTL))

	user := r.Group("/")
	user.Use(middleware.UserAuth(d.JWTSecret, d.SessionTTL, d.Sessions))
	{
		user.POST("/auth/logout", Logout(d.Sessions))

		user.GET("/cart", GetCart())
		user.POST("/cart/add/:productId", AddToCart())
		user.POST("/cart/update/:productId", UpdateCartItem())
		user.POST("/cart/remove/:productId", RemoveFromCart())

		user.GET("/profile", GetProfile(d.Accounts, d.Orders))
		user.POST("/profile/update", UpdateProfile(d.Accounts))
		user.GET("/orders", GetOrders(d.Orders))
	}
}
