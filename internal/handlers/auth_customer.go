package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"sweetshop/internal/accounts"
	"sweetshop/internal/middleware"
	"sweetshop/internal/session"
)

type RegisterRequest struct {
	Username  string `json:"username" form:"username" binding:"required"`
	Password  string `json:"password" form:"password" binding:"required"`
	Email     string `json:"email" form:"email" binding:"required,email"`
	FirstName string `json:"firstName" form:"firstName" binding:"required"`
	LastName  string `json:"lastName" form:"lastName" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

func Register(users *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/register"
		defer handlePanic(c, route)

		var req RegisterRequest
		if err := c.ShouldBind(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		user, err := users.Register(c.Request.Context(), accounts.Registration{
			Username:  req.Username,
			Password:  req.Password,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		})
		if err != nil {
			respondWithDomainError(c, route, err)
			return
		}

		log.Info().Str("area", "auth").Str("userId", user.ID).Str("username", user.Username).Msg("user registered")
		c.JSON(http.StatusCreated, gin.H{"message": "Registration successful", "user": user})
	}
}

// Login checks credentials, opens a session hydrated with the user's stored
// cart and hands out its token both in the body and as a cookie.
func Login(users *accounts.Service, sessions *session.Registry, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/login"
		defer handlePanic(c, route)

		var req LoginRequest
		if err := c.ShouldBind(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		user, err := users.Authenticate(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			log.Info().Str("area", "auth").Str("username", req.Username).Msg("login rejected")
			respondWithDomainError(c, route, err)
			return
		}

		entry, err := sessions.Open(c.Request.Context(), user.SessionUser())
		if err != nil {
			respondWithDomainError(c, route, err)
			return
		}

		token, err := middleware.IssueSessionToken(jwtSecret, entry.ID, entry.User, ttl)
		if err != nil {
			log.Error().Str("area", "auth").Err(err).Msg("token generation failed")
			_ = sessions.Close(c.Request.Context(), entry.ID)
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}
		middleware.SetSessionCookie(c, token, ttl)

		log.Info().Str("area", "auth").Str("userId", user.ID).Str("sessionId", entry.ID).Msg("login succeeded")
		c.JSON(http.StatusOK, gin.H{
			"message":   "Login successful",
			"token":     token,
			"user":      entry.User,
			"cartCount": cartCount(entry.Cart.Items()),
		})
	}
}

// Logout flushes the cart and ends the session. When the flush fails the
// session stays usable and the client may retry.
func Logout(sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/logout"
		defer handlePanic(c, route)

		entry, ok := currentSession(c, route)
		if !ok {
			return
		}

		if err := sessions.Close(c.Request.Context(), entry.ID); err != nil {
			respondWithDomainError(c, route, err)
			return
		}

		middleware.ClearSessionCookie(c)
		log.Info().Str("area", "auth").Str("userId", entry.User.ID).Msg("logged out")
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}
