package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"sweetshop/internal/accounts"
	"sweetshop/internal/orders"
)

type updateProfileRequest struct {
	Email           string `json:"email" form:"email" binding:"omitempty,email"`
	CurrentPassword string `json:"currentPassword" form:"currentPassword"`
	NewPassword     string `json:"newPassword" form:"newPassword"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

// GetProfile returns the stored user together with that user's orders.
func GetProfile(users *accounts.Service, history *orders.Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /profile"
		defer handlePanic(c, route)

		entry, ok := currentSession(c, route)
		if !ok {
			return
		}

		user, err := users.FindByID(c.Request.Context(), entry.User.ID)
		if err != nil {
			respondWithDomainError(c, route, err)
			return
		}

		list, err := history.ListByUser(c.Request.Context(), user.ID)
		if err != nil {
			respondWithDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": user, "orders": list})
	}
}

func UpdateProfile(users *accounts.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /profile/update"
		defer handlePanic(c, route)

		entry, ok := currentSession(c, route)
		if !ok {
			return
		}

		var req updateProfileRequest
		if err := c.ShouldBind(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		user, err := users.UpdateProfile(c.Request.Context(), entry.User.ID, accounts.ProfileUpdate{
			Email:           req.Email,
			CurrentPassword: req.CurrentPassword,
			NewPassword:     req.NewPassword,
			ConfirmPassword: req.ConfirmPassword,
		})
		if err != nil {
			respondWithDomainError(c, route, err)
			return
		}

		log.Info().Str("area", "auth").Str("userId", user.ID).Msg("profile updated")
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
	}
}
