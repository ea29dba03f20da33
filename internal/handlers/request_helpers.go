package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"sweetshop/internal/accounts"
	"sweetshop/internal/cart"
	"sweetshop/internal/catalog"
	"sweetshop/internal/middleware"
	"sweetshop/internal/session"
	"sweetshop/internal/store"
	"sweetshop/internal/xmldoc"
)

// Pinger is satisfied by *store.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Error().Str("area", "http").Str("route", route).Interface("panic", r).Msg("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func ensureStorage(ctx context.Context, p Pinger) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return p.Ping(checkCtx)
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Debug().Str("area", "http").Str("route", route).Int("status", status).Msg(message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondWithDomainError maps package errors onto HTTP statuses. Anything
// unrecognized is logged and reported as a 500.
func respondWithDomainError(c *gin.Context, route string, err error) {
	status, message := statusForError(err)
	if status >= http.StatusInternalServerError {
		log.Error().Str("area", "http").Str("route", route).Err(err).Msg("request failed")
	}
	respondWithError(c, status, route, message)
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		return http.StatusNotFound, "product not found"
	case errors.Is(err, cart.ErrItemNotFound):
		return http.StatusNotFound, cart.ErrItemNotFound.Error()
	case errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusBadRequest, cart.ErrInvalidQuantity.Error()
	case errors.Is(err, cart.ErrOutOfStock):
		return http.StatusConflict, cart.ErrOutOfStock.Error()
	case errors.Is(err, cart.ErrNotLoggedIn), errors.Is(err, session.ErrSessionNotFound):
		return http.StatusUnauthorized, "please log in first"
	case errors.Is(err, accounts.ErrUserNotFound):
		return http.StatusNotFound, accounts.ErrUserNotFound.Error()
	case errors.Is(err, accounts.ErrUsernameTaken):
		return http.StatusConflict, accounts.ErrUsernameTaken.Error()
	case errors.Is(err, accounts.ErrInvalidCredentials):
		return http.StatusUnauthorized, accounts.ErrInvalidCredentials.Error()
	case errors.Is(err, accounts.ErrMissingFields),
		errors.Is(err, accounts.ErrCurrentPasswordRequired),
		errors.Is(err, accounts.ErrPasswordMismatch),
		errors.Is(err, accounts.ErrWrongPassword):
		return http.StatusBadRequest, rootMessage(err)
	case errors.Is(err, store.ErrDocumentNotFound):
		return http.StatusServiceUnavailable, "catalog unavailable"
	case errors.Is(err, store.ErrConflict):
		return http.StatusServiceUnavailable, "storage busy, try again"
	case errors.Is(err, xmldoc.ErrMalformedDocument):
		return http.StatusInternalServerError, "stored data is corrupt"
	}
	return http.StatusInternalServerError, "internal server error"
}

func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			case "email":
				details = append(details, fmt.Sprintf("%s must be an email address", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// currentSession returns the session injected by middleware.UserAuth.
func currentSession(c *gin.Context, route string) (*session.Entry, bool) {
	entry, ok := middleware.SessionFrom(c)
	if !ok {
		respondWithError(c, http.StatusUnauthorized, route, "please log in first")
		return nil, false
	}
	return entry, true
}
