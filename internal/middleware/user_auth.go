package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"sweetshop/internal/session"
)

const sessionKey = "session"

// UserAuth validates the session token, resumes its session and injects it
// into the context. Every accepted request gets a token with a fresh expiry.
func UserAuth(secret string, ttl time.Duration, sessions *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := tokenFromRequest(c)
		if err != nil {
			log.Debug().Str("area", "auth").Err(err).Msg("request without usable token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := ParseSessionToken(secret, raw)
		if err != nil {
			log.Debug().Str("area", "auth").Err(err).Msg("token validation failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		entry, err := sessions.Resume(c.Request.Context(), claims.SessionID, claims.User)
		if errors.Is(err, session.ErrSessionNotFound) {
			ClearSessionCookie(c)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session ended"})
			return
		}
		if err != nil {
			log.Error().Str("area", "auth").Err(err).Str("sessionId", claims.SessionID).Msg("session resume failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not load session"})
			return
		}

		if token, err := IssueSessionToken(secret, entry.ID, entry.User, ttl); err == nil {
			SetSessionCookie(c, token, ttl)
		}

		c.Set(sessionKey, entry)
		c.Next()
	}
}

// SessionFrom returns the session UserAuth stored in the context.
func SessionFrom(c *gin.Context) (*session.Entry, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	entry, ok := v.(*session.Entry)
	return entry, ok
}
