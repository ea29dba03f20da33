package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"sweetshop/internal/models"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "sweetshop_session"

// TokenHeader returns the refreshed token to clients that use the
// Authorization header.
const TokenHeader = "X-Session-Token"

var errMissingToken = errors.New("missing token")

// SessionClaims is what a session token asserts.
type SessionClaims struct {
	SessionID string
	User      models.SessionUser
}

// IssueSessionToken signs a token for the session that expires after ttl.
func IssueSessionToken(secret string, sessionID string, user models.SessionUser, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sid":      sessionID,
		"userId":   user.ID,
		"username": user.Username,
		"email":    user.Email,
		"roleId":   user.RoleID,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSessionToken validates raw and extracts its claims.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return SessionClaims{}, err
	}
	if !token.Valid {
		return SessionClaims{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, errors.New("token claims invalid")
	}

	sid, _ := claims["sid"].(string)
	userID, _ := claims["userId"].(string)
	if strings.TrimSpace(sid) == "" || strings.TrimSpace(userID) == "" {
		return SessionClaims{}, errors.New("session claims missing")
	}
	username, _ := claims["username"].(string)
	email, _ := claims["email"].(string)
	roleID, _ := claims["roleId"].(string)

	return SessionClaims{
		SessionID: sid,
		User: models.SessionUser{
			ID:       userID,
			Username: username,
			Email:    email,
			RoleID:   roleID,
		},
	}, nil
}

// SetSessionCookie stores token in the session cookie and echoes it in
// TokenHeader.
func SetSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(ttl.Seconds()), "/", "", false, true)
	c.Header(TokenHeader, token)
}

func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}

// tokenFromRequest prefers a Bearer Authorization header over the cookie.
func tokenFromRequest(c *gin.Context) (string, error) {
	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	if raw != "" {
		parts := strings.Split(raw, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", errors.New("invalid token format")
		}
		return parts[1], nil
	}

	cookie, err := c.Cookie(SessionCookie)
	if err != nil || strings.TrimSpace(cookie) == "" {
		return "", errMissingToken
	}
	return cookie, nil
}
