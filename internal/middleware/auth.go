package middleware

import (
	"net/http"
	"os"
	"strings"

	"nutscredit/internal/auth"
	"nutscredit/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// parseToken extracts and validates the JWT from the Authorization header.
// Returns the caller's id (sub) and display name (name) claims.
func parseToken(c *gin.Context) (callerID, callerName string, ok bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return "", "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
		return "", "", false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return "", "", false
	}

	claims, claimsOk := token.Claims.(jwt.MapClaims)
	if !claimsOk {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
		return "", "", false
	}

	callerID, _ = claims["sub"].(string)
	callerName, _ = claims["name"].(string)
	if callerID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Subject missing from token"))
		return "", "", false
	}

	return callerID, callerName, true
}

// RequireAuth validates the JWT and exposes the caller's identity to
// handlers via the gin context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, callerName, ok := parseToken(c)
		if !ok {
			return
		}
		c.Set("callerID", callerID)
		c.Set("callerName", callerName)
		c.Next()
	}
}

// RequireMainAuthority validates the JWT and additionally checks that the
// caller is the configured main authority.
func RequireMainAuthority(guard *auth.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID, callerName, ok := parseToken(c)
		if !ok {
			return
		}
		if !guard.IsMainAuthority(callerID) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: main authority only"))
			return
		}
		c.Set("callerID", callerID)
		c.Set("callerName", callerName)
		c.Next()
	}
}
