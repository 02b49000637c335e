package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/pkg/jwtutil"
	"github.com/fsgmhh-Ray/ai-agent-dashboard/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	ContextTokenKey    = "auth_token"
)

// RevokedChecker reports whether a token was signed out; nil skips the check.
type RevokedChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

func AuthJWT(secret string, revoked RevokedChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, 401, response.CodeUnauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}

		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, 401, response.CodeUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), token)
			if err == nil && isRevoked {
				response.Error(c, 401, response.CodeUnauthorized, "token has been signed out")
				c.Abort()
				return
			}
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

// OptionalAuthJWT resolves an identity when a valid token is presented but
// lets anonymous requests through. The relay endpoint uses it to tag audit
// events without requiring a session.
func OptionalAuthJWT(secret string, revoked RevokedChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			c.Next()
			return
		}
		if revoked != nil {
			if isRevoked, err := revoked.IsRevoked(c.Request.Context(), token); err == nil && isRevoked {
				c.Next()
				return
			}
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader == "" {
		return "", false
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
	if token == "" {
		return "", false
	}
	return token, true
}
