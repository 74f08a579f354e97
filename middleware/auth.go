package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	accountRepo "lawdesk/database/repository/account"
	"lawdesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Context keys set by JWTAuthMiddleware.
const (
	AccountIDKey = "accountID"
	RoleKey      = "role"
	LawyerIDKey  = "lawyerID"
	NameKey      = "accountName"
)

// bearerToken reads the token from the Authorization header, falling back to
// the "token" query parameter used by websocket clients.
func bearerToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return c.Query("token")
}

// JWTAuthMiddleware authenticates requests with a bearer token. A valid
// signature is not enough: the account must still exist. Lookups are cached
// in Redis under the token hash; cache may be nil.
func JWTAuthMiddleware(accounts accountRepo.AccountRepository, cache *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": true, "message": "Insufficient authorization"})
			return
		}

		claims, err := utils.ExtractClaims(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": true, "message": "Invalid token"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		cacheKey := utils.AuthCachePrefix + utils.HashToken(tokenString)
		name := ""
		if cache != nil {
			cached, err := cache.Get(ctx, cacheKey).Result()
			switch {
			case err == nil:
				name = cached
			case err != redis.Nil:
				zap.L().Warn("auth cache unavailable, falling back to DB", zap.Error(err))
			}
		}

		if name == "" {
			acc, err := accounts.GetByID(ctx, claims.Subject)
			if err != nil || acc == nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": true, "message": "Authentication error"})
				return
			}
			name = acc.Name
			if name == "" {
				name = acc.Email
			}
			if cache != nil {
				_ = cache.Set(ctx, cacheKey, name, utils.AuthCacheTTL).Err()
			}
		}

		c.Set(AccountIDKey, claims.Subject)
		c.Set(RoleKey, claims.Role)
		c.Set(LawyerIDKey, claims.LawyerID)
		c.Set(NameKey, name)
		c.Next()
	}
}

// RequireRole aborts unless the authenticated role is one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(RoleKey)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": true, "message": "Forbidden for role " + role})
	}
}
