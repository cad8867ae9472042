package middleware

import (
	"net/http"
	"strings"

	"backend/internal/auth"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const accountIDKey = "accountID"

// RequireAccount validates the bearer token and stores the resolved account id
// in the request context. Tries the access_token cookie first, then the
// Authorization header.
func RequireAccount(manager *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, cookieErr := c.Cookie("access_token")
		if cookieErr != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
				return
			}
			tokenString = parts[1]
		}

		accountID, err := manager.Verify(tokenString)
		if err != nil {
			status, body := response.FromError(err)
			c.AbortWithStatusJSON(status, body)
			return
		}

		c.Set(accountIDKey, accountID)
		c.Next()
	}
}

// AccountID returns the account identity resolved by RequireAccount.
func AccountID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(accountIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
