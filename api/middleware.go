package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pairchat/contract"
)

const callerKey = "callerID"

// AuthRequired resolves the bearer credential through the identity
// provider and stores the caller id on the request context. Websocket
// clients cannot set headers, so a token query parameter is accepted too.
func AuthRequired(identity contract.IIdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := bearerToken(c)
		if credential == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "missing credentials"})
			return
		}

		userID, err := identity.Verify(c.Request.Context(), credential)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: err.Error()})
			return
		}

		c.Set(callerKey, userID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return c.Query("token")
}

func caller(c *gin.Context) string {
	return c.GetString(callerKey)
}
