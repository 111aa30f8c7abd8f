package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tourly/models"
	"tourly/utils"
)

const userKey = "user"

// TokenVerifier checks Firebase ID tokens; *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware resolves the bearer ID token into a UserIdentity. With optional
// set, requests without a token pass through anonymously; a token that fails to verify is
// always rejected.
func FirebaseAuthMiddleware(verifier TokenVerifier, optional bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") || tokenString == "" {
			if optional {
				c.Next()
				return
			}
			utils.JSONErrorWithCode(c, http.StatusUnauthorized, "unauthenticated", "Insufficient authorization", "", false)
			return
		}
		if verifier == nil {
			utils.JSONErrorWithCode(c, http.StatusServiceUnavailable, "auth_unavailable", "Authentication is not configured", "", true)
			return
		}

		token, err := verifier.VerifyIDToken(c.Request.Context(), tokenString)
		if err != nil {
			RequestLogger(c).Info("ID token rejected", zap.Error(err))
			utils.JSONErrorWithCode(c, http.StatusUnauthorized, "unauthenticated", "Invalid token", "", false)
			return
		}

		c.Set(userKey, identityFromToken(token))
		c.Next()
	}
}

// RequireGuide admits only identities carrying the guide role claim. It must run after
// FirebaseAuthMiddleware.
func RequireGuide() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			utils.JSONErrorWithCode(c, http.StatusUnauthorized, "unauthenticated", "Insufficient authorization", "", false)
			return
		}
		if !user.IsGuide() {
			utils.JSONErrorWithCode(c, http.StatusForbidden, "forbidden", "Guide account required", "", false)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated identity, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.UserIdentity {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.UserIdentity); ok {
			return user
		}
	}
	return nil
}

func identityFromToken(token *auth.Token) *models.UserIdentity {
	user := &models.UserIdentity{UID: token.UID, Role: models.RoleTourist}
	if name, ok := token.Claims["name"].(string); ok {
		user.DisplayName = name
	}
	if email, ok := token.Claims["email"].(string); ok {
		user.Email = email
	}
	if role, ok := token.Claims["role"].(string); ok && role == models.RoleGuide {
		user.Role = models.RoleGuide
	}
	return user
}
