package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/visitcare/visitation-backend/pkg/jwt"
)

// MemberContextKey is the key used to store member information in Gin context
const MemberContextKey = "member"

// MemberContext represents the authenticated member's information
type MemberContext struct {
	MemberID uuid.UUID `json:"member_id"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
}

// IsAdmin reports whether the authenticated member is an administrator
func (m MemberContext) IsAdmin() bool {
	return m.Role == "ADMIN"
}

// AuthMiddleware creates a middleware that validates JWT tokens
func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Authorization header is required",
				"code":    "MISSING_AUTH_HEADER",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid authorization header format. Expected: Bearer <token>",
				"code":    "INVALID_AUTH_FORMAT",
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Token cannot be empty",
				"code":    "INVALID_AUTH_FORMAT",
			})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			if jwtService.IsTokenExpired(tokenString) {
				logrus.WithFields(logrus.Fields{
					"path": c.Request.URL.Path,
					"ip":   c.ClientIP(),
				}).Debug("Rejected expired access token")
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "token_expired",
					"message": "Access token has expired. Please refresh your token.",
					"code":    "TOKEN_EXPIRED",
				})
			} else {
				logrus.WithFields(logrus.Fields{
					"path": c.Request.URL.Path,
					"ip":   c.ClientIP(),
				}).WithError(err).Debug("Rejected invalid access token")
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":   "invalid_token",
					"message": "Invalid access token",
					"code":    "INVALID_TOKEN",
				})
			}
			c.Abort()
			return
		}

		memberContext := MemberContext{
			MemberID: claims.MemberID,
			Email:    claims.Email,
			Role:     claims.Role,
		}

		c.Set(MemberContextKey, memberContext)
		c.Next()
	}
}

// RequireRole creates a middleware that checks if the member has a required role
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberCtx, exists := GetMemberContext(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Member context not found. Auth middleware may not be applied.",
				"code":    "MISSING_MEMBER_CONTEXT",
			})
			c.Abort()
			return
		}

		hasRole := false
		for _, requiredRole := range roles {
			if memberCtx.Role == requiredRole {
				hasRole = true
				break
			}
		}

		if !hasRole {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "You don't have permission to access this resource",
				"code":    "INSUFFICIENT_PERMISSIONS",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetMemberContext retrieves the member context from Gin context
func GetMemberContext(c *gin.Context) (MemberContext, bool) {
	value, exists := c.Get(MemberContextKey)
	if !exists {
		return MemberContext{}, false
	}

	memberCtx, ok := value.(MemberContext)
	if !ok {
		return MemberContext{}, false
	}

	return memberCtx, true
}

// MustGetMemberContext retrieves the member context or panics (use only after AuthMiddleware)
func MustGetMemberContext(c *gin.Context) MemberContext {
	memberCtx, exists := GetMemberContext(c)
	if !exists {
		panic("member context not found - ensure AuthMiddleware is applied")
	}
	return memberCtx
}
