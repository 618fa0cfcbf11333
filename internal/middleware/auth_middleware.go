package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextUserID = "userID"
	ContextToken  = "token"
)

// Identity resolves a bearer credential to the calling user.
type Identity interface {
	Resolve(ctx context.Context, credential string) (uuid.UUID, error)
}

// AuthMiddleware for authentication
type AuthMiddleware struct {
	identity Identity
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(identity Identity) *AuthMiddleware {
	return &AuthMiddleware{identity: identity}
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Authentication required").
				WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			HandleAPIError(c, apperrors.Unauthenticated("Authorization header must be a bearer token."))
			c.Abort()
			return
		}

		userID, err := m.identity.Resolve(c.Request.Context(), tokenString)
		if err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextToken, tokenString)
		c.Next()
	}
}

// CurrentUserID returns the id JWTAuth stored on the request.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// CurrentToken returns the raw access token of the request.
func CurrentToken(c *gin.Context) string {
	return c.GetString(ContextToken)
}
