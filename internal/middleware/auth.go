package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "finova/internal/errors"
	"finova/internal/session"
)

// SessionKey is the gin context key holding the caller's session.Context.
const SessionKey = "session"

// TokenParser verifies session tokens.
type TokenParser interface {
	Parse(token string) (session.Context, error)
}

// SessionAuthMiddleware verifies the Bearer session token and stores the
// session in both the gin context and the request context.
func SessionAuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		sc, err := parser.Parse(parts[1])
		if err != nil {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired session"))
			return
		}

		c.Set(SessionKey, sc)
		c.Request = c.Request.WithContext(session.WithContext(c.Request.Context(), sc))
		c.Next()
	}
}

func abortWithError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{"code": appErr.Code, "message": appErr.Message},
	})
}
