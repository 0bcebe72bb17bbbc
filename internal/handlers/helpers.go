package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "finova/internal/errors"
	"finova/internal/finance"
	"finova/internal/logger"
	"finova/internal/middleware"
	"finova/internal/models"
	"finova/internal/session"
	"finova/internal/uuid"
)

// now is the clock used to resolve default months.
var now = time.Now

// getSession extracts the caller's session from the Gin context.
// Returns ErrUnauthorized if not present.
func getSession(c *gin.Context) (session.Context, error) {
	value, exists := c.Get(middleware.SessionKey)
	if !exists {
		return session.Context{}, apperrors.ErrUnauthorized
	}
	sc, ok := value.(session.Context)
	if !ok {
		return session.Context{}, apperrors.ErrUnauthorized
	}
	return sc, nil
}

// ownerFilter returns the owner scope of the request: the "owner" query
// parameter when given, otherwise the session's current owner.
func ownerFilter(c *gin.Context) (models.Owner, error) {
	sc, err := getSession(c)
	if err != nil {
		return "", err
	}
	if v := c.Query("owner"); v != "" {
		return models.Owner(v), nil
	}
	return sc.Owner, nil
}

// parsePathID validates a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// parseMonthQuery reads a YYYY-MM query parameter, defaulting to the current month.
func parseMonthQuery(c *gin.Context, param string) (finance.Month, error) {
	v := c.Query(param)
	if v == "" {
		return finance.CurrentMonth(now()), nil
	}
	m, err := finance.ParseMonth(v)
	if err != nil {
		return finance.Month{}, apperrors.WithMessage(apperrors.ErrInvalidInput, param+" must be in YYYY-MM format")
	}
	return m, nil
}

// parseBoolQuery reads an optional "true"/"false" query parameter.
func parseBoolQuery(c *gin.Context, param string) (*bool, error) {
	switch c.Query(param) {
	case "":
		return nil, nil
	case "true":
		b := true
		return &b, nil
	case "false":
		b := false
		return &b, nil
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, param+" must be 'true' or 'false'")
	}
}

// parseDate parses a calendar date field, mapping failures to ErrInvalidInput.
func parseDate(field, value string) (models.Date, error) {
	d, err := models.ParseDate(value)
	if err != nil {
		return models.Date{}, apperrors.WithMessage(apperrors.ErrInvalidInput, field+" must be a YYYY-MM-DD date")
	}
	return d, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
