// Package errors provides custom error types for the finova API.
// All service-layer errors should use AppError so responses stay consistent
// and never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches AppErrors by code so wrapped copies compare equal to their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Session errors.
var (
	ErrUnauthorized    = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidPassword = &AppError{Code: "INVALID_PASSWORD", Message: "Invalid household password", StatusCode: http.StatusUnauthorized}
)

// Pipeline errors.
var (
	ErrInvalidAPIKey         = &AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
	ErrPipelineNotConfigured = &AppError{Code: "PIPELINE_NOT_CONFIGURED", Message: "Pipeline endpoints are not configured", StatusCode: http.StatusServiceUnavailable}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
)

// Category errors.
var (
	ErrCategoryNotFound  = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategorySystem    = &AppError{Code: "CATEGORY_SYSTEM", Message: "System categories cannot be deleted", StatusCode: http.StatusConflict}
	ErrDuplicateCategory = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name already exists", StatusCode: http.StatusConflict}
)

// Investment errors.
var (
	ErrInvestmentNotFound = &AppError{Code: "INVESTMENT_NOT_FOUND", Message: "Investment not found", StatusCode: http.StatusNotFound}
	ErrInsufficientFunds  = &AppError{Code: "INSUFFICIENT_FUNDS", Message: "Withdrawal exceeds the current amount", StatusCode: http.StatusUnprocessableEntity}
)

// Savings goal errors.
var (
	ErrSavingsGoalNotFound = &AppError{Code: "SAVINGS_GOAL_NOT_FOUND", Message: "Savings goal not found", StatusCode: http.StatusNotFound}
)

// Advice errors.
var (
	ErrReportNotFound           = &AppError{Code: "REPORT_NOT_FOUND", Message: "Advice report not found", StatusCode: http.StatusNotFound}
	ErrAdvisorNotConfigured     = &AppError{Code: "ADVISOR_NOT_CONFIGURED", Message: "The advice generator is not configured", StatusCode: http.StatusServiceUnavailable}
	ErrAdvisorInvalidCredential = &AppError{Code: "ADVISOR_INVALID_CREDENTIAL", Message: "The advice generator rejected its credential", StatusCode: http.StatusBadGateway}
	ErrAdvisorEmptyResponse     = &AppError{Code: "ADVISOR_EMPTY_RESPONSE", Message: "The advice generator returned no content", StatusCode: http.StatusBadGateway}
	ErrAdvisorTimeout           = &AppError{Code: "ADVISOR_TIMEOUT", Message: "The advice generator timed out, try again", StatusCode: http.StatusGatewayTimeout}
	ErrAdvisorFailed            = &AppError{Code: "ADVISOR_FAILED", Message: "The advice generator failed", StatusCode: http.StatusBadGateway}
)

// Export errors.
var (
	ErrExportNotConfigured = &AppError{Code: "EXPORT_NOT_CONFIGURED", Message: "Spreadsheet export is not configured", StatusCode: http.StatusServiceUnavailable}
)
