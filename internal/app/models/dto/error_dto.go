package dto

import (
	"fmt"
	"time"

	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

// ErrorCode is a stable error code, e.g. CLB-00-0000-0004.
type ErrorCode string

// Codes used by the transport layer itself, before a request reaches a service.
const (
	ErrorCodeValidationFailed ErrorCode = apperrors.CodeValidationFailed
	ErrorCodeInvalidToken     ErrorCode = apperrors.CodeInvalidToken
	ErrorCodeInternalServer   ErrorCode = apperrors.CodeInternal
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

// Severity levels
const (
	ErrorSeverityWarning ErrorSeverity = "WARNING"
	ErrorSeverityError   ErrorSeverity = "ERROR"
)

// ErrorDetail is the error body every failed request returns.
type ErrorDetail struct {
	ErrorCode         ErrorCode         `json:"errorCode" example:"CLB-00-0000-0004"`
	Title             string            `json:"title" example:"User is not a member of the club"`
	Details           string            `json:"details,omitempty"`
	MessageParameters map[string]string `json:"messageParameters,omitempty"`
	SourcePointer     string            `json:"sourcePointer,omitempty" example:"email"`
	Severity          ErrorSeverity     `json:"severity" example:"WARNING"`
	DebugInfo         string            `json:"debugInfo,omitempty"`
}

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success   bool         `json:"success" example:"false"`
	Error     *ErrorDetail `json:"error"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewErrorDetail creates a new error detail
func NewErrorDetail(code ErrorCode, title string) *ErrorDetail {
	return &ErrorDetail{
		ErrorCode: code,
		Title:     title,
		Severity:  ErrorSeverityError,
	}
}

// FromAppError renders an application error. Internal failures keep their
// generic message so driver errors never leak to clients.
func FromAppError(err *apperrors.CustomError) *ErrorDetail {
	d := NewErrorDetail(ErrorCode(err.Code), err.Title).WithDetails(err.Message)
	if err.Kind != apperrors.KindInternal {
		d.Severity = ErrorSeverityWarning
	}
	if len(err.Params) > 0 {
		d.MessageParameters = err.Params
	}
	return d.WithField(err.SourcePointer)
}

// WithField points the error at a request field
func (e *ErrorDetail) WithField(field string) *ErrorDetail {
	e.SourcePointer = field
	return e
}

// WithParam adds a message parameter
func (e *ErrorDetail) WithParam(key, value string) *ErrorDetail {
	if e.MessageParameters == nil {
		e.MessageParameters = make(map[string]string)
	}
	e.MessageParameters[key] = value
	return e
}

// WithSeverity sets the severity
func (e *ErrorDetail) WithSeverity(severity ErrorSeverity) *ErrorDetail {
	e.Severity = severity
	return e
}

// WithDetails sets the human readable details
func (e *ErrorDetail) WithDetails(details string) *ErrorDetail {
	e.Details = details
	return e
}

// WithDebugInfo adds debug information, only attached outside release mode
func (e *ErrorDetail) WithDebugInfo(format string, args ...interface{}) *ErrorDetail {
	e.DebugInfo = fmt.Sprintf(format, args...)
	return e
}

// NewErrorResponse creates a new error response
func NewErrorResponse(errorDetail *ErrorDetail) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     errorDetail,
		Timestamp: time.Now().UTC(),
	}
}
