package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an error for callers. Transport code maps kinds to status codes,
// tests assert on them.
type Kind string

const (
	KindNotFound                Kind = "NOT_FOUND"
	KindUserNotMemberOfClub     Kind = "USER_NOT_MEMBER_OF_CLUB"
	KindInsufficientPermissions Kind = "INSUFFICIENT_PERMISSIONS"
	KindAlreadyMember           Kind = "ALREADY_MEMBER"
	KindNotAMember              Kind = "NOT_A_MEMBER"
	KindLastAdminLeave          Kind = "LAST_ADMIN_LEAVE"
	KindLastAdminRoleChange     Kind = "LAST_ADMIN_ROLE_CHANGE"
	KindInvalidCredentials      Kind = "INVALID_CREDENTIALS"
	KindUserAlreadyExists       Kind = "USER_ALREADY_EXISTS"
	KindUnauthenticated         Kind = "UNAUTHENTICATED"
	KindValidation              Kind = "VALIDATION_FAILED"
	KindInternal                Kind = "INTERNAL_FAILURE"
)

// Sentinels, one per kind. CustomError unwraps to the sentinel of its kind so
// errors.Is works against them.
var (
	ErrNotFound                = errors.New("resource not found")
	ErrUserNotMemberOfClub     = errors.New("user is not a member of the club")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrAlreadyMember           = errors.New("user is already a member of the club")
	ErrNotAMember              = errors.New("user is not a member of the club")
	ErrLastAdminLeave          = errors.New("last admin cannot leave the club")
	ErrLastAdminRoleChange     = errors.New("last admin cannot change own role")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrUserAlreadyExists       = errors.New("user already exists")
	ErrUnauthenticated         = errors.New("unauthenticated")
	ErrValidationFailed        = errors.New("validation failed")
	ErrInternal                = errors.New("internal failure")
)

var sentinels = map[Kind]error{
	KindNotFound:                ErrNotFound,
	KindUserNotMemberOfClub:     ErrUserNotMemberOfClub,
	KindInsufficientPermissions: ErrInsufficientPermissions,
	KindAlreadyMember:           ErrAlreadyMember,
	KindNotAMember:              ErrNotAMember,
	KindLastAdminLeave:          ErrLastAdminLeave,
	KindLastAdminRoleChange:     ErrLastAdminRoleChange,
	KindInvalidCredentials:      ErrInvalidCredentials,
	KindUserAlreadyExists:       ErrUserAlreadyExists,
	KindUnauthenticated:         ErrUnauthenticated,
	KindValidation:              ErrValidationFailed,
	KindInternal:                ErrInternal,
}

// Stable error codes. Numbering is shared with the mobile and web clients.
const (
	CodeUserNotFound            = "CLB-00-0000-0001"
	CodeClubNotFound            = "CLB-00-0000-0002"
	CodePostNotFound            = "CLB-00-0000-0003"
	CodeUserNotMemberOfClub     = "CLB-00-0000-0004"
	CodeAlreadyMember           = "CLB-00-0000-0005"
	CodeInvalidCredentials      = "CLB-00-0000-0006"
	CodeCommentNotFound         = "CLB-00-0000-0007"
	CodeEventNotFound           = "CLB-00-0000-0008"
	CodeUserAlreadyExists       = "CLB-00-0000-0009"
	CodeMemberNotFound          = "CLB-00-0000-0010"
	CodeInsufficientPermissions = "CLB-00-0000-0011"
	CodeLastAdminLeave          = "CLB-00-0000-0012"
	CodeLastAdminRoleChange     = "CLB-00-0000-0013"
	CodeInvalidToken            = "CLB-00-0000-0014"
	CodeThreadNotFound          = "CLB-00-0000-0015"
	CodeReplyNotFound           = "CLB-00-0000-0016"
	CodeValidationFailed        = "CLB-00-0000-0017"
	CodeNotAMember              = "CLB-00-0000-0018"
	CodeInternal                = "CLB-00-0000-0099"
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err           error
	Kind          Kind
	Code          string
	Title         string
	Message       string
	Params        map[string]string
	SourcePointer string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Title != "" {
		return e.Title
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithParam records a message parameter, e.g. the offending club id.
func (e *CustomError) WithParam(key, value string) *CustomError {
	if e.Params == nil {
		e.Params = make(map[string]string)
	}
	e.Params[key] = value
	return e
}

// WithSource sets the request field the error points at.
func (e *CustomError) WithSource(pointer string) *CustomError {
	e.SourcePointer = pointer
	return e
}

// Describe renders the error with its parameters in a stable order, for logs.
func (e *CustomError) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", e.Code, e.Kind, e.Error())
	if len(e.Params) > 0 {
		keys := make([]string, 0, len(e.Params))
		for k := range e.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%s", k, e.Params[k])
		}
	}
	return b.String()
}

// New creates a CustomError of the given kind.
func New(kind Kind, code, title, message string) *CustomError {
	return &CustomError{
		Err:     sentinels[kind],
		Kind:    kind,
		Code:    code,
		Title:   title,
		Message: message,
	}
}

// Internal wraps an unexpected failure. The cause stays reachable through Unwrap chains
// via errors.Join so callers can still inspect driver errors.
func Internal(cause error, message string) *CustomError {
	return &CustomError{
		Err:     errors.Join(ErrInternal, cause),
		Kind:    KindInternal,
		Code:    CodeInternal,
		Title:   "Internal failure",
		Message: message,
	}
}

// KindOf reports the kind of err. Errors that are not application errors are
// internal failures. A nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	for kind, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindInternal
}

// IsKind reports whether err is of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}
