package srvcerror

import (
	"errors"
	"net/http"
)

type Error struct {
	errorCode  string
	msgToUser  string // public
	dbgInfoErr error  // private, for debugging

	httpStatus int // optional, for HTTP responses
}

func (e *Error) Error() string {
	return e.msgToUser
}

func (e *Error) ErrorCode() string {
	return e.errorCode
}

func (e *Error) DebugInfo() error {
	return e.dbgInfoErr
}

// Unwrap exposes the debug error so errors.Is can reach transport causes.
func (e *Error) Unwrap() error {
	return e.dbgInfoErr
}

func (e *Error) SetDebug(err error) *Error {
	e.dbgInfoErr = err
	return e
}

func (e *Error) HttpStatusCode() int {
	if e.httpStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.httpStatus
}

func (e *Error) SetHttpStatusCode(code int) *Error {
	e.httpStatus = code
	return e
}

func New(errorCode string, msgToUser string) *Error {
	return &Error{
		errorCode: errorCode,
		msgToUser: msgToUser,
	}
}

// HasCode reports whether err is a service error carrying the given code.
func HasCode(err error, code string) bool {
	var srvcErr *Error
	if errors.As(err, &srvcErr) {
		return srvcErr.errorCode == code
	}
	return false
}

const ErrCodeInternalServerError = "internal_server_error"

func ErrInternalSE() *Error {
	return New(
		ErrCodeInternalServerError,
		"internal server error",
	).SetHttpStatusCode(http.StatusInternalServerError)
}

const ErrCodeNetworkError = "network_error"

func ErrNetwork() *Error {
	return New(
		ErrCodeNetworkError,
		"Network error",
	).SetHttpStatusCode(http.StatusBadGateway)
}

const ErrCodeMalformedResponse = "malformed_response"

func ErrMalformedResponse() *Error {
	return New(
		ErrCodeMalformedResponse,
		"backend returned an unreadable response",
	).SetHttpStatusCode(http.StatusBadGateway)
}

const ErrCodeBackendError = "backend_error"

// ErrBackend carries a failure the backend reported with a non-2xx status.
func ErrBackend(status int, msg string) *Error {
	if msg == "" {
		msg = http.StatusText(status)
	}
	return New(
		ErrCodeBackendError,
		msg,
	).SetHttpStatusCode(status)
}

const ErrCodeUnauthorized = "unauthorized"

func ErrUnauthorized() *Error {
	return New(
		ErrCodeUnauthorized,
		"Unauthorized",
	).SetHttpStatusCode(http.StatusUnauthorized)
}

const ErrCodeValidationFailed = "validation_failed"

func ErrValidation(msg string) *Error {
	return New(
		ErrCodeValidationFailed,
		msg,
	).SetHttpStatusCode(http.StatusBadRequest)
}

const ErrCodeSessionNotFound = "session_not_found"

func ErrSessionNotFound() *Error {
	return New(
		ErrCodeSessionNotFound,
		"session expired, reload the page",
	).SetHttpStatusCode(http.StatusUnauthorized)
}

const ErrCodeProblemNotFound = "problem_not_found"

func ErrProblemNotFound() *Error {
	return New(
		ErrCodeProblemNotFound,
		"Problem not found",
	).SetHttpStatusCode(http.StatusNotFound)
}
