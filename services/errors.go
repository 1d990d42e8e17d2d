package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode машинно-читаемый код ошибки в ответе {ok:false, code, error}
type ErrorCode string

const (
	CodeUnauthenticated    ErrorCode = "unauthenticated"
	CodeInvalidArgument    ErrorCode = "invalid-argument"
	CodeResourceExhausted  ErrorCode = "resource-exhausted"
	CodeNotFound           ErrorCode = "not-found"
	CodeFailedPrecondition ErrorCode = "failed-precondition"
	CodePermissionDenied   ErrorCode = "permission-denied"
	CodeInternal           ErrorCode = "internal"
)

// HTTPStatus соответствие кода ошибки HTTP статусу
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeResourceExhausted:
		return http.StatusTooManyRequests
	case CodeNotFound:
		return http.StatusNotFound
	case CodeFailedPrecondition:
		return http.StatusConflict
	case CodePermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// LedgerError ошибка операции с кодом; Message показывается клиенту как есть
type LedgerError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *LedgerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// Is сравнивает только коды, чтобы работало errors.Is(err, ErrDailyLimitExceeded)
func (e *LedgerError) Is(target error) bool {
	t, ok := target.(*LedgerError)
	if !ok {
		return false
	}
	return e.Code == t.Code && (t.Message == "" || t.Message == e.Message)
}

func newLedgerError(code ErrorCode, message string) *LedgerError {
	return &LedgerError{Code: code, Message: message}
}

func internalError(message string, err error) *LedgerError {
	return &LedgerError{Code: CodeInternal, Message: message, Err: err}
}

var (
	ErrUnauthenticated    = newLedgerError(CodeUnauthenticated, "Authentication required")
	ErrDailyLimitExceeded = newLedgerError(CodeResourceExhausted, "Daily limit exceeded")
	ErrAlreadyDecided     = newLedgerError(CodeFailedPrecondition, "Request already processed")
)

// CodeOf извлекает код; неизвестные ошибки считаются internal
func CodeOf(err error) ErrorCode {
	var ledgerErr *LedgerError
	if errors.As(err, &ledgerErr) {
		return ledgerErr.Code
	}
	return CodeInternal
}

// MessageOf человекочитаемое сообщение без внутренних деталей
func MessageOf(err error) string {
	var ledgerErr *LedgerError
	if errors.As(err, &ledgerErr) {
		return ledgerErr.Message
	}
	return "Internal error"
}
