package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code 应用错误码
type Code string

const (
	CodeNotFound           Code = "NOT_FOUND"           // 404
	CodeConflict           Code = "CONFLICT"            // 409
	CodeInvalidFormat      Code = "INVALID_FORMAT"      // 400
	CodeBackendUnavailable Code = "BACKEND_UNAVAILABLE" // 503
	CodeForbiddenStatement Code = "FORBIDDEN_STATEMENT" // 403，SQL 控制台专用
)

// Error 带错误码与 HTTP 状态的应用错误
type Error struct {
	Code    Code
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NewNotFound(what string, id int64) *Error {
	return &Error{
		Code:    CodeNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s not found: %d", what, id),
	}
}

func NewConflict(msg string) *Error {
	return &Error{
		Code:    CodeConflict,
		Status:  http.StatusConflict,
		Message: msg,
	}
}

func NewInvalidFormat(msg string) *Error {
	return &Error{
		Code:    CodeInvalidFormat,
		Status:  http.StatusBadRequest,
		Message: msg,
	}
}

func NewBackendUnavailable(op string, cause error) *Error {
	return &Error{
		Code:    CodeBackendUnavailable,
		Status:  http.StatusServiceUnavailable,
		Message: fmt.Sprintf("storage backend failed during %s: %v", op, cause),
		cause:   cause,
	}
}

func NewForbiddenStatement(keyword string) *Error {
	return &Error{
		Code:    CodeForbiddenStatement,
		Status:  http.StatusForbidden,
		Message: fmt.Sprintf("statement contains forbidden keyword %q", keyword),
	}
}

// StatusOf 取错误对应的 HTTP 状态码，非应用错误按 500 处理
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}
