package errors

import (
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, op string, err error, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func InvalidInput(op string, err error, message string) *AppError {
	return New(http.StatusBadRequest, op, err, message)
}

func NotFound(op string, err error, message string) *AppError {
	return New(http.StatusNotFound, op, err, message)
}

func Internal(op string, err error, message string) *AppError {
	return New(http.StatusInternalServerError, op, err, message)
}

// Upstream reports a failure of one of the external collaborators (caption
// service, speech recognizer, generative model). The user-facing message
// carries the underlying error text unchanged.
func Upstream(op string, err error) *AppError {
	message := "Error: upstream service failed"
	if err != nil {
		message = "Error: " + err.Error()
	}
	return New(http.StatusBadGateway, op, err, message)
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if pkgerrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsInvalidInput(err error) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == http.StatusBadRequest
}

// StatusCode maps err to an HTTP status, defaulting to 500.
func StatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
