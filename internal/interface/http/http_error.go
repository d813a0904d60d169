package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/projectshelf/pkg/errors"
)

const internalErrorMessage = "something went wrong"

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is/As.
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return fromDomainError(err)
}

// fromDomainError translates an AppError code into a response. Anything the
// domain did not classify is reported as a generic 500.
func fromDomainError(err error) *HTTPError {
	code := apperrors.CodeOf(err)
	status := statusForCode(code)
	if status >= http.StatusInternalServerError {
		return NewHTTPError(http.StatusInternalServerError, apperrors.CodeInternal, internalErrorMessage, err)
	}
	return NewHTTPError(status, code, apperrors.MessageOf(err), err)
}

func statusForCode(code string) int {
	switch code {
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeInvalidCredentials,
		apperrors.CodeInvalidToken,
		apperrors.CodeMissingToken,
		apperrors.CodeInvalidRefreshToken:
		return http.StatusUnauthorized
	case apperrors.CodeForbidden:
		return http.StatusForbidden
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeEmailExists:
		return http.StatusConflict
	case apperrors.CodeTooManyAttempts:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// abortWithDomainError is the common tail of every handler error branch.
func abortWithDomainError(c *gin.Context, err error) {
	abortWithError(c, asHTTPError(err))
}

func invalidBody(err error) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "invalid request body", err)
}
