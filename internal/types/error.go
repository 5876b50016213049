package types

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	InternalServiceError ErrorCode = "INTERNAL_SERVICE_ERROR"
	BadRequest           ErrorCode = "BAD_REQUEST"
	NotFound             ErrorCode = "NOT_FOUND"
	Unauthorized         ErrorCode = "UNAUTHORIZED"
	NetworkError         ErrorCode = "NETWORK_ERROR"
	ProtocolError        ErrorCode = "PROTOCOL_ERROR"
	SerializationError   ErrorCode = "SERIALIZATION_ERROR"
	TimestampError       ErrorCode = "TIMESTAMP_ERROR"
	PageLimitExceeded    ErrorCode = "PAGE_LIMIT_EXCEEDED"
	RefreshInProgress    ErrorCode = "REFRESH_IN_PROGRESS"
)

func (e ErrorCode) String() string {
	return string(e)
}

// Error is the error type shared by all layers. StatusCode is the HTTP status the
// api package answers with when the error reaches a handler.
type Error struct {
	Err        error
	StatusCode int
	ErrorCode  ErrorCode
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(statusCode int, errorCode ErrorCode, err error) *Error {
	return &Error{
		Err:        err,
		StatusCode: statusCode,
		ErrorCode:  errorCode,
	}
}

func NewErrorWithMsg(statusCode int, errorCode ErrorCode, msg string) *Error {
	return &Error{
		Err:        errors.New(msg),
		StatusCode: statusCode,
		ErrorCode:  errorCode,
	}
}

func NewInternalServiceError(err error) *Error {
	return &Error{
		Err:        err,
		StatusCode: http.StatusInternalServerError,
		ErrorCode:  InternalServiceError,
	}
}

func NewUnauthorizedError(msg string) *Error {
	return NewErrorWithMsg(http.StatusUnauthorized, Unauthorized, msg)
}

func NewBadRequestError(err error) *Error {
	return NewError(http.StatusBadRequest, BadRequest, err)
}

func NewNetworkError(err error) *Error {
	return NewError(http.StatusBadGateway, NetworkError, err)
}

func NewProtocolError(msg string) *Error {
	return NewErrorWithMsg(http.StatusBadGateway, ProtocolError, msg)
}

func NewSerializationError(err error) *Error {
	return NewError(http.StatusBadRequest, SerializationError, err)
}

func NewTimestampError(err error) *Error {
	return NewError(http.StatusInternalServerError, TimestampError, err)
}

// AsError extracts the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var typed *Error
	if errors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}

// IsErrorCode reports whether err carries the given code anywhere in its chain.
func IsErrorCode(err error, code ErrorCode) bool {
	typed, ok := AsError(err)
	return ok && typed.ErrorCode == code
}
