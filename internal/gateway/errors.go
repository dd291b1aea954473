package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrFetchFailed    ErrorCode = "FETCH_FAILED"
	ErrItemNotFound   ErrorCode = "ITEM_NOT_FOUND"
	ErrUpdateRejected ErrorCode = "UPDATE_REJECTED"
)

type Error struct {
	Code       ErrorCode
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return e.Message
}

func FetchError(message string, cause error) *Error {
	if cause != nil {
		message = fmt.Sprintf("%s: %v", message, cause)
	}
	return &Error{Code: ErrFetchFailed, Message: message, StatusCode: http.StatusBadGateway}
}

func ItemNotFoundError(itemID int64) *Error {
	return &Error{
		Code:       ErrItemNotFound,
		Message:    fmt.Sprintf("Item %d not found", itemID),
		StatusCode: http.StatusNotFound,
	}
}

func UpdateRejectedError(itemID int64, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("Update rejected for item %d", itemID)
	}
	return &Error{Code: ErrUpdateRejected, Message: message, StatusCode: http.StatusUnprocessableEntity}
}

// CodeOf extracts the taxonomy code from err, falling back to FETCH_FAILED
// for transport-level failures that never reached the store.
func CodeOf(err error) ErrorCode {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ErrFetchFailed
}
