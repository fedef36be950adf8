package api

import (
	"fmt"
	"net/http"
)

// statusError carries the HTTP status an operation wants the boundary to
// return alongside its message.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string { return e.message }

func notFoundf(format string, args ...any) error {
	return &statusError{status: http.StatusNotFound, message: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) error {
	return &statusError{status: http.StatusBadRequest, message: fmt.Sprintf(format, args...)}
}
