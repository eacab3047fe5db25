package tenderapi

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrNotFound = errors.New("tender not found")

// APIError is a non-2xx status or a payload with success=false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "Error del servidor"
	}
	if e.StatusCode == 0 {
		return msg
	}
	return fmt.Sprintf("Error %d: %s", e.StatusCode, msg)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// ConnectionError wraps transport failures so callers can show the
// connectivity message instead of the raw dial error.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "Error de conexión. Verifica tu conexión a internet."
}

func (e *ConnectionError) Unwrap() error { return e.Err }
