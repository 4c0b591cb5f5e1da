package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned for any 401 response. The client has
// already torn the session down by the time a caller sees it.
var ErrUnauthorized = errors.New("unauthorized")

// NetworkError wraps transport failures: no response at all, including
// the client-wide request timeout.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network error: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// FieldError is the structural per-field error shape the server returns
// for validation failures.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ServerError is any non-401 error status that carried a response.
type ServerError struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error %d", e.Status)
}

// FieldFor returns the message for a named field, if the server sent a
// structural errors array.
func (e *ServerError) FieldFor(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f.Message, true
		}
	}
	return "", false
}
