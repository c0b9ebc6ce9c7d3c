package services

import (
	"fmt"
	"net/http"
)

// Custom errors

// ValidationError names the missing or malformed input.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return "Validation error"
	}
	return e.Message
}

type NotFoundError struct {
	Message string
	Details string
}

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

// ConfigError is returned before calling a provider whose credential is absent.
type ConfigError struct{ Message string }

func (e *ConfigError) Error() string { return e.Message }

// UpstreamError wraps a failed call to a third-party provider.
type UpstreamError struct {
	Message string
	Details string
	Status  int
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// HTTPStatus is the status to surface, 500 unless the provider gave a usable one.
func (e *UpstreamError) HTTPStatus() int {
	if e.Status >= 400 && e.Status <= 599 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// PersistenceError means the store could not be reached or the write failed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }
