// Package apperrors holds the error taxonomy shared by the irrixa packages.
// Every error carries the HTTP status the api service answers with.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Coded is implemented by every error of this package.
type Coded interface {
	error
	HTTPStatus() int
}

// ValidationError: a finalized configuration violates a field constraint.
type ValidationError struct {
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	msg := "invalid configuration"
	if len(e.Fields) > 0 {
		msg += ": " + strings.Join(e.Fields, ", ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error   { return e.Err }
func (e *ValidationError) HTTPStatus() int { return http.StatusBadRequest }

// InvalidInputError: operator input could not be parsed.
type InvalidInputError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *InvalidInputError) Unwrap() error   { return e.Err }
func (e *InvalidInputError) HTTPStatus() int { return http.StatusBadRequest }

// PersistError: the remote write (or remote action) failed.
type PersistError struct {
	Op    string
	Block string
	Err   error
}

func (e *PersistError) Error() string {
	if e.Block != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Block, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error   { return e.Err }
func (e *PersistError) HTTPStatus() int { return http.StatusBadGateway }

// LoadError: a remote read failed or returned a malformed document.
type LoadError struct {
	Op  string
	Err error
}

func (e *LoadError) Error() string   { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *LoadError) Unwrap() error   { return e.Err }
func (e *LoadError) HTTPStatus() int { return http.StatusBadGateway }

// ConfigurationError: a soil type without a RAW default reached the defaulting rule.
type ConfigurationError struct {
	SoilType string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("no default RAW for soil type %q", e.SoilType)
}

func (e *ConfigurationError) HTTPStatus() int { return http.StatusInternalServerError }

// NotFoundError: a block name is not in the current snapshot.
type NotFoundError struct {
	What string
	Key  string
}

func (e *NotFoundError) Error() string   { return fmt.Sprintf("%s %q not found", e.What, e.Key) }
func (e *NotFoundError) HTTPStatus() int { return http.StatusNotFound }

// StatusOf walks the wrap chain and returns the status of the first Coded error,
// or 500 when there is none.
func StatusOf(err error) int {
	var c Coded
	if errors.As(err, &c) {
		return c.HTTPStatus()
	}
	return http.StatusInternalServerError
}
