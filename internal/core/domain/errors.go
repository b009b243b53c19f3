package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

var (
	ErrNoData      = &PayloadError{Message: "No data provided"}
	ErrInvalidJSON = &PayloadError{Message: "Invalid JSON body"}
)

// ParameterError reports a malformed list query parameter. Message is
// returned to the client verbatim.
type ParameterError struct {
	Message string
}

func (e *ParameterError) Error() string {
	return e.Message
}

// PayloadError reports a request body that could not be used at all.
type PayloadError struct {
	Message string
}

func (e *PayloadError) Error() string {
	return e.Message
}

type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Missing required fields: " + strings.Join(e.Fields, ", ")
}

// NotFoundError names the entity kind that could not be resolved.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func GameNotFound() error      { return &NotFoundError{Entity: "Game"} }
func PublisherNotFound() error { return &NotFoundError{Entity: "Publisher"} }
func CategoryNotFound() error  { return &NotFoundError{Entity: "Category"} }

// IsClientError reports whether err belongs to the 4xx part of the taxonomy.
func IsClientError(err error) bool {
	var (
		paramErr   *ParameterError
		payloadErr *PayloadError
		missingErr *MissingFieldsError
		validErr   *ValidationError
	)
	switch {
	case errors.As(err, &paramErr), errors.As(err, &payloadErr), errors.As(err, &missingErr), errors.As(err, &validErr):
		return true
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
		return true
	default:
		return false
	}
}
