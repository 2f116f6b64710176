package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)
	ErrFileNotFound    = fmt.Errorf("%w: file", ErrNotFound)
	ErrProfileNotFound = fmt.Errorf("%w: profile", ErrNotFound)

	// Parsing errors
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMalformedPayload  = errors.New("malformed file payload")
	ErrEmptyFile         = errors.New("file contains no data")

	// Collaborator errors
	ErrSuggestionFailed  = errors.New("suggestion request failed")
	ErrMalformedResponse = errors.New("malformed collaborator response")

	// Pipeline errors
	ErrFileNotReady = errors.New("file pipeline has not completed")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewUnsupportedFormatError(extension string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, extension)
}

func NewMalformedResponseError(field string) error {
	return fmt.Errorf("%w: missing required field %s", ErrMalformedResponse, field)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsParseError(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrMalformedPayload) ||
		errors.Is(err, ErrEmptyFile)
}

func IsSuggestionError(err error) bool {
	return errors.Is(err, ErrSuggestionFailed) ||
		errors.Is(err, ErrMalformedResponse)
}
