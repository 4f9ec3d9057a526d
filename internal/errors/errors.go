package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// TokenGapsError is the structured error type for tokengaps.
// It carries enough context to log the failure and to tell the user what to fix.
type TokenGapsError struct {
	// Code is the unique error code (e.g., "ERR_103_UNKNOWN_PARAMETER").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *TokenGapsError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *TokenGapsError) Unwrap() error {
	return e.Cause
}

// Is matches by code so errors.Is works against a sentinel built with New.
func (e *TokenGapsError) Is(target error) bool {
	if t, ok := target.(*TokenGapsError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *TokenGapsError) WithDetail(key, value string) *TokenGapsError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *TokenGapsError) WithSuggestion(suggestion string) *TokenGapsError {
	e.Suggestion = suggestion
	return e
}

// New creates a new TokenGapsError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *TokenGapsError {
	return &TokenGapsError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a TokenGapsError from an existing error.
// The error's message becomes the TokenGapsError message.
func Wrap(code string, err error) *TokenGapsError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *TokenGapsError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *TokenGapsError {
	return New(ErrCodeFileNotFound, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *TokenGapsError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *TokenGapsError {
	return New(ErrCodeInternal, message, cause)
}

// UnknownParameters reports construction arguments that no component consumed.
// Keys are sorted so the message is stable.
func UnknownParameters(component string, args map[string]string) *TokenGapsError {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return New(ErrCodeUnknownParameter,
		fmt.Sprintf("unknown parameters for %s: %s", component, strings.Join(keys, ", ")), nil).
		WithDetail("component", component).
		WithSuggestion("remove the listed keys from the filter arguments")
}

// UnknownComponent reports a tokenizer or filter name that is not registered.
func UnknownComponent(kind, name string) *TokenGapsError {
	return New(ErrCodeUnknownComponent, fmt.Sprintf("unknown %s: %q", kind, name), nil).
		WithDetail("kind", kind).
		WithSuggestion("run 'tokengaps config filters' to list registered names")
}

// As finds the first TokenGapsError in err's chain.
func As(err error) (*TokenGapsError, bool) {
	var te *TokenGapsError
	if stderrors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	if te, ok := As(err); ok {
		return te.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a TokenGapsError.
// Returns empty string if not a TokenGapsError.
func GetCode(err error) string {
	if te, ok := As(err); ok {
		return te.Code
	}
	return ""
}

// GetCategory extracts the category from a TokenGapsError.
func GetCategory(err error) Category {
	if te, ok := As(err); ok {
		return te.Category
	}
	return ""
}
