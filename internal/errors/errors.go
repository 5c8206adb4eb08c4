package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeTracker       ErrorType = "TRACKER"
	TypeNotFound      ErrorType = "NOT_FOUND"
	TypePrint         ErrorType = "PRINT"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if body, ok := e.Context["body"].(string); ok && body != "" {
			msg += fmt.Sprintf(" - %s", body)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches errors derived from the same sentinel, so callers can use
// errors.Is after WithError or WithContext produced a copy.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// Configuration errors
var (
	ErrConfigMissing = NewAppError(TypeConfiguration, "Configuration is missing", nil).
				WithSuggestion("Create one with: gtt-print config init")

	ErrConfigInvalid = NewAppError(TypeConfiguration, "Configuration is invalid", nil).
				WithSuggestion("Review the file shown by: gtt-print config show")

	ErrHostNameMissing = NewAppError(TypeConfiguration, "Redmine host name is not configured", nil).
				WithSuggestion("Set host_name under [redmine] in config.toml")

	ErrPrintServerMissing = NewAppError(TypeConfiguration, "Print server URL is not configured", nil).
				WithSuggestion("Set base_url under [print] in config.toml")

	ErrUnknownCustomField = NewAppError(TypeConfiguration, "Unknown custom field key", nil).
				WithSuggestion("Use one of: reporter, channel, phone, email, address")
)

// Tracker errors
var (
	ErrEntityNotFound = NewAppError(TypeNotFound, "Entity not found", nil)

	ErrTrackerRequest = NewAppError(TypeTracker, "Request to Redmine failed", nil).
				WithSuggestion("Check base_url and api_key under [redmine]")

	ErrTrackerUnauthorized = NewAppError(TypeTracker, "Redmine rejected the API key", nil).
				WithSuggestion("Generate a key under My account > API access key")

	ErrInvalidFixture = NewAppError(TypeTracker, "Issue file could not be read", nil).
				WithSuggestion("Issue files must be YAML or JSON with an 'issue' section")
)

// Print server errors
var (
	ErrPrintRequest = NewAppError(TypePrint, "Request to print server failed", nil).
			WithSuggestion("Check base_url and app under [print]")

	ErrPrintFailed = NewAppError(TypePrint, "Print job failed", nil)

	ErrPrintTimeout = NewAppError(TypePrint, "Print job did not finish in time", nil)
)

var (
	ErrEncodeDocument = NewAppError(TypeInternal, "Failed to encode print document", nil)
)
