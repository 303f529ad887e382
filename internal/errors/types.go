// Package errors defines the classified error type shared by the
// dispatcher, the CLI and the MCP server.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies where a failure came from
type ErrorType string

const (
	// ErrorTypeValidation marks bad parameters; no request was sent
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeAPI marks a failed remote call annotated with its URL
	ErrorTypeAPI      ErrorType = "api"
	ErrorTypeNetwork  ErrorType = "network"
	ErrorTypeAuth     ErrorType = "auth"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeInternal ErrorType = "internal"
	ErrorTypeMCP      ErrorType = "mcp"
)

// Context keys with a fixed meaning
const (
	ContextStatusCode = "status_code"
	ContextItemIndex  = "item_index"
	ContextField      = "field"
	ContextURL        = "url"
)

// RDMError carries a classification, a message and key/value context.
// Error() renders "message: cause".
type RDMError struct {
	Type    ErrorType
	Message string
	Context map[string]interface{}
	Cause   error
}

func (e *RDMError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
}

func (e *RDMError) Unwrap() error {
	return e.Cause
}

// Is matches any *RDMError of the same Type, so that
// errors.Is(err, &RDMError{Type: ErrorTypeAPI}) searches the whole chain.
func (e *RDMError) Is(target error) bool {
	t, ok := target.(*RDMError)
	return ok && e.Type == t.Type
}

// WithContext sets key and returns e for chaining
func (e *RDMError) WithContext(key string, value interface{}) *RDMError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates an error without a cause
func New(errType ErrorType, message string) *RDMError {
	return &RDMError{Type: errType, Message: message, Context: make(map[string]interface{})}
}

// Newf is New with a format string
func Newf(errType ErrorType, format string, args ...interface{}) *RDMError {
	return New(errType, fmt.Sprintf(format, args...))
}

// Wrap classifies err under a new message
func Wrap(err error, errType ErrorType, message string) *RDMError {
	wrapped := New(errType, message)
	wrapped.Cause = err
	return wrapped
}

// Wrapf is Wrap with a format string
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *RDMError {
	return Wrap(err, errType, fmt.Sprintf(format, args...))
}

// As reports whether err itself is an *RDMError. Causes are not searched.
func As(err error) (*RDMError, bool) {
	rErr, ok := err.(*RDMError)
	return rErr, ok
}

// IsType reports whether err itself has the given type
func IsType(err error, errType ErrorType) bool {
	rErr, ok := As(err)
	return ok && rErr.Type == errType
}

// GetType returns the type of err, ErrorTypeInternal for foreign errors
func GetType(err error) ErrorType {
	if rErr, ok := As(err); ok {
		return rErr.Type
	}
	return ErrorTypeInternal
}

// GetContext returns the context of err itself, nil for foreign errors
func GetContext(err error) map[string]interface{} {
	if rErr, ok := As(err); ok {
		return rErr.Context
	}
	return nil
}

// StatusCode returns the first HTTP status recorded anywhere in the chain
func StatusCode(err error) (int, bool) {
	for err != nil {
		if status, ok := GetContext(err)[ContextStatusCode].(int); ok {
			return status, true
		}
		err = stderrors.Unwrap(err)
	}
	return 0, false
}

// ItemIndex returns the input item a failure was tagged with
func ItemIndex(err error) (int, bool) {
	for err != nil {
		if index, ok := GetContext(err)[ContextItemIndex].(int); ok {
			return index, true
		}
		err = stderrors.Unwrap(err)
	}
	return 0, false
}
