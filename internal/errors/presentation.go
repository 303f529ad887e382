package errors

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// UserMessage returns a user-friendly error message
func UserMessage(err error) string {
	if rErr, ok := err.(*RDMError); ok {
		return formatUserError(rErr)
	}
	return err.Error()
}

// formatUserError creates user-friendly error messages based on error type
func formatUserError(rErr *RDMError) string {
	switch rErr.Type {
	case ErrorTypeValidation:
		return formatValidationError(rErr)
	case ErrorTypeAPI:
		return formatAPIError(rErr)
	case ErrorTypeNetwork:
		return formatNetworkError(rErr)
	case ErrorTypeConfig:
		return formatConfigError(rErr)
	default:
		return rErr.Error()
	}
}

func formatValidationError(rErr *RDMError) string {
	msg := rErr.Message
	if field, ok := rErr.Context[ContextField]; ok {
		msg = fmt.Sprintf("Invalid %s: %s", field, msg)
	}
	return msg
}

func formatAPIError(rErr *RDMError) string {
	msg := rErr.Error()
	if status, ok := StatusCode(rErr); ok {
		msg = fmt.Sprintf("%s (HTTP %v)", msg, status)
	}
	return msg
}

func formatNetworkError(rErr *RDMError) string {
	msg := rErr.Error()
	if url, ok := rErr.Context[ContextURL]; ok {
		msg = fmt.Sprintf("Network error accessing %s: %s", url, msg)
	}
	return msg
}

func formatConfigError(rErr *RDMError) string {
	msg := rErr.Message

	if configType, ok := rErr.Context["config_type"]; ok {
		msg = fmt.Sprintf("Configuration error (%s): %s", configType, msg)
	}

	return msg
}

// PresentError displays an error to the user through the global zerolog logger and exits
func PresentError(err error) {
	if err == nil {
		return
	}
	logError(log.Fatal(), err)
}

// logError writes err to event. At debug level the DebugInfo breakdown is
// attached as well.
func logError(event *zerolog.Event, err error) {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		event = event.Interface("debug", DebugInfo(err))
	}

	rErr, ok := err.(*RDMError)
	if !ok {
		event.Err(err).Msg("")
		return
	}

	for key, value := range rErr.Context {
		event = event.Interface(key, value)
	}
	if rErr.Cause != nil {
		event = event.Str("cause", rErr.Cause.Error())
	}
	event.Msg(rErr.Message)
}

// DebugInfo returns detailed error information for debugging
func DebugInfo(err error) map[string]interface{} {
	info := map[string]interface{}{
		"error":   err.Error(),
		"type":    "unknown",
		"context": map[string]interface{}{},
	}

	if rErr, ok := err.(*RDMError); ok {
		info["type"] = string(rErr.Type)
		info["message"] = rErr.Message
		info["context"] = rErr.Context

		if rErr.Cause != nil {
			info["cause"] = rErr.Cause.Error()
		}
	}

	return info
}
