package errors

import (
	"fmt"
)

// Annotate classifies a failed remote call as an API error carrying the attempted URL
// and a description of the action, e.g. "Failed to get records. URL: https://host/api/records".
// The status code of the cause is carried over when present.
func Annotate(cause error, action, url string) *RDMError {
	annotated := Wrap(cause, ErrorTypeAPI, fmt.Sprintf("Failed to %s. URL: %s", action, url)).
		WithContext(ContextURL, url).
		WithContext("action", action)

	if status, ok := StatusCode(cause); ok {
		annotated.WithContext(ContextStatusCode, status)
	}

	return annotated
}

// WithItemIndex tags an unclassified per-item failure with the index of the failing item.
// API errors were annotated where they happened and are returned unchanged.
func WithItemIndex(err error, index int) error {
	if err == nil {
		return nil
	}
	if IsType(err, ErrorTypeAPI) {
		return err
	}
	return Wrapf(err, ErrorTypeAPI, "item %d", index).
		WithContext(ContextItemIndex, index)
}
