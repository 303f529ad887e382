package http

import (
	"context"
	"encoding/json"
	"net/http"
)

// HTTPClientProvider defines interface for the underlying HTTP client
// Enables testing with mock HTTP clients
type HTTPClientProvider interface {
	Do(req *http.Request) (*http.Response, error)
}

// JSONTransport issues one authenticated request and returns the decoded
// JSON body. An empty response body yields a nil message.
type JSONTransport interface {
	Request(ctx context.Context, method, url string, body any) (json.RawMessage, error)
}
