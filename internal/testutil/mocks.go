package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/brendan.keane/rdmctl/internal/credentials"
)

// TransportCall records one request made through MockTransport
type TransportCall struct {
	Method string
	URL    string
	Body   any
}

// TransportResponse is one scripted reply of MockTransport
type TransportResponse struct {
	Body  string
	Error error
}

// MockTransport implements the JSON transport used by the dispatcher.
// Responses are consumed in order; once exhausted the last one repeats.
type MockTransport struct {
	Responses []TransportResponse
	Calls     []TransportCall
}

// NewMockTransport creates a transport replying with the given bodies
func NewMockTransport(bodies ...string) *MockTransport {
	m := &MockTransport{}
	for _, b := range bodies {
		m.Responses = append(m.Responses, TransportResponse{Body: b})
	}
	return m
}

// ThenError appends a failing reply
func (m *MockTransport) ThenError(err error) *MockTransport {
	m.Responses = append(m.Responses, TransportResponse{Error: err})
	return m
}

// Then appends a successful reply
func (m *MockTransport) Then(body string) *MockTransport {
	m.Responses = append(m.Responses, TransportResponse{Body: body})
	return m
}

// Request records the call and returns the next scripted reply
func (m *MockTransport) Request(ctx context.Context, method, url string, body any) (json.RawMessage, error) {
	m.Calls = append(m.Calls, TransportCall{Method: method, URL: url, Body: body})

	if len(m.Responses) == 0 {
		return nil, nil
	}

	idx := len(m.Calls) - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}

	resp := m.Responses[idx]
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.Body == "" {
		return nil, nil
	}
	return json.RawMessage(resp.Body), nil
}

// LastCall returns the most recent call
func (m *MockTransport) LastCall() TransportCall {
	if len(m.Calls) == 0 {
		return TransportCall{}
	}
	return m.Calls[len(m.Calls)-1]
}

// MockCredentialStore returns fixed credentials and counts lookups
type MockCredentialStore struct {
	Credentials credentials.Credentials
	Error       error
	Lookups     []string
}

// NewMockCredentialStore creates a store for baseURL with a test token
func NewMockCredentialStore(baseURL string) *MockCredentialStore {
	return &MockCredentialStore{
		Credentials: credentials.Credentials{BaseURL: baseURL, AccessToken: "test-token"},
	}
}

// GetCredentials implements credentials.Store
func (m *MockCredentialStore) GetCredentials(ctx context.Context, name string) (credentials.Credentials, error) {
	m.Lookups = append(m.Lookups, name)
	return m.Credentials, m.Error
}

// RecordingSource is a parameter source that records the order in which
// parameters are read. Missing values read as nil.
type RecordingSource struct {
	Items []map[string]any
	Reads []string
	Fail  map[string]error
}

// NewRecordingSource creates a source over the given items
func NewRecordingSource(items ...map[string]any) *RecordingSource {
	return &RecordingSource{Items: items}
}

// ItemCount returns the number of items
func (s *RecordingSource) ItemCount() int {
	return len(s.Items)
}

// Parameter records "name@index" and returns the value
func (s *RecordingSource) Parameter(name string, itemIndex int) (any, error) {
	s.Reads = append(s.Reads, fmt.Sprintf("%s@%d", name, itemIndex))

	if err, ok := s.Fail[name]; ok {
		return nil, err
	}
	if itemIndex < 0 || itemIndex >= len(s.Items) {
		return nil, fmt.Errorf("item %d out of range", itemIndex)
	}
	return s.Items[itemIndex][name], nil
}

// ReadsFor returns the parameter names read for one item, in order
func (s *RecordingSource) ReadsFor(itemIndex int) []string {
	suffix := fmt.Sprintf("@%d", itemIndex)
	var names []string
	for _, r := range s.Reads {
		if strings.HasSuffix(r, suffix) {
			names = append(names, strings.TrimSuffix(r, suffix))
		}
	}
	return names
}

// MockHTTPClient records requests and returns a canned response
type MockHTTPClient struct {
	StatusCode int
	Body       string
	Error      error
	Requests   []*http.Request
}

// Do implements the HTTPClientProvider interface
func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.Requests = append(m.Requests, req)
	if m.Error != nil {
		return nil, m.Error
	}

	status := m.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(m.Body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Request:    req,
	}, nil
}

// MockError provides a simple mock error implementation
type MockError struct {
	Message string
}

func (e *MockError) Error() string {
	return e.Message
}

// NewMockError creates a mock error
func NewMockError(message string) *MockError {
	return &MockError{Message: message}
}
