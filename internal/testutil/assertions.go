package testutil

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/brendan.keane/rdmctl/internal/errors"
	"github.com/tidwall/gjson"
)

// AssertErrorType fails the test unless err or one of its causes is an
// RDMError of the given type
func AssertErrorType(t *testing.T, err error, expected errors.ErrorType, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected %s error, got none", msg, expected)
	}
	if !stderrors.Is(err, &errors.RDMError{Type: expected}) {
		t.Fatalf("%s: expected %s error in chain, got %s: %v", msg, expected, errors.GetType(err), err)
	}
}

// AssertErrorContains fails the test if err is nil or doesn't contain the expected substring
func AssertErrorContains(t *testing.T, err error, expected string, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error containing %q, got none", msg, expected)
	}
	if !strings.Contains(err.Error(), expected) {
		t.Fatalf("%s: expected error containing %q, got %q", msg, expected, err.Error())
	}
}

// AssertJSONEqual compares two JSON documents ignoring formatting and key order
func AssertJSONEqual(t *testing.T, got []byte, expected string, msg string) {
	t.Helper()

	var g, e any
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("%s: got invalid JSON %q: %v", msg, got, err)
	}
	if err := json.Unmarshal([]byte(expected), &e); err != nil {
		t.Fatalf("%s: expected invalid JSON %q: %v", msg, expected, err)
	}
	if !reflect.DeepEqual(g, e) {
		t.Fatalf("%s: got %s, expected %s", msg, got, expected)
	}
}

// AssertJSONPath fails the test if the gjson path doesn't hold the expected string
func AssertJSONPath(t *testing.T, doc []byte, path, expected string, msg string) {
	t.Helper()
	result := gjson.GetBytes(doc, path)
	if !result.Exists() {
		t.Fatalf("%s: path %q not found in %s", msg, path, doc)
	}
	if result.String() != expected {
		t.Fatalf("%s: path %q: got %q, expected %q", msg, path, result.String(), expected)
	}
}

// AssertSliceEqual fails the test if slices don't have the same elements in the same order
func AssertSliceEqual(t *testing.T, got, expected []string, msg string) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("%s: got %d elements, expected %d\ngot: %v\nexpected: %v", msg, len(got), len(expected), got, expected)
	}

	for i, g := range got {
		if g != expected[i] {
			t.Fatalf("%s: element %d: got %q, expected %q\ngot: %v\nexpected: %v", msg, i, g, expected[i], got, expected)
		}
	}
}

// AssertHeaderSet fails the test if the request doesn't have the expected header value
func AssertHeaderSet(t *testing.T, req *http.Request, header, expectedValue string, msg string) {
	t.Helper()
	actualValue := req.Header.Get(header)
	if actualValue != expectedValue {
		t.Fatalf("%s: header %q: got %q, expected %q", msg, header, actualValue, expectedValue)
	}
}

// AssertHeaderNotSet fails the test if the request has the specified header
func AssertHeaderNotSet(t *testing.T, req *http.Request, header string, msg string) {
	t.Helper()
	if req.Header.Get(header) != "" {
		t.Fatalf("%s: expected header %q to not be set, but got %q", msg, header, req.Header.Get(header))
	}
}

// AssertQueryParam fails the test if the request doesn't have the expected query parameter
func AssertQueryParam(t *testing.T, req *http.Request, param, expectedValue string, msg string) {
	t.Helper()
	actualValue := req.URL.Query().Get(param)
	if actualValue != expectedValue {
		t.Fatalf("%s: query param %q: got %q, expected %q", msg, param, actualValue, expectedValue)
	}
}

// AssertCallCount fails the test if a mock wasn't called the expected number of times
func AssertCallCount(t *testing.T, actualCalls, expectedCalls int, mockName string) {
	t.Helper()
	if actualCalls != expectedCalls {
		t.Fatalf("Mock %s: expected %d calls, got %d", mockName, expectedCalls, actualCalls)
	}
}

// SkipIfShort skips the test if running with -short flag (for integration tests)
func SkipIfShort(t *testing.T, reason string) {
	t.Helper()
	if testing.Short() {
		t.Skipf("Skipping in short mode: %s", reason)
	}
}
