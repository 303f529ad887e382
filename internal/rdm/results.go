package rdm

import (
	"encoding/json"

	"github.com/tidwall/sjson"
)

// DeleteResult is emitted for a successful delete regardless of the
// server's (usually empty) response.
func DeleteResult(id string) json.RawMessage {
	doc, _ := sjson.SetBytes([]byte(`{"success":true}`), "id", id)
	return doc
}

// PingResult is emitted for a successful ping
func PingResult() json.RawMessage {
	doc, _ := sjson.SetBytes([]byte(`{}`), "message", "OK")
	return doc
}

// ErrorResult is the item emitted for a failed input when isolation is on
func ErrorResult(message string) json.RawMessage {
	doc, _ := sjson.SetBytes([]byte(`{}`), "error", message)
	return doc
}
