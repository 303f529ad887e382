package rdm

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Normalize flattens a shaped response into items: one per array element,
// one for any other value, none for an empty body or null.
func Normalize(resp json.RawMessage, pairedItem int) []OutputItem {
	trimmed := bytes.TrimSpace(resp)
	if len(trimmed) == 0 {
		return nil
	}

	result := gjson.ParseBytes(trimmed)
	switch {
	case result.Type == gjson.Null:
		return nil
	case result.IsArray():
		elements := result.Array()
		items := make([]OutputItem, 0, len(elements))
		for _, element := range elements {
			items = append(items, OutputItem{
				JSON:       json.RawMessage(element.Raw),
				PairedItem: pairedItem,
			})
		}
		return items
	default:
		return []OutputItem{{JSON: json.RawMessage(trimmed), PairedItem: pairedItem}}
	}
}
