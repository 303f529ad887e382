package rdm

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// hitsPath locates the result array of a paginated InvenioRDM response
const hitsPath = "hits.hits"

// ApplyPagination unwraps {hits:{hits:[...]}} envelopes. With returnAll the
// full array is kept, otherwise it is cut to the limit even if the server
// sent more. Responses without the wrapper are returned unchanged.
func ApplyPagination(resp json.RawMessage, p Pagination) json.RawMessage {
	if len(resp) == 0 || !gjson.ValidBytes(resp) {
		return resp
	}

	hits := gjson.GetBytes(resp, hitsPath)
	if !hits.Exists() || !hits.IsArray() {
		return resp
	}

	if p.ReturnAll {
		return json.RawMessage(hits.Raw)
	}

	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	elements := hits.Array()
	if len(elements) <= limit {
		return json.RawMessage(hits.Raw)
	}

	kept := make([]json.RawMessage, 0, limit)
	for _, hit := range elements[:limit] {
		kept = append(kept, json.RawMessage(hit.Raw))
	}

	out, err := json.Marshal(kept)
	if err != nil {
		return json.RawMessage(hits.Raw)
	}
	return out
}
