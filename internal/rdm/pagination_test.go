package rdm

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/brendan.keane/rdmctl/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestApplyPagination_Count(t *testing.T) {
	for _, served := range []int{0, 1, 5, 60} {
		for _, limit := range []int{1, 2, 5, 50} {
			name := fmt.Sprintf("served=%d/limit=%d", served, limit)
			resp := ApplyPagination(json.RawMessage(testutil.Hits(served)), Pagination{Limit: limit})

			assert.Len(t, Normalize(resp, 0), min(limit, served), name)
		}

		all := ApplyPagination(json.RawMessage(testutil.Hits(served)), Pagination{ReturnAll: true, Limit: 1})
		assert.Len(t, Normalize(all, 0), served, "returnAll served=%d", served)
	}
}

func TestApplyPagination_KeepsServerOrder(t *testing.T) {
	resp := ApplyPagination(json.RawMessage(testutil.Hits(5)), Pagination{Limit: 3})

	ids := gjson.GetBytes(resp, "#.id").Array()
	assert.Len(t, ids, 3)
	assert.Equal(t, "rec-1", ids[0].String())
	assert.Equal(t, "rec-2", ids[1].String())
	assert.Equal(t, "rec-3", ids[2].String())
}

func TestApplyPagination_DefaultLimit(t *testing.T) {
	resp := ApplyPagination(json.RawMessage(testutil.Hits(60)), Pagination{})
	assert.Len(t, Normalize(resp, 0), DefaultLimit)
}

func TestApplyPagination_NoWrapper(t *testing.T) {
	tests := []string{
		`{"id":"abc"}`,
		`[{"id":"a"},{"id":"b"},{"id":"c"}]`,
		`{"hits":{"total":0}}`,
		`{"hits":{"hits":{"id":"x"}}}`,
		``,
		`not json`,
	}

	for _, body := range tests {
		resp := ApplyPagination(json.RawMessage(body), Pagination{Limit: 1})
		assert.Equal(t, body, string(resp))
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		resp     string
		expected []string
	}{
		{"empty", "", nil},
		{"whitespace", "  \n", nil},
		{"null", "null", nil},
		{"object", `{"id":"abc"}`, []string{`{"id":"abc"}`}},
		{"array", `[{"id":"a"}, {"id":"b"}]`, []string{`{"id":"a"}`, `{"id":"b"}`}},
		{"empty array", `[]`, []string{}},
		{"scalar", `"OK"`, []string{`"OK"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Normalize(json.RawMessage(tt.resp), 4)

			if tt.expected == nil {
				assert.Empty(t, items)
				return
			}

			assert.Len(t, items, len(tt.expected))
			for i, item := range items {
				assert.JSONEq(t, tt.expected[i], string(item.JSON))
				assert.Equal(t, 4, item.PairedItem)
			}
		})
	}
}

func TestResults(t *testing.T) {
	testutil.AssertJSONEqual(t, DeleteResult("abc123"), `{"success":true,"id":"abc123"}`, "delete")
	testutil.AssertJSONEqual(t, DeleteResult(`we"ird`), `{"success":true,"id":"we\"ird"}`, "delete escaping")
	testutil.AssertJSONEqual(t, PingResult(), `{"message":"OK"}`, "ping")
	testutil.AssertJSONEqual(t, ErrorResult("Failed to get records. URL: x"), `{"error":"Failed to get records. URL: x"}`, "error")
}
