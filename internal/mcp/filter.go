package mcp

import (
	"bytes"
	"context"

	"github.com/brendan.keane/rdmctl/internal/output"
	"github.com/brendan.keane/rdmctl/internal/rdm"
	"github.com/tidwall/pretty"
)

// FilterResult is the text returned to the client plus size bookkeeping
type FilterResult struct {
	Content string
	Meta    map[string]interface{}
}

// estimateTokens approximates token count using chars/4 heuristic
func estimateTokens(data string) int {
	return len(data) / 4
}

// renderItems returns the item documents as one JSON array
func renderItems(items []rdm.OutputItem) string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(item.JSON)
	}
	buf.WriteByte(']')
	return string(pretty.Pretty(buf.Bytes()))
}

// filterItems applies an optional jq expression to each item
func filterItems(ctx context.Context, items []rdm.OutputItem, expression string) (*FilterResult, error) {
	source := renderItems(items)

	filter, err := output.NewFilter(expression)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return &FilterResult{
			Content: source,
			Meta: map[string]interface{}{
				"items":  len(items),
				"tokens": estimateTokens(source),
			},
		}, nil
	}

	filtered, err := filter.Apply(ctx, items)
	if err != nil {
		return nil, err
	}
	content := renderItems(filtered)

	return &FilterResult{
		Content: content,
		Meta: map[string]interface{}{
			"filter": map[string]interface{}{
				"type":         "jq",
				"expression":   filter.String(),
				"result_count": len(filtered),
			},
			"items": len(items),
			"tokens": map[string]interface{}{
				"returned": estimateTokens(content),
				"source":   estimateTokens(source),
			},
			"bytes": map[string]interface{}{
				"returned": len(content),
				"source":   len(source),
			},
		},
	}, nil
}
