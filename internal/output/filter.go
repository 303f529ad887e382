// Package output filters and renders the items produced by a run.
package output

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"github.com/brendan.keane/rdmctl/internal/errors"
	"github.com/brendan.keane/rdmctl/internal/rdm"
	"github.com/itchyny/gojq"
)

// DefaultFilterTimeout bounds one filter evaluation
const DefaultFilterTimeout = time.Second

// Filter is a compiled jq expression applied to every item.
// A nil *Filter passes items through unchanged.
type Filter struct {
	expression string
	code       *gojq.Code
	timeout    time.Duration
}

// NewFilter compiles expression. An empty expression yields a nil filter.
func NewFilter(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, nil
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "invalid jq expression").
			WithContext("field", "jq").
			WithContext("value", expression)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "jq compilation failed").
			WithContext("field", "jq").
			WithContext("value", expression)
	}

	return &Filter{expression: expression, code: code, timeout: DefaultFilterTimeout}, nil
}

// String returns the source expression
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expression
}

// Apply runs the filter on each item. Every value the expression emits
// becomes an item paired with the same input; null results are dropped.
func (f *Filter) Apply(ctx context.Context, items []rdm.OutputItem) ([]rdm.OutputItem, error) {
	if f == nil {
		return items, nil
	}

	var out []rdm.OutputItem
	for _, item := range items {
		values, err := f.Run(ctx, item.JSON)
		if err != nil {
			if rErr, ok := errors.As(err); ok {
				rErr.WithContext("item_index", item.PairedItem)
			}
			return nil, err
		}
		for _, v := range values {
			out = append(out, rdm.OutputItem{JSON: v, PairedItem: item.PairedItem})
		}
	}
	return out, nil
}

// Run evaluates the filter against one JSON document
func (f *Filter) Run(ctx context.Context, doc json.RawMessage) ([]json.RawMessage, error) {
	if f == nil {
		return []json.RawMessage{doc}, nil
	}

	var input any
	if err := json.Unmarshal(doc, &input); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "filter input is not JSON")
	}

	runCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var results []json.RawMessage
	iter := f.code.RunWithContext(runCtx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			var halt *gojq.HaltError
			if stderrors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return nil, errors.Wrap(err, errors.ErrorTypeValidation, "jq evaluation failed").
				WithContext("field", "jq").
				WithContext("value", f.expression)
		}
		if v == nil {
			continue
		}

		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode jq result")
		}
		results = append(results, encoded)
	}

	return results, nil
}
