package rdm

import (
	"github.com/brendan.keane/rdmctl/internal/errors"
)

// Params holds loosely typed parameter values by name
type Params map[string]any

// StaticSource is a ParameterSource over in-memory items. Values missing
// from an item fall back to Shared; values missing from both read as nil.
type StaticSource struct {
	Shared Params
	Items  []Params
}

// NewSingleSource returns a source with exactly one item
func NewSingleSource(params Params) *StaticSource {
	return &StaticSource{Items: []Params{params}}
}

// ItemCount implements ParameterSource
func (s *StaticSource) ItemCount() int {
	return len(s.Items)
}

// Parameter implements ParameterSource
func (s *StaticSource) Parameter(name string, itemIndex int) (any, error) {
	if itemIndex < 0 || itemIndex >= len(s.Items) {
		if itemIndex == 0 {
			return s.Shared[name], nil
		}
		return nil, errors.Newf(errors.ErrorTypeInternal, "item %d out of range", itemIndex).
			WithContext("item_count", len(s.Items))
	}

	if v, ok := s.Items[itemIndex][name]; ok {
		return v, nil
	}
	return s.Shared[name], nil
}
