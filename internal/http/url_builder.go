package http

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// malformedScheme matches a scheme separator with whitespace after the colon,
// e.g. "https: //host" as produced by some credential forms.
var malformedScheme = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9+.\-]*):\s+//`)

// QueryParams is an insertion-ordered query mapping. Values that are nil or
// the empty string are dropped when the query string is built.
type QueryParams = orderedmap.OrderedMap[string, any]

// NewQueryParams returns an empty ordered query mapping
func NewQueryParams() *QueryParams {
	return orderedmap.New[string, any]()
}

// componentUnescapes restores the characters QueryEscape encodes but
// encodeURIComponent leaves alone
var componentUnescapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// NormalizeBaseURL trims surrounding whitespace and repairs
// "scheme: //host" into "scheme://host". Any other input is returned
// unchanged.
func NormalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	return malformedScheme.ReplaceAllString(raw, "$1://")
}

// APIBaseURL normalizes raw and appends "/api" unless the path already
// ends with it, so both "https://host" and "https://host/api" address
// the REST API root.
func APIBaseURL(raw string) string {
	base := strings.TrimRight(NormalizeBaseURL(raw), "/")
	if base == "" || strings.HasSuffix(base, "/api") {
		return base
	}
	return base + "/api"
}

// JoinURL strips trailing slashes from base and appends path, which is
// expected to start with "/".
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

// BuildURLWithParams joins base and path and appends the encoded query
func BuildURLWithParams(base, path string, params *QueryParams) string {
	joined := JoinURL(base, path)

	query := EncodeQuery(params)
	if query == "" {
		return joined
	}
	return joined + "?" + query
}

// EncodeQuery serializes params in insertion order, percent-encoding keys
// and values the way encodeURIComponent does.
func EncodeQuery(params *QueryParams) string {
	if params == nil {
		return ""
	}

	parts := make([]string, 0, params.Len())
	for pair := params.Oldest(); pair != nil; pair = pair.Next() {
		value, ok := queryValue(pair.Value)
		if !ok {
			continue
		}
		parts = append(parts, encodeComponent(pair.Key)+"="+encodeComponent(value))
	}

	return strings.Join(parts, "&")
}

// PathEscape escapes an identifier for use as a single path segment
func PathEscape(segment string) string {
	return url.PathEscape(segment)
}

func queryValue(v any) (string, bool) {
	switch value := v.(type) {
	case nil:
		return "", false
	case string:
		return value, value != ""
	case *string:
		if value == nil || *value == "" {
			return "", false
		}
		return *value, true
	case fmt.Stringer:
		s := value.String()
		return s, s != ""
	default:
		return fmt.Sprint(value), true
	}
}

func encodeComponent(s string) string {
	return componentUnescapes.Replace(url.QueryEscape(s))
}
