package protocol

import (
	"net/url"
	"sort"
	"strings"
)

// ParseURLParams parses a URL or query string into sorted key-value pairs.
// It handles both full URLs (with ?) and bare query strings (key=value&...).
// Returns nil if the input is empty or unparseable.
func ParseURLParams(raw string) []KeyValue {
	values := parseValues(raw)
	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]KeyValue, 0, len(keys))
	for _, k := range keys {
		for _, v := range values[k] {
			result = append(result, KeyValue{Key: k, Value: v})
		}
	}
	return result
}

// QueryParam returns the first value of key in a URL or bare query string.
func QueryParam(raw, key string) (string, bool) {
	values := parseValues(raw)
	vs, ok := values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func parseValues(raw string) url.Values {
	if raw == "" {
		return nil
	}
	// Try parsing as full URL first
	if u, err := url.Parse(raw); err == nil && u.RawQuery != "" {
		return u.Query()
	}
	// Try as bare query string
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return nil
	}
	return values
}

// KeyValue represents a parsed URL parameter.
type KeyValue struct {
	Key   string
	Value string
}
