package report

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// DefaultMaxDepth bounds recursion over hostile or cyclic-looking documents.
const DefaultMaxDepth = 1000

var ErrDepthExceeded = errors.New("DEPTH_EXCEEDED")

// Flatten converts a decoded JSON value into a path -> leaf map. Object keys
// append ".key", array elements append "[index]", scalars (including null)
// are terminal. Empty objects and arrays contribute no entries.
func Flatten(value interface{}) (map[string]interface{}, error) {
	return FlattenWithDepth(value, DefaultMaxDepth)
}

// FlattenWithDepth is Flatten with an explicit depth bound.
func FlattenWithDepth(value interface{}, maxDepth int) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if err := flattenInto(value, "", 0, maxDepth, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenInto(value interface{}, prefix string, depth, maxDepth int, out map[string]interface{}) error {
	if depth > maxDepth {
		return fmt.Errorf("%w: nesting deeper than %d", ErrDepthExceeded, maxDepth)
	}

	switch v := value.(type) {
	case map[string]interface{}:
		for key, child := range v {
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			if err := flattenInto(child, path, depth+1, maxDepth, out); err != nil {
				return err
			}
		}
	case []interface{}:
		for i, child := range v {
			path := prefix + "[" + strconv.Itoa(i) + "]"
			if err := flattenInto(child, path, depth+1, maxDepth, out); err != nil {
				return err
			}
		}
	default:
		if prefix != "" {
			out[prefix] = v
		}
	}

	return nil
}

// SortedKeys returns the flat map's keys in lexical order. Map iteration in
// Go is randomized, so every consumer that enumerates a flattened document
// goes through this to stay deterministic.
func SortedKeys(flat map[string]interface{}) []string {
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AsNumber coerces a leaf value to a float64. Numeric strings count.
func AsNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
