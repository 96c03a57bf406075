// Package report gives typed access to Infinity transaction report documents:
// parsing, the transaction list, the nested payload paths, flattening, and
// transaction-type normalization.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Document wraps one parsed report.
type Document struct {
	root map[string]interface{}
}

// Parse decodes raw JSON into a Document. Only syntax is checked; a missing
// report root is legal and yields empty transaction lists downstream.
func Parse(raw []byte) (*Document, error) {
	var root map[string]interface{}
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("parse report document: %w", err)
	}
	return &Document{root: root}, nil
}

// FromMap wraps an already-decoded document.
func FromMap(root map[string]interface{}) *Document {
	return &Document{root: root}
}

func (d *Document) Root() map[string]interface{} {
	if d == nil {
		return nil
	}
	return d.root
}

// Flatten flattens the whole document with the default depth bound.
func (d *Document) Flatten() (map[string]interface{}, error) {
	return Flatten(d.Root())
}

// Transactions returns the report's transaction list. The document stores it
// at InfinityReportResponse.infinityTransactionReport.infinityTransactionReport
// as either a single object or an array; callers always see a slice.
func (d *Document) Transactions() []map[string]interface{} {
	raw, ok := Dig(d.Root(), "InfinityReportResponse", "infinityTransactionReport", "infinityTransactionReport")
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case map[string]interface{}:
		return []map[string]interface{}{v}
	case []interface{}:
		txns := make([]map[string]interface{}, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]interface{}); ok {
				txns = append(txns, m)
			}
		}
		return txns
	default:
		return nil
	}
}

// Details returns the transaction's nested payload section.
func Details(txn map[string]interface{}) (map[string]interface{}, bool) {
	return DigMap(txn, "transactionPayload", "transactionPayload", "attributes", "transactionDetails")
}

// Dig walks nested maps by key, reporting whether the full path exists.
func Dig(m map[string]interface{}, keys ...string) (interface{}, bool) {
	var current interface{} = m
	for _, key := range keys {
		node, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = node[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// DigMap is Dig constrained to a map result.
func DigMap(m map[string]interface{}, keys ...string) (map[string]interface{}, bool) {
	v, ok := Dig(m, keys...)
	if !ok {
		return nil, false
	}
	node, ok := v.(map[string]interface{})
	return node, ok
}

// StringAt renders the value at the path as a string. Absent paths, nulls and
// empty strings report false so callers can apply their own sentinel.
func StringAt(m map[string]interface{}, keys ...string) (string, bool) {
	v, ok := Dig(m, keys...)
	if !ok || v == nil {
		return "", false
	}
	s := Stringify(v)
	if s == "" {
		return "", false
	}
	return s, true
}

// NumberAt coerces the value at the path to a float64.
func NumberAt(m map[string]interface{}, keys ...string) (float64, bool) {
	v, ok := Dig(m, keys...)
	if !ok {
		return 0, false
	}
	return AsNumber(v)
}

// Stringify renders a scalar leaf the way it reads in the source document.
func Stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

// StringOr applies the serialization sentinel for absent values.
func StringOr(m map[string]interface{}, sentinel string, keys ...string) string {
	if s, ok := StringAt(m, keys...); ok {
		return s
	}
	return sentinel
}

// FirstOrSelf unwraps sections that appear as either an object or an array of
// objects, taking the first element of an array.
func FirstOrSelf(v interface{}) map[string]interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return val
	case []interface{}:
		if len(val) > 0 {
			if m, ok := val[0].(map[string]interface{}); ok {
				return m
			}
		}
		return map[string]interface{}{}
	default:
		return map[string]interface{}{}
	}
}

// AsSlice normalizes an array-or-object section to a slice of objects.
func AsSlice(v interface{}) []map[string]interface{} {
	switch val := v.(type) {
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(val))
		for _, item := range val {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, m)
			}
		}
		return out
	case map[string]interface{}:
		return []map[string]interface{}{val}
	default:
		return nil
	}
}

// UniqueStrings deduplicates and sorts for stable metadata output.
func UniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
