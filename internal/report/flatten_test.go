package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func decode(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	assert.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestFlatten_PathShapes(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected map[string]interface{}
	}{
		{
			name: "nested objects use dot paths",
			raw:  `{"a":{"b":{"c":1}}}`,
			expected: map[string]interface{}{
				"a.b.c": float64(1),
			},
		},
		{
			name: "arrays use bracket indices",
			raw:  `{"lines":[{"total":10},{"total":20}]}`,
			expected: map[string]interface{}{
				"lines[0].total": float64(10),
				"lines[1].total": float64(20),
			},
		},
		{
			name: "scalar array elements are leaves",
			raw:  `{"tags":["a","b"]}`,
			expected: map[string]interface{}{
				"tags[0]": "a",
				"tags[1]": "b",
			},
		},
		{
			name: "null is a terminal leaf",
			raw:  `{"a":{"b":null}}`,
			expected: map[string]interface{}{
				"a.b": nil,
			},
		},
		{
			name: "mixed scalar types survive",
			raw:  `{"s":"x","n":2.5,"t":true}`,
			expected: map[string]interface{}{
				"s": "x",
				"n": 2.5,
				"t": true,
			},
		},
		{
			name:     "empty object contributes nothing",
			raw:      `{"a":{}}`,
			expected: map[string]interface{}{},
		},
		{
			name:     "empty array contributes nothing",
			raw:      `{"a":[]}`,
			expected: map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flat, err := Flatten(decode(t, tt.raw))
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, flat)
		})
	}
}

func TestFlatten_DepthBound(t *testing.T) {
	// Build nesting two levels past the bound.
	leaf := map[string]interface{}{"v": 1}
	current := leaf
	for i := 0; i < 12; i++ {
		current = map[string]interface{}{"n": current}
	}

	flat, err := FlattenWithDepth(current, 10)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrDepthExceeded)
	assert.Nil(t, flat)

	flat, err = FlattenWithDepth(current, 100)
	assert.NoError(t, err)
	assert.Len(t, flat, 1)
}

func TestFlatten_Deterministic(t *testing.T) {
	doc := decode(t, `{"z":{"a":1},"a":{"z":2},"list":[{"k":"v"},{"k":"w"}]}`)

	first, err := Flatten(doc)
	assert.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := Flatten(doc)
		assert.NoError(t, err)
		assert.Equal(t, first, again)
		assert.Equal(t, SortedKeys(first), SortedKeys(again))
	}
}

func TestSortedKeys(t *testing.T) {
	flat := map[string]interface{}{"b": 1, "a": 2, "c": 3}
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(flat))
	assert.Empty(t, SortedKeys(map[string]interface{}{}))
}

func TestAsNumber(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected float64
		ok       bool
	}{
		{"float", 12.5, 12.5, true},
		{"numeric string", "31.94", 31.94, true},
		{"integer string", "7", 7, true},
		{"word", "total", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := AsNumber(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, n)
		})
	}
}
