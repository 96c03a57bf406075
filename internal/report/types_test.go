package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTypes(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{
			name:     "canonical spelling",
			query:    "order total for CREATE_ORDER",
			expected: []string{"CREATE_ORDER"},
		},
		{
			name:     "spoken spelling",
			query:    "what is the total for create order transactions",
			expected: []string{"CREATE_ORDER"},
		},
		{
			name:     "short variation",
			query:    "show me the change transactions",
			expected: []string{"CHANGE_ORDER"},
		},
		{
			name:     "multiple types",
			query:    "compare create order and trans out totals",
			expected: []string{"CREATE_ORDER", "TRANS_OUT"},
		},
		{
			name:     "refund phrasing",
			query:    "refund in summary please",
			expected: []string{"REFUND_TRANS_IN"},
		},
		{
			name:     "case insensitive",
			query:    "FULFILLED SALE totals",
			expected: []string{"FULFILLED_SALE"},
		},
		{
			name:     "whole word boundary respected",
			query:    "the recreated report looks wrong",
			expected: []string{},
		},
		{
			name:     "no mention",
			query:    "what is the payment status",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := ExtractTypes(tt.query)
			if len(tt.expected) == 0 {
				assert.Empty(t, found)
				return
			}
			assert.Equal(t, tt.expected, found)
		})
	}
}

func TestExtractTypes_Deduplicates(t *testing.T) {
	found := ExtractTypes("create order, CREATE_ORDER and also createorder")
	assert.Equal(t, []string{"CREATE_ORDER"}, found)
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"canonical", "CREATE_ORDER", "CREATE_ORDER", true},
		{"lowercase with spaces", "create order", "CREATE_ORDER", true},
		{"padded", "  trans in  ", "TRANS_IN", true},
		{"unknown", "MYSTERY_EVENT", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeType(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMentionsKnownType(t *testing.T) {
	assert.True(t, MentionsKnownType("total for change order today"))
	assert.True(t, MentionsKnownType("anything with trans_in in it"))
	assert.False(t, MentionsKnownType("payment status please"))
}
