package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"report-query-engine/internal/common/genai"
	"report-query-engine/internal/common/logger"
	"report-query-engine/internal/intent"
	"report-query-engine/internal/queries"
)

type stubCompleter struct {
	reply      string
	err        error
	calls      int
	lastPrompt string
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func errorCode(t *testing.T, env *queries.Envelope) string {
	t.Helper()
	body, ok := env.Results.(map[string]interface{})
	assert.True(t, ok, "ERROR envelope results must be a map")
	code, _ := body["code"].(string)
	return code
}

func listBase() *queries.Envelope {
	return &queries.Envelope{
		QueryType: intent.TypeMTLStatus,
		Results: []queries.MTLStatusRecord{
			{TransactionType: "CREATE_ORDER", InternalStatus: "SUCCESS", EventID: "evt-1", OrderNo: "ORD-1"},
			{TransactionType: "CHANGE_ORDER", InternalStatus: "FAILED", EventID: "evt-2", OrderNo: "ORD-2"},
		},
		Metadata: map[string]interface{}{"totalTransactions": 2},
	}
}

func TestFilterApply(t *testing.T) {
	ai := &stubCompleter{reply: "Here are the matches:\n```json\n[{\"transactionType\": \"FAILED\"}]\n```"}
	f := NewFilter(ai, nil, logger.NewNoOpLogger())
	base := listBase()

	env := f.Apply(context.Background(), base, "mtl status", "only the failed ones")

	assert.Equal(t, intent.TypeMTLStatus, env.QueryType)
	filtered, ok := env.Results.([]interface{})
	assert.True(t, ok)
	assert.Len(t, filtered, 1)

	assert.Equal(t, true, env.Metadata["extendedSearchApplied"])
	assert.Equal(t, "only the failed ones", env.Metadata["extendedFilterQuery"])
	assert.Equal(t, 1, env.Metadata["extendedResultCount"])
	assert.Equal(t, "mtl status", env.Metadata["baseQuery"])

	// The prompt carries the base records and the filter text.
	assert.Contains(t, ai.lastPrompt, `"evt-2"`)
	assert.Contains(t, ai.lastPrompt, `"only the failed ones"`)
	assert.Contains(t, ai.lastPrompt, "Return ONLY the filtered JSON array")
}

func TestFilterApply_BaseIsNeverMutated(t *testing.T) {
	ai := &stubCompleter{reply: `[]`}
	f := NewFilter(ai, nil, logger.NewNoOpLogger())
	base := listBase()

	env := f.Apply(context.Background(), base, "mtl status", "drop everything")

	assert.Len(t, env.Results, 0)
	assert.Len(t, base.Results, 2)
	assert.Equal(t, 2, base.Metadata["totalTransactions"])
}

func TestFilterApply_NonListBase(t *testing.T) {
	ai := &stubCompleter{}
	f := NewFilter(ai, nil, logger.NewNoOpLogger())
	base := &queries.Envelope{
		QueryType: intent.TypeSumLineTotal,
		Results:   queries.SumLineTotalsResult{Sum: 30, Count: 2},
	}

	env := f.Apply(context.Background(), base, "sum", "only big ones")

	assert.True(t, env.IsError())
	assert.Equal(t, "FILTER_NOT_APPLICABLE", errorCode(t, env))
	assert.Equal(t, 0, ai.calls, "non-list bases never reach GenAI")
}

func TestFilterApply_UnparseableReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"no array at all", "I cannot filter that."},
		{"broken json", `[{"transactionType": }]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter(&stubCompleter{reply: tt.reply}, nil, logger.NewNoOpLogger())

			env := f.Apply(context.Background(), listBase(), "mtl status", "failed only")

			assert.True(t, env.IsError())
			assert.Equal(t, "FILTER_PARSE_FAILURE", errorCode(t, env))
		})
	}
}

func TestFilterApply_CompleterFailures(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode string
	}{
		{"timeout", fmt.Errorf("%w: deadline hit", genai.ErrGenAITimeout), "GENAI_TIMEOUT"},
		{"transport failure", errors.New("connection refused"), "GENAI_CALL_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter(&stubCompleter{err: tt.err}, nil, logger.NewNoOpLogger())

			env := f.Apply(context.Background(), listBase(), "mtl status", "failed only")

			assert.True(t, env.IsError())
			assert.Equal(t, tt.expectedCode, errorCode(t, env))
		})
	}
}

func TestParseFilteredArray_SurroundingProse(t *testing.T) {
	filtered, err := parseFilteredArray("Sure thing!\n[1, 2, 3]\nHope that helps.")
	assert.NoError(t, err)
	assert.Len(t, filtered, 3)
}

func TestBuildFilterPrompt_EncodesRecords(t *testing.T) {
	prompt := buildFilterPrompt([]interface{}{
		map[string]interface{}{"orderNo": "ORD-1"},
	}, "where orderNo is ORD-1")

	assert.True(t, strings.Contains(prompt, `"orderNo": "ORD-1"`))
	assert.True(t, strings.Contains(prompt, "You are a JSON filter engine."))
}
