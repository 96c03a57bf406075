package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	cerrors "report-query-engine/internal/common/errors"
	"report-query-engine/internal/common/genai"
	"report-query-engine/internal/common/logger"
	"report-query-engine/internal/common/observability"
	"report-query-engine/internal/queries"
)

// Filter narrows a stored base result with a free-text follow-up query. The
// base envelope is never mutated; every outcome is a fresh envelope.
type Filter struct {
	ai     genai.Completer
	obs    *observability.Observability
	logger logger.Logger
}

// NewFilter builds the follow-up filter. obs may be nil.
func NewFilter(ai genai.Completer, obs *observability.Observability, log logger.Logger) *Filter {
	return &Filter{
		ai:  ai,
		obs: obs,
		logger: log.With(map[string]interface{}{
			"component": "followup-filter",
		}),
	}
}

// Apply sends the base result set and the filter text to GenAI and parses the
// reply back into a result list. Only list-shaped base results are filterable.
func (f *Filter) Apply(ctx context.Context, base *queries.Envelope, baseQuery, filterQuery string) *queries.Envelope {
	items, err := resultItems(base)
	if err != nil {
		return queries.ErrorEnvelope(cerrors.NewFilterNotApplicableError(base.QueryType))
	}

	if f.ai == nil {
		return queries.ErrorEnvelope(cerrors.NewGenAICallFailedError("followup-filter", errors.New("no GenAI completer configured")))
	}

	reply, err := f.ai.Complete(ctx, buildFilterPrompt(items, filterQuery))
	if f.obs != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		f.obs.RecordGenAICall(ctx, "extended-filter", status)
	}
	if err != nil {
		if errors.Is(err, genai.ErrGenAITimeout) {
			return queries.ErrorEnvelope(cerrors.NewGenAITimeoutError("followup-filter"))
		}
		return queries.ErrorEnvelope(cerrors.NewGenAICallFailedError("followup-filter", err))
	}

	filtered, err := parseFilteredArray(reply)
	if err != nil {
		f.logger.Warn("follow-up filter reply rejected", map[string]interface{}{
			"filterQuery": filterQuery,
			"error":       err.Error(),
		})
		return queries.ErrorEnvelope(cerrors.NewFilterParseFailureError(err))
	}

	return &queries.Envelope{
		QueryType: base.QueryType,
		Results:   filtered,
		Metadata: map[string]interface{}{
			"extendedSearchApplied": true,
			"extendedFilterQuery":   filterQuery,
			"extendedResultCount":   len(filtered),
			"baseQuery":             baseQuery,
		},
	}
}

// resultItems round-trips the base results through JSON, which both copies
// them and proves they form an array.
func resultItems(base *queries.Envelope) ([]interface{}, error) {
	raw, err := json.Marshal(base.Results)
	if err != nil {
		return nil, fmt.Errorf("marshal base results: %w", err)
	}
	var items []interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("base results are not a list: %w", err)
	}
	return items, nil
}

func buildFilterPrompt(items []interface{}, filterQuery string) string {
	encoded, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		encoded = []byte("[]")
	}
	return strings.Join([]string{
		"You are a JSON filter engine.",
		"",
		"Given:",
		"- A JSON array of objects",
		`- A human query like "where transactionType is CREATE_ORDER"`,
		"",
		"Filter and return only the matching records.",
		"",
		fmt.Sprintf("User Query: %q", filterQuery),
		"",
		"JSON Input:",
		string(encoded),
		"",
		"Return ONLY the filtered JSON array (valid JSON, no extra explanation).",
	}, "\n")
}

// parseFilteredArray reduces the reply to the span between the first '[' and
// the last ']' so surrounding prose or fences do not break parsing.
func parseFilteredArray(reply string) ([]interface{}, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("reply contains no JSON array")
	}

	var filtered []interface{}
	if err := json.Unmarshal([]byte(reply[start:end+1]), &filtered); err != nil {
		return nil, fmt.Errorf("decode filtered array: %w", err)
	}
	return filtered, nil
}
