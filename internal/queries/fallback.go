package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	cerrors "report-query-engine/internal/common/errors"
	"report-query-engine/internal/common/genai"
	"report-query-engine/internal/intent"
	"report-query-engine/internal/report"
)

// planSchema gates what the GenAI planner may ask for before the plan touches
// the document.
var planSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"extract"},
	"properties": map[string]interface{}{
		"extract": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]interface{}{"type": "string"},
		},
		"filter": map[string]interface{}{
			"type":                 "object",
			"additionalProperties": map[string]interface{}{"type": "string"},
		},
	},
}

func (e *Engine) fallbackQuery(ctx context.Context, doc *report.Document, query string) *Envelope {
	if e.ai == nil {
		return ErrorEnvelope(cerrors.NewGenAICallFailedError("fallback-plan", errors.New("no GenAI completer configured")))
	}

	reply, err := e.ai.Complete(ctx, buildPlanPrompt(query))
	if e.obs != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		e.obs.RecordGenAICall(ctx, "fallback-plan", status)
	}
	if err != nil {
		if errors.Is(err, genai.ErrGenAITimeout) {
			return ErrorEnvelope(cerrors.NewGenAITimeoutError("fallback-plan"))
		}
		return ErrorEnvelope(cerrors.NewGenAICallFailedError("fallback-plan", err))
	}

	plan, err := parsePlan(intent.StripCodeFences(reply))
	if err != nil {
		e.logger.Warn("fallback plan rejected", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return ErrorEnvelope(cerrors.NewPlanParseFailureError(err))
	}

	flat, err := e.flatten(doc)
	if err != nil {
		return ErrorEnvelope(cerrors.NewDepthExceededError(e.config.MaxFlattenDepth))
	}

	extracted := []FallbackMatch{}
	for _, key := range report.SortedKeys(flat) {
		if planMatchesKey(plan, key) {
			extracted = append(extracted, FallbackMatch{Key: key, Value: flat[key]})
		}
	}

	return &Envelope{
		QueryType: QueryTypeFallbackAI,
		Results: FallbackResult{
			Plan:      plan,
			Extracted: extracted,
		},
		Metadata: map[string]interface{}{
			"aiPlan":       plan,
			"totalMatches": len(extracted),
		},
	}
}

func buildPlanPrompt(query string) string {
	return strings.Join([]string{
		"You are a JSON query planner. Given a user's natural language question, return a structured query plan.",
		"",
		"Use this structure:",
		"{",
		`  "extract": ["<field1>", "<field2>"],`,
		`  "filter": {`,
		`    "<fieldName>": "<filterValue>"`,
		"  }",
		"}",
		"",
		fmt.Sprintf("Query: %q", query),
	}, "\n")
}

func parsePlan(raw string) (FallbackPlan, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return FallbackPlan{}, fmt.Errorf("decode plan: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(planSchema),
		gojsonschema.NewGoLoader(payload),
	)
	if err != nil {
		return FallbackPlan{}, fmt.Errorf("validate plan: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return FallbackPlan{}, fmt.Errorf("invalid plan: %s", strings.Join(details, "; "))
	}

	var plan FallbackPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return FallbackPlan{}, fmt.Errorf("decode plan: %w", err)
	}
	return plan, nil
}

func planMatchesKey(plan FallbackPlan, key string) bool {
	lowered := strings.ToLower(key)
	for _, field := range plan.Extract {
		if strings.Contains(lowered, strings.ToLower(field)) {
			return true
		}
	}
	return false
}
