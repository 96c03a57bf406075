package intent

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xeipuuv/gojsonschema"

	"report-query-engine/internal/common/genai"
	"report-query-engine/internal/common/logger"
	"report-query-engine/internal/common/observability"
)

// classificationSchema validates GenAI classification replies before they are
// trusted over the rule tier.
var classificationSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"type", "handler", "confidence"},
	"properties": map[string]interface{}{
		"type": map[string]interface{}{
			"type": "string",
			"enum": toInterfaceSlice(KnownTypes()),
		},
		"handler": map[string]interface{}{
			"type": "string",
			"enum": toInterfaceSlice(KnownHandlers()),
		},
		"confidence": map[string]interface{}{
			"type":    "number",
			"minimum": 0,
			"maximum": 1,
		},
		"reasoning": map[string]interface{}{
			"type": "string",
		},
	},
}

func toInterfaceSlice(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

type EnhancedConfig struct {
	ConfidenceThreshold float64
	CacheTTL            time.Duration
}

// Enhanced layers the GenAI classifier over the rule tier. The rules run
// first; the classifier is consulted only when their confidence does not
// clear the threshold, and every failure path falls back to the rule verdict.
type Enhanced struct {
	config *EnhancedConfig
	ai     genai.Completer
	cache  *redis.Client
	obs    *observability.Observability
	logger logger.Logger
}

// NewEnhanced builds the enhanced recognizer. cache may be nil, which
// disables classification caching; obs may be nil.
func NewEnhanced(config *EnhancedConfig, ai genai.Completer, cache *redis.Client, obs *observability.Observability, log logger.Logger) *Enhanced {
	return &Enhanced{
		config: config,
		ai:     ai,
		cache:  cache,
		obs:    obs,
		logger: log.With(map[string]interface{}{
			"component": "intent-recognizer",
		}),
	}
}

func (e *Enhanced) Recognize(ctx context.Context, query string) Classification {
	rule := Recognize(query)
	if rule.Confidence > e.config.ConfidenceThreshold {
		return rule
	}

	cacheKey := buildCacheKey(query)

	if e.cache != nil {
		if cached, err := e.cache.Get(ctx, cacheKey).Result(); err == nil {
			if c, err := parseClassification(cached); err == nil {
				c.Source = "cache"
				return c
			}
			// Poisoned entry, drop it and fall through to the classifier.
			e.cache.Del(ctx, cacheKey)
		}
	}

	reply, err := e.ai.Complete(ctx, buildClassifyPrompt(query))
	if e.obs != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		e.obs.RecordGenAICall(ctx, "classify-intent", status)
	}
	if err != nil {
		e.logger.Warn("classifier unavailable, keeping rule verdict", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return rule
	}

	c, err := parseClassification(StripCodeFences(reply))
	if err != nil {
		e.logger.Warn("classifier reply rejected, keeping rule verdict", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return rule
	}
	c.Source = "genai"

	if e.cache != nil {
		if encoded, err := json.Marshal(c); err == nil {
			e.cache.Set(ctx, cacheKey, encoded, e.config.CacheTTL)
		}
	}

	e.logger.Info("query classified by genai", map[string]interface{}{
		"type":       c.Type,
		"handler":    c.Handler,
		"confidence": c.Confidence,
	})

	return c
}

func buildCacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return fmt.Sprintf("intent:classify:%x", sum[:16])
}

func buildClassifyPrompt(query string) string {
	parts := []string{
		"You are a query classifier. Given a user query, determine which of these predefined query types it most closely matches:",
		"",
		"AVAILABLE QUERY TYPES:",
	}
	for _, p := range queryPatterns {
		parts = append(parts, fmt.Sprintf("%s: %s (Handler: %s, Keywords: %s)",
			p.queryType, p.description, p.handler, strings.Join(p.keywords, ", ")))
	}
	parts = append(parts,
		"",
		fmt.Sprintf("User Query: %q", query),
		"",
		"Return a JSON response with this exact structure:",
		`{"type": "QUERY_TYPE", "handler": "handlerFunction", "confidence": 0.95, "reasoning": "Why this type was selected"}`,
		"",
		"Rules:",
		"- confidence should be between 0.0 and 1.0",
		fmt.Sprintf("- type should be one of: %s", strings.Join(KnownTypes(), ", ")),
		`- If no good match (confidence < 0.3), use type "UNKNOWN" and handler "fallbackQuery"`,
		"- Be flexible with synonyms and variations",
		"- Focus on the main intent of the query",
	)
	return strings.Join(parts, "\n")
}

func parseClassification(raw string) (Classification, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return Classification{}, fmt.Errorf("decode classification: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(classificationSchema),
		gojsonschema.NewGoLoader(payload),
	)
	if err != nil {
		return Classification{}, fmt.Errorf("validate classification: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return Classification{}, fmt.Errorf("invalid classification: %s", strings.Join(details, "; "))
	}

	var c Classification
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Classification{}, fmt.Errorf("decode classification: %w", err)
	}

	// The handler decides dispatch; it must agree with the declared type.
	if knownHandlers[c.Handler] != c.Type {
		return Classification{}, fmt.Errorf("handler %s does not serve type %s", c.Handler, c.Type)
	}

	return c, nil
}

// StripCodeFences removes a markdown code fence wrapper from a GenAI reply.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, "```"); i >= 0 {
		text = text[i+3:]
		text = strings.TrimPrefix(text, "json")
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
	}
	return strings.TrimSpace(text)
}
