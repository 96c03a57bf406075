// Package queries executes the extraction routines behind each recognized
// query type and wraps their output in a uniform result envelope.
package queries

import (
	"time"

	cerrors "report-query-engine/internal/common/errors"
)

// Envelope query types beyond the recognizer's closed set.
const (
	QueryTypeFallbackAI = "FALLBACK_AI"
	QueryTypeError      = "ERROR"
)

// Envelope is the uniform result shape every routine returns.
type Envelope struct {
	QueryType string                 `json:"queryType"`
	Results   interface{}            `json:"results"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// IsError reports whether the envelope carries a failure instead of results.
func (e *Envelope) IsError() bool {
	return e != nil && e.QueryType == QueryTypeError
}

// ErrorEnvelope converts a StandardError into an ERROR envelope.
func ErrorEnvelope(stdErr *cerrors.StandardError) *Envelope {
	return &Envelope{
		QueryType: QueryTypeError,
		Results: map[string]interface{}{
			"error":   stdErr.Message,
			"code":    string(stdErr.Code),
			"details": stdErr.Details,
		},
		Metadata: map[string]interface{}{
			"timestamp": stdErr.Timestamp.UTC().Format(time.RFC3339),
		},
	}
}
