// Package session keeps per-conversation query state: the parsed report,
// the stored base result, and the follow-up filtering flow on top of it.
package session

import (
	"sync"
	"time"

	"report-query-engine/internal/intent"
	"report-query-engine/internal/queries"
	"report-query-engine/internal/report"
)

// Session is one conversation over one report document. The first successful
// query becomes the base result; later queries filter it until Reset.
type Session struct {
	ID  string
	doc *report.Document

	mu         sync.Mutex
	busy       bool
	generation uint64
	baseQuery  string
	baseResult *queries.Envelope
	createdAt  time.Time
	lastUsed   time.Time
}

// HasBase reports whether a base result is stored.
func (s *Session) HasBase() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseResult != nil
}

// BaseQuery returns the query whose result is the current base.
func (s *Session) BaseQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseQuery
}

// Reset drops the base state. The generation bump discards any in-flight
// reply that started before the reset.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseQuery = ""
	s.baseResult = nil
	s.generation++
	s.lastUsed = time.Now()
}

// AskResponse is what one query returns to the caller.
type AskResponse struct {
	SessionID      string                 `json:"sessionId"`
	Query          string                 `json:"query"`
	FollowUp       bool                   `json:"followUp"`
	Classification *intent.Classification `json:"classification,omitempty"`
	Result         *queries.Envelope      `json:"result"`
}
