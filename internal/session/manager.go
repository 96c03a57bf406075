package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	cerrors "report-query-engine/internal/common/errors"
	"report-query-engine/internal/common/logger"
	"report-query-engine/internal/intent"
	"report-query-engine/internal/queries"
	"report-query-engine/internal/report"
)

// Recognizer is the classification port the manager depends on.
type Recognizer interface {
	Recognize(ctx context.Context, query string) intent.Classification
}

// Config carries the manager's lifecycle tunables.
type Config struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// Manager owns every live session and runs queries against them.
type Manager struct {
	config     *Config
	recognizer Recognizer
	engine     *queries.Engine
	filter     *Filter
	logger     logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(config *Config, recognizer Recognizer, engine *queries.Engine, filter *Filter, log logger.Logger) *Manager {
	return &Manager{
		config:     config,
		recognizer: recognizer,
		engine:     engine,
		filter:     filter,
		logger: log.With(map[string]interface{}{
			"component": "session-manager",
		}),
		sessions: make(map[string]*Session),
	}
}

// Create registers a new session over a parsed document.
func (m *Manager) Create(doc *report.Document) *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		doc:       doc,
		createdAt: now,
		lastUsed:  now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("session created", map[string]interface{}{
		"sessionId": s.ID,
	})
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, cerrors.NewSessionNotFoundError(id)
	}
	return s, nil
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Ask runs one query against a session. Without a stored base the query is
// classified and dispatched, and a non-error envelope becomes the base. With
// a base the query acts as a follow-up filter over it.
func (m *Manager) Ask(ctx context.Context, id, query string) (*AskResponse, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, cerrors.NewSessionBusyError(id)
	}
	s.busy = true
	gen := s.generation
	baseQuery := s.baseQuery
	baseResult := s.baseResult
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.lastUsed = time.Now()
		s.mu.Unlock()
	}()

	if baseResult != nil {
		env := m.filter.Apply(ctx, baseResult, baseQuery, query)
		return &AskResponse{
			SessionID: s.ID,
			Query:     query,
			FollowUp:  true,
			Result:    env,
		}, nil
	}

	c := m.recognizer.Recognize(ctx, query)
	env := m.engine.Dispatch(ctx, c.Handler, query, s.doc)

	// Failures are returned but never become the session's base.
	if !env.IsError() {
		s.mu.Lock()
		if s.generation == gen {
			s.baseQuery = query
			s.baseResult = env
		}
		s.mu.Unlock()
	}

	return &AskResponse{
		SessionID:      s.ID,
		Query:          query,
		Classification: &c,
		Result:         env,
	}, nil
}

// Reset clears a session's base state.
func (m *Manager) Reset(id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.Reset()
	return nil
}

// StartSweeper evicts idle sessions until the context is canceled.
func (m *Manager) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.config.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweepIdle()
			}
		}
	}()
}

func (m *Manager) sweepIdle() {
	cutoff := time.Now().Add(-m.config.IdleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := !s.busy && s.lastUsed.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			m.logger.Info("idle session evicted", map[string]interface{}{
				"sessionId": id,
			})
		}
	}
}
