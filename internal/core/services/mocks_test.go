package services

import (
	"context"

	"github.com/clinigraph/clinigraph/internal/core/domain"
	"github.com/clinigraph/clinigraph/internal/core/ports/driven"
)

// mockGraphStore implements driven.GraphStore for testing.
type mockGraphStore struct {
	resultSet *domain.ResultSet
	summary   *domain.SchemaSummary
	execErr   error
	introErr  error

	lastQuery      string
	lastParams     map[string]any
	executeCalls   int
	introspectCalls int
}

func (m *mockGraphStore) ExecuteRead(
	_ context.Context, query string, params map[string]any,
) (*domain.ResultSet, error) {
	m.executeCalls++
	m.lastQuery = query
	m.lastParams = params
	if m.execErr != nil {
		return nil, m.execErr
	}
	if m.resultSet != nil {
		return m.resultSet, nil
	}
	return &domain.ResultSet{}, nil
}

func (m *mockGraphStore) IntrospectSchema(_ context.Context) (*domain.SchemaSummary, error) {
	m.introspectCalls++
	if m.introErr != nil {
		return nil, m.introErr
	}
	if m.summary != nil {
		return m.summary, nil
	}
	return &domain.SchemaSummary{}, nil
}

func (m *mockGraphStore) Ping(_ context.Context) error {
	return nil
}

func (m *mockGraphStore) Close(_ context.Context) error {
	return nil
}

// mockEmbedder implements driven.Embedder for testing.
type mockEmbedder struct {
	vector   []float32
	err      error
	lastText string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.lastText = text
	if m.err != nil {
		return nil, m.err
	}
	return m.vector, nil
}

// mockGenEngine implements driven.QueryGenerator for testing.
type mockGenEngine struct {
	response string
	err      error

	lastMessages []driven.ChatMessage
	lastOpts     driven.CompletionOptions
	calls        int
}

func (m *mockGenEngine) Complete(
	_ context.Context, messages []driven.ChatMessage, opts driven.CompletionOptions,
) (string, error) {
	m.calls++
	m.lastMessages = messages
	m.lastOpts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockGenEngine) ModelName() string {
	return "mock-model"
}

func (m *mockGenEngine) Ping(_ context.Context) error {
	return nil
}

// mockQueryCache implements driven.QueryCache for testing.
type mockQueryCache struct {
	entries map[domain.CacheKey]domain.CacheEntry

	lookupErr   error
	storeErr    error
	storeCalls  int
	lookupCalls int
}

func newMockQueryCache() *mockQueryCache {
	return &mockQueryCache{entries: make(map[domain.CacheKey]domain.CacheEntry)}
}

func (m *mockQueryCache) Lookup(key domain.CacheKey) (*domain.CacheEntry, error) {
	m.lookupCalls++
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	entry, ok := m.entries[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return &entry, nil
}

func (m *mockQueryCache) Store(key domain.CacheKey, entry domain.CacheEntry) error {
	m.storeCalls++
	if m.storeErr != nil {
		return m.storeErr
	}
	m.entries[key] = entry
	return nil
}

func (m *mockQueryCache) InvalidateAll() error {
	m.entries = make(map[domain.CacheKey]domain.CacheEntry)
	return nil
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}

// mockAuditSink implements driven.AuditSink for testing.
type mockAuditSink struct {
	events []domain.AuditEvent
}

func (m *mockAuditSink) Append(event domain.AuditEvent) {
	m.events = append(m.events, event)
}

func (m *mockAuditSink) stages() []domain.AuditStage {
	out := make([]domain.AuditStage, len(m.events))
	for i, ev := range m.events {
		out[i] = ev.Stage
	}
	return out
}
