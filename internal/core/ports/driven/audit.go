package driven

import "github.com/clinigraph/clinigraph/internal/core/domain"

// AuditSink receives append-only events describing question-answer cycle
// progress. The sink is passed into each cycle explicitly rather than
// living as module-level state, so tests and callers can substitute their
// own. Append must be safe for concurrent use.
type AuditSink interface {
	// Append records one event. Implementations must not block the cycle;
	// slow sinks should buffer or drop.
	Append(event domain.AuditEvent)
}
