package domain

import "time"

// AuditStage identifies which stage of a question-answer cycle an event
// was recorded at.
type AuditStage string

const (
	StageCacheLookup AuditStage = "cache_lookup"
	StageGeneration  AuditStage = "generation"
	StageValidation  AuditStage = "validation"
	StageExecution   AuditStage = "execution"
	StageCompleted   AuditStage = "completed"
	StageFailed      AuditStage = "failed"
)

// AuditEvent is one append-only record of cycle progress. Events carry the
// cycle ID so concurrent cycles interleave safely in a shared sink.
type AuditEvent struct {
	// CycleID identifies the question-answer cycle.
	CycleID string

	// Stage is the pipeline stage the event describes.
	Stage AuditStage

	// Question is the caller's literal question.
	Question string

	// Detail is stage-specific free text (query, rejection reason, ...).
	Detail string

	// At is when the event was recorded.
	At time.Time
}
