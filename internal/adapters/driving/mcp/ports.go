package mcp

import (
	"github.com/clinigraph/clinigraph/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer runs natural-language question-answer cycles.
	Answer driving.AnswerService

	// Schema exposes the graph schema summary.
	Schema driving.SchemaService

	// Record provides the fixed-shape EHR retrieval tools.
	Record driving.RecordService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.Record == nil {
		return ErrMissingRecordService
	}
	// Schema is optional; the schema tool reports unavailability.
	return nil
}
