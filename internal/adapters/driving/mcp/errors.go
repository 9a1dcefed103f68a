// Package mcp provides an MCP (Model Context Protocol) server adapter for
// clinigraph. It exposes the natural-language query pipeline and the
// fixed-shape EHR retrieval tools to AI assistants.
package mcp

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")

// ErrMissingRecordService is returned when the record service is not provided.
var ErrMissingRecordService = errors.New("mcp: record service is required")

// ErrSchemaUnavailable is returned by schema surfaces when no schema
// service was wired in.
var ErrSchemaUnavailable = errors.New("mcp: schema service not configured")
