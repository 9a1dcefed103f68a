// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - GraphStore: Read-only query execution and schema introspection
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - QueryGenerator: Generation-engine access. Without it, natural-language
//     querying is disabled; fixed-shape tools keep working.
//   - QueryCache: Generated-query caching. Without it, every question pays
//     the full generation cost.
//   - PromptStore: Customisable prompt templates. Without it, embedded
//     defaults are used.
//   - AuditSink: Per-cycle event recording. Without it, events are dropped.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
