// Package driving defines the interfaces that external actors use to call
// INTO core services.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// The MCP server and CLI adapters depend on these interfaces; core
// services implement them.
package driving
