// Package domain contains the core business types for clinigraph:
// the schema summary, query cache entries, bounded result sets, the
// clinical node models, and the error taxonomy shared by all adapters.
//
// Types in this package have no dependencies on infrastructure. Adapters
// convert to and from these types at the boundary.
package domain
