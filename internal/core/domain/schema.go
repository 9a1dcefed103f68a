package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Property describes a single node property and whether the store keeps
// an index on it. Indexed properties are preferred in generated predicates.
type Property struct {
	// Name is the property name as stored in the graph.
	Name string

	// Indexed reports whether the store maintains an index on this property.
	Indexed bool

	// Type is the store-reported value type ("STRING", "DATETIME", ...).
	// Informational only; may be empty.
	Type string
}

// NodeLabel describes one node label and its known properties.
type NodeLabel struct {
	// Name is the label, e.g. "Patient".
	Name string

	// Properties lists the known properties in stable order.
	Properties []Property
}

// RelationshipType describes one relationship type with its endpoints.
type RelationshipType struct {
	// Name is the relationship type, e.g. "HAS_ADMISSION".
	Name string

	// StartLabel is the label at the start of the relationship.
	StartLabel string

	// EndLabel is the label at the end of the relationship.
	EndLabel string
}

// compactPropertyThreshold is the total property count above which the
// rendered summary drops unindexed properties to stay inside the
// generation engine's input budget.
const compactPropertyThreshold = 120

// SchemaSummary is an immutable snapshot of the graph schema: every label
// and relationship type that might appear in a valid query, plus per-property
// index flags. A refresh produces a new snapshot rather than mutating an
// existing one, so concurrent readers never observe a half-updated schema.
type SchemaSummary struct {
	// Labels lists node labels in stable order.
	Labels []NodeLabel

	// Relationships lists relationship types in stable order.
	Relationships []RelationshipType

	// CapturedAt is when the introspection snapshot was taken.
	CapturedAt time.Time
}

// Render produces the compact textual description used as generation
// context. When the schema grows past the compactness threshold, only
// indexed properties are emitted per label.
func (s *SchemaSummary) Render() string {
	total := 0
	for i := range s.Labels {
		total += len(s.Labels[i].Properties)
	}
	indexedOnly := total > compactPropertyThreshold

	var b strings.Builder
	b.WriteString("NODES:\n")
	for i := range s.Labels {
		label := &s.Labels[i]
		names := make([]string, 0, len(label.Properties))
		for _, p := range label.Properties {
			if indexedOnly && !p.Indexed {
				continue
			}
			if p.Indexed {
				names = append(names, p.Name+" (indexed)")
			} else {
				names = append(names, p.Name)
			}
		}
		fmt.Fprintf(&b, "- %s: %s\n", label.Name, strings.Join(names, ", "))
	}

	b.WriteString("\nRELATIONSHIPS:\n")
	for _, rel := range s.Relationships {
		if rel.StartLabel != "" && rel.EndLabel != "" {
			fmt.Fprintf(&b, "- (%s)-[:%s]->(%s)\n", rel.StartLabel, rel.Name, rel.EndLabel)
		} else {
			fmt.Fprintf(&b, "- %s\n", rel.Name)
		}
	}

	return b.String()
}

// Fingerprint returns a stable hash of the rendered summary. Cache entries
// record the fingerprint they were validated against; a changed schema
// forces re-validation of previously cached queries.
func (s *SchemaSummary) Fingerprint() uint64 {
	return xxhash.Sum64String(s.Render())
}
