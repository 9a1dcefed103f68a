package neo4j

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/clinigraph/clinigraph/internal/core/domain"
	"github.com/clinigraph/clinigraph/internal/logger"
)

// Introspection queries. nodeTypeProperties and SHOW INDEXES are available
// on Neo4j 4.3+; schema.visualization degrades to relationshipTypes when
// the procedure is missing or restricted.
const (
	queryNodeProperties = `CALL db.schema.nodeTypeProperties()
YIELD nodeLabels, propertyName, propertyTypes
RETURN nodeLabels, propertyName, propertyTypes`

	queryIndexes = `SHOW INDEXES
YIELD labelsOrTypes, properties, entityType
RETURN labelsOrTypes, properties, entityType`

	queryVisualization = `CALL db.schema.visualization()
YIELD nodes, relationships
RETURN nodes, relationships`

	queryRelTypes = `CALL db.relationshipTypes()
YIELD relationshipType
RETURN relationshipType`
)

// IntrospectSchema builds a schema snapshot from the store's own
// introspection procedures: labels with typed properties, per-property
// index flags, and relationship types with endpoint labels.
func (s *Store) IntrospectSchema(ctx context.Context) (*domain.SchemaSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	labelProps, err := s.collectNodeProperties(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("neo4j: introspect node properties: %w", err)
	}

	indexed := s.collectIndexes(ctx, session)
	relationships := s.collectRelationships(ctx, session)

	labels := make([]domain.NodeLabel, 0, len(labelProps))
	for name, props := range labelProps {
		nl := domain.NodeLabel{Name: name}
		propNames := make([]string, 0, len(props))
		for p := range props {
			propNames = append(propNames, p)
		}
		sort.Strings(propNames)
		for _, p := range propNames {
			nl.Properties = append(nl.Properties, domain.Property{
				Name:    p,
				Indexed: indexed[name][p],
				Type:    props[p],
			})
		}
		labels = append(labels, nl)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Name < labels[j].Name })
	sort.Slice(relationships, func(i, j int) bool {
		if relationships[i].Name != relationships[j].Name {
			return relationships[i].Name < relationships[j].Name
		}
		return relationships[i].StartLabel < relationships[j].StartLabel
	})

	return &domain.SchemaSummary{
		Labels:        labels,
		Relationships: relationships,
		CapturedAt:    time.Now(),
	}, nil
}

// collectNodeProperties maps label -> property -> first reported type.
func (s *Store) collectNodeProperties(
	ctx context.Context, session neo4j.SessionWithContext,
) (map[string]map[string]string, error) {
	records, err := s.collect(ctx, session, queryNodeProperties)
	if err != nil {
		return nil, err
	}

	labelProps := make(map[string]map[string]string)
	for _, rec := range records {
		rawLabels, _ := rec.Get("nodeLabels")
		propName, _ := rec.Get("propertyName")
		propTypes, _ := rec.Get("propertyTypes")

		name, _ := propName.(string)
		typeName := firstString(propTypes)

		for _, rawLabel := range toStrings(rawLabels) {
			if labelProps[rawLabel] == nil {
				labelProps[rawLabel] = make(map[string]string)
			}
			if name != "" {
				labelProps[rawLabel][name] = typeName
			}
		}
	}
	return labelProps, nil
}

// collectIndexes maps label -> property -> true for node indexes.
// Best-effort: older servers without SHOW INDEXES just lose index flags.
func (s *Store) collectIndexes(
	ctx context.Context, session neo4j.SessionWithContext,
) map[string]map[string]bool {
	records, err := s.collect(ctx, session, queryIndexes)
	if err != nil {
		logger.Warn("SHOW INDEXES failed, schema summary carries no index flags: %v", err)
		return nil
	}

	indexed := make(map[string]map[string]bool)
	for _, rec := range records {
		entityType, _ := rec.Get("entityType")
		if et, _ := entityType.(string); et != "NODE" {
			continue
		}
		rawLabels, _ := rec.Get("labelsOrTypes")
		rawProps, _ := rec.Get("properties")
		for _, label := range toStrings(rawLabels) {
			if indexed[label] == nil {
				indexed[label] = make(map[string]bool)
			}
			for _, prop := range toStrings(rawProps) {
				indexed[label][prop] = true
			}
		}
	}
	return indexed
}

// collectRelationships returns relationship types with endpoint labels
// from schema.visualization, degrading to bare type names.
func (s *Store) collectRelationships(
	ctx context.Context, session neo4j.SessionWithContext,
) []domain.RelationshipType {
	records, err := s.collect(ctx, session, queryVisualization)
	if err == nil && len(records) > 0 {
		if rels := relationshipsFromVisualization(records[0]); len(rels) > 0 {
			return rels
		}
	}
	if err != nil {
		logger.Debug("db.schema.visualization unavailable: %v", err)
	}

	records, err = s.collect(ctx, session, queryRelTypes)
	if err != nil {
		logger.Warn("db.relationshipTypes failed, schema summary carries no relationships: %v", err)
		return nil
	}
	rels := make([]domain.RelationshipType, 0, len(records))
	for _, rec := range records {
		raw, _ := rec.Get("relationshipType")
		if name, _ := raw.(string); name != "" {
			rels = append(rels, domain.RelationshipType{Name: name})
		}
	}
	return rels
}

// relationshipsFromVisualization resolves endpoint labels by joining the
// virtual nodes (whose "name" property is the label) against relationship
// endpoints.
func relationshipsFromVisualization(rec *neo4j.Record) []domain.RelationshipType {
	rawNodes, _ := rec.Get("nodes")
	rawRels, _ := rec.Get("relationships")

	labelByID := make(map[string]string)
	if nodes, ok := rawNodes.([]any); ok {
		for _, raw := range nodes {
			node, ok := raw.(dbtype.Node)
			if !ok {
				continue
			}
			if name, ok := node.Props["name"].(string); ok {
				labelByID[node.ElementId] = name
			}
		}
	}

	var out []domain.RelationshipType
	if rels, ok := rawRels.([]any); ok {
		for _, raw := range rels {
			rel, ok := raw.(dbtype.Relationship)
			if !ok {
				continue
			}
			out = append(out, domain.RelationshipType{
				Name:       rel.Type,
				StartLabel: labelByID[rel.StartElementId],
				EndLabel:   labelByID[rel.EndElementId],
			})
		}
	}
	return out
}

// collect runs a read query and gathers its raw records.
func (s *Store) collect(
	ctx context.Context, session neo4j.SessionWithContext, query string,
) ([]*neo4j.Record, error) {
	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*neo4j.Record), nil
}

func toStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func firstString(v any) string {
	items := toStrings(v)
	if len(items) == 0 {
		return ""
	}
	return items[0]
}
