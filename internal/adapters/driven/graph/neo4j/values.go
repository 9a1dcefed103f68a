package neo4j

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// unwrapValue converts driver wrapper types into native Go values: nodes
// and relationships become their property maps, driver temporal types
// become time.Time, and collections are unwrapped recursively. Values the
// driver already returns natively (int64, float64, bool, string, time.Time
// for zoned datetimes) pass through unchanged.
func unwrapValue(v any) any {
	switch val := v.(type) {
	case dbtype.Node:
		return unwrapProps(val.Props)
	case dbtype.Relationship:
		return unwrapProps(val.Props)
	case dbtype.Path:
		out := make([]any, 0, len(val.Nodes))
		for _, n := range val.Nodes {
			out = append(out, unwrapProps(n.Props))
		}
		return out
	case dbtype.Date:
		return val.Time()
	case dbtype.LocalDateTime:
		return val.Time()
	case dbtype.LocalTime:
		return val.Time()
	case dbtype.Time:
		return val.Time()
	case dbtype.Duration:
		return val.String()
	case dbtype.Point2D:
		return map[string]any{"x": val.X, "y": val.Y, "srid": int64(val.SpatialRefId)}
	case dbtype.Point3D:
		return map[string]any{"x": val.X, "y": val.Y, "z": val.Z, "srid": int64(val.SpatialRefId)}
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = unwrapValue(item)
		}
		return out
	case map[string]any:
		return unwrapProps(val)
	default:
		return v
	}
}

func unwrapProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = unwrapValue(v)
	}
	return out
}
