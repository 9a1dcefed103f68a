package services

import (
	"fmt"
	"time"

	"github.com/clinigraph/clinigraph/internal/core/domain"
)

// Normalize rewrites a result set into encoding-neutral primitives:
// temporal values become ISO-8601 strings, typed collections become plain
// ordered sequences, and nested mappings are rewritten recursively. The
// function is pure and idempotent - normalizing an already-normalized set
// returns an equal set.
func Normalize(rs *domain.ResultSet) ([]domain.Row, error) {
	if rs == nil {
		return nil, domain.NewTaxonomyError(domain.KindNormalization, "nil result set", nil)
	}

	rows := make([]domain.Row, len(rs.Rows))
	for i, row := range rs.Rows {
		values := make([]any, len(row.Values))
		for j, v := range row.Values {
			nv, err := NormalizeValue(v)
			if err != nil {
				return nil, domain.NewTaxonomyError(domain.KindNormalization,
					fmt.Sprintf("row %d field %q", i, fieldName(row, j)), err)
			}
			values[j] = nv
		}
		rows[i] = domain.Row{Keys: row.Keys, Values: values}
	}
	return rows, nil
}

func fieldName(row domain.Row, i int) string {
	if i < len(row.Keys) {
		return row.Keys[i]
	}
	return fmt.Sprintf("#%d", i)
}

// NormalizeValue rewrites one value into the encoding-neutral set:
// nil, bool, int64, float64, string, []any, map[string]any.
func NormalizeValue(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case bool, string:
		return val, nil
	case int64:
		return val, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case time.Time:
		return val.Format(time.RFC3339Nano), nil
	case time.Duration:
		return val.String(), nil
	case []byte:
		return string(val), nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			nv, err := NormalizeValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out, nil
	case []float64:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			nv, err := NormalizeValue(item)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
