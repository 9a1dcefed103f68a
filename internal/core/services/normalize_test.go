package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinigraph/clinigraph/internal/core/domain"
)

func TestNormalizeValue(t *testing.T) {
	when := time.Date(2180, 5, 6, 22, 23, 0, 0, time.UTC)

	tests := []struct {
		name     string
		input    any
		expected any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"string", "x", "x"},
		{"int64", int64(5), int64(5)},
		{"int widens", int(5), int64(5)},
		{"int32 widens", int32(5), int64(5)},
		{"float64", 1.5, 1.5},
		{"float32 widens", float32(0.5), float64(0.5)},
		{"time to ISO-8601", when, "2180-05-06T22:23:00Z"},
		{"duration to string", 90 * time.Second, "1m30s"},
		{"bytes to string", []byte("abc"), "abc"},
		{"string slice", []string{"a", "b"}, []any{"a", "b"}},
		{"float slice", []float64{1, 2}, []any{1.0, 2.0}},
		{"nested slice", []any{int32(1), when}, []any{int64(1), "2180-05-06T22:23:00Z"}},
		{
			"nested map",
			map[string]any{"t": when, "n": int(3)},
			map[string]any{"t": "2180-05-06T22:23:00Z", "n": int64(3)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NormalizeValue(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestNormalizeValue_UnsupportedType(t *testing.T) {
	type opaque struct{ x int }

	_, err := NormalizeValue(opaque{x: 1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported value type")
}

func TestNormalize_Idempotent(t *testing.T) {
	rs := &domain.ResultSet{
		Rows: []domain.Row{
			{
				Keys: []string{"name", "admitted", "meta"},
				Values: []any{
					"alice",
					time.Date(2201, 1, 2, 3, 4, 5, 0, time.UTC),
					map[string]any{"count": int32(2)},
				},
			},
		},
	}

	first, err := Normalize(rs)
	require.NoError(t, err)

	second, err := Normalize(&domain.ResultSet{Rows: first})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalize_NilResultSet(t *testing.T) {
	_, err := Normalize(nil)

	require.Error(t, err)
	assert.Equal(t, domain.KindNormalization, domain.KindOf(err))
}

func TestNormalize_ErrorNamesField(t *testing.T) {
	rs := &domain.ResultSet{
		Rows: []domain.Row{
			{Keys: []string{"good", "bad"}, Values: []any{"ok", make(chan int)}},
		},
	}

	_, err := Normalize(rs)

	require.Error(t, err)
	assert.Equal(t, domain.KindNormalization, domain.KindOf(err))
	assert.Contains(t, err.Error(), `"bad"`)
}

func TestNormalize_PreservesRowAndKeyOrder(t *testing.T) {
	rs := &domain.ResultSet{
		Rows: []domain.Row{
			{Keys: []string{"b", "a"}, Values: []any{int64(2), int64(1)}},
			{Keys: []string{"b", "a"}, Values: []any{int64(4), int64(3)}},
		},
	}

	rows, err := Normalize(rs)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"b", "a"}, rows[0].Keys)
	assert.Equal(t, []any{int64(2), int64(1)}, rows[0].Values)
	assert.Equal(t, []any{int64(4), int64(3)}, rows[1].Values)
}
