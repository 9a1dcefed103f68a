package domain

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSummary() *SchemaSummary {
	return &SchemaSummary{
		Labels: []NodeLabel{
			{
				Name: "Patient",
				Properties: []Property{
					{Name: "subject_id", Indexed: true, Type: "STRING"},
					{Name: "gender", Type: "STRING"},
				},
			},
			{
				Name: "Admission",
				Properties: []Property{
					{Name: "hadm_id", Indexed: true, Type: "STRING"},
				},
			},
		},
		Relationships: []RelationshipType{
			{Name: "HAS_ADMISSION", StartLabel: "Patient", EndLabel: "Admission"},
			{Name: "HAS_DIAGNOSIS"},
		},
	}
}

func TestSchemaSummary_Render(t *testing.T) {
	out := testSummary().Render()

	assert.Contains(t, out, "NODES:")
	assert.Contains(t, out, "- Patient: subject_id (indexed), gender")
	assert.Contains(t, out, "RELATIONSHIPS:")
	assert.Contains(t, out, "- (Patient)-[:HAS_ADMISSION]->(Admission)")
	// Relationship without endpoint labels renders bare.
	assert.Contains(t, out, "- HAS_DIAGNOSIS\n")
}

func TestSchemaSummary_Render_CompactsLargeSchemas(t *testing.T) {
	summary := &SchemaSummary{}
	for i := 0; i < 10; i++ {
		label := NodeLabel{Name: fmt.Sprintf("Label%d", i)}
		label.Properties = append(label.Properties, Property{Name: "id", Indexed: true})
		for j := 0; j < 20; j++ {
			label.Properties = append(label.Properties, Property{Name: fmt.Sprintf("prop%d", j)})
		}
		summary.Labels = append(summary.Labels, label)
	}

	out := summary.Render()

	assert.Contains(t, out, "id (indexed)")
	assert.NotContains(t, out, "prop0", "unindexed properties should be dropped past the threshold")
}

func TestSchemaSummary_Fingerprint(t *testing.T) {
	a := testSummary()
	b := testSummary()

	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "equal schemas share a fingerprint")

	b.Labels[0].Properties = append(b.Labels[0].Properties, Property{Name: "dod"})
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint(), "schema change must move the fingerprint")
}

func TestSchemaSummary_Fingerprint_IgnoresCaptureTime(t *testing.T) {
	a := testSummary()
	b := testSummary()
	b.CapturedAt = b.CapturedAt.Add(1)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestSchemaSummary_Render_Deterministic(t *testing.T) {
	s := testSummary()
	first := s.Render()
	for i := 0; i < 5; i++ {
		assert.True(t, strings.EqualFold(first, s.Render()))
	}
}
