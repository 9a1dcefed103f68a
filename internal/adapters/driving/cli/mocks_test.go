package cli

import (
	"context"

	"github.com/clinigraph/clinigraph/internal/core/domain"
	"github.com/clinigraph/clinigraph/internal/core/ports/driving"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer      *domain.Answer
	err         error
	invalidated bool
}

func (m *mockAnswerService) Answer(_ context.Context, _ string, _ int) (*domain.Answer, error) {
	return m.answer, m.err
}

func (m *mockAnswerService) InvalidateCache() error {
	m.invalidated = true
	return m.err
}

// mockSchemaService is a mock implementation of driving.SchemaService.
type mockSchemaService struct {
	summary *domain.SchemaSummary
	err     error
}

func (m *mockSchemaService) Summary(_ context.Context) (*domain.SchemaSummary, error) {
	return m.summary, m.err
}

func (m *mockSchemaService) Refresh(_ context.Context) (*domain.SchemaSummary, error) {
	return m.summary, m.err
}

// mockRecordService is a mock implementation of driving.RecordService.
type mockRecordService struct {
	record        *domain.PatientRecord
	notes         []domain.ClinicalNote
	searchResults []domain.NoteSearchResult
	diagnoses     []domain.Diagnosis
	labEvents     []domain.LabEvent
	medications   []domain.Medication
	procedures    []domain.Procedure
	err           error

	lastSearchFilter driving.NoteSearchFilter
}

func (m *mockRecordService) GetPatient(
	_ context.Context, _ string, _ driving.PatientOptions,
) (*domain.PatientRecord, error) {
	return m.record, m.err
}

func (m *mockRecordService) GetClinicalNotes(
	_ context.Context, _ driving.NoteFilter,
) ([]domain.ClinicalNote, error) {
	return m.notes, m.err
}

func (m *mockRecordService) SearchNotes(
	_ context.Context, filter driving.NoteSearchFilter,
) ([]domain.NoteSearchResult, error) {
	m.lastSearchFilter = filter
	return m.searchResults, m.err
}

func (m *mockRecordService) ListDiagnoses(
	_ context.Context, _ driving.DiagnosisFilter,
) ([]domain.Diagnosis, error) {
	return m.diagnoses, m.err
}

func (m *mockRecordService) ListLabEvents(
	_ context.Context, _ driving.LabEventFilter,
) ([]domain.LabEvent, error) {
	return m.labEvents, m.err
}

func (m *mockRecordService) ListMedications(
	_ context.Context, _ driving.MedicationFilter,
) ([]domain.Medication, error) {
	return m.medications, m.err
}

func (m *mockRecordService) ListProcedures(
	_ context.Context, _ driving.ProcedureFilter,
) ([]domain.Procedure, error) {
	return m.procedures, m.err
}

// setupTestServices injects mock services so commands skip real wiring.
// Returns a cleanup function restoring the previous state.
func setupTestServices() func() {
	prevAnswer, prevSchema, prevRecord := answerService, schemaService, recordService

	answerService = &mockAnswerService{
		answer: &domain.Answer{
			Question: "how many patients",
			Query:    "MATCH (p:Patient) RETURN count(p) AS patients LIMIT 10",
			Rows: []domain.Row{
				{Keys: []string{"patients"}, Values: []any{int64(42)}},
			},
			Count: 1,
		},
	}
	schemaService = &mockSchemaService{
		summary: &domain.SchemaSummary{
			Labels: []domain.NodeLabel{
				{Name: "Patient", Properties: []domain.Property{{Name: "subject_id", Indexed: true}}},
			},
			Relationships: []domain.RelationshipType{
				{Name: "HAS_ADMISSION", StartLabel: "Patient", EndLabel: "Admission"},
			},
		},
	}
	recordService = &mockRecordService{
		record: &domain.PatientRecord{
			Patient: domain.Patient{SubjectID: "10000032", Gender: "F", AnchorAge: 52},
		},
		diagnoses: []domain.Diagnosis{
			{ICDCode: "I10", LongTitle: "Essential hypertension"},
		},
	}

	return func() {
		answerService = prevAnswer
		schemaService = prevSchema
		recordService = prevRecord
	}
}
