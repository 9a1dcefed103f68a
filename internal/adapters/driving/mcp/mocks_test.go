package mcp

import (
	"context"

	"github.com/clinigraph/clinigraph/internal/core/domain"
	"github.com/clinigraph/clinigraph/internal/core/ports/driving"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer    *domain.Answer
	err       error
	lastLimit int
}

func (m *mockAnswerService) Answer(_ context.Context, _ string, limit int) (*domain.Answer, error) {
	m.lastLimit = limit
	return m.answer, m.err
}

func (m *mockAnswerService) InvalidateCache() error {
	return m.err
}

// mockSchemaService is a mock implementation of driving.SchemaService.
type mockSchemaService struct {
	summary   *domain.SchemaSummary
	err       error
	refreshed bool
}

func (m *mockSchemaService) Summary(_ context.Context) (*domain.SchemaSummary, error) {
	return m.summary, m.err
}

func (m *mockSchemaService) Refresh(_ context.Context) (*domain.SchemaSummary, error) {
	m.refreshed = true
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

	lastNoteFilter   driving.NoteFilter
	lastSearchFilter driving.NoteSearchFilter
	lastLabFilter    driving.LabEventFilter
}

func (m *mockRecordService) GetPatient(
	_ context.Context, _ string, _ driving.PatientOptions,
) (*domain.PatientRecord, error) {
	return m.record, m.err
}

func (m *mockRecordService) GetClinicalNotes(
	_ context.Context, filter driving.NoteFilter,
) ([]domain.ClinicalNote, error) {
	m.lastNoteFilter = filter
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
	_ context.Context, filter driving.LabEventFilter,
) ([]domain.LabEvent, error) {
	m.lastLabFilter = filter
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
