package driving

import (
	"context"

	"github.com/clinigraph/clinigraph/internal/core/domain"
)

// PatientOptions selects which sections to include in a patient record.
type PatientOptions struct {
	IncludeAdmissions  bool
	IncludeDiagnoses   bool
	IncludeProcedures  bool
	IncludeMedications bool
	IncludeLabEvents   bool
}

// NoteFilter narrows a clinical note retrieval.
type NoteFilter struct {
	NoteType    domain.NoteType
	PatientID   string
	AdmissionID string
	Limit       int
}

// NoteSearchFilter narrows a note search. Query is required. Semantic
// switches from substring matching to vector similarity over the note
// embeddings index.
type NoteSearchFilter struct {
	Query       string
	NoteType    domain.NoteType
	PatientID   string
	AdmissionID string
	Limit       int
	Semantic    bool
}

// DiagnosisFilter narrows a diagnosis listing. One of PatientID or
// AdmissionID is required.
type DiagnosisFilter struct {
	PatientID   string
	AdmissionID string
	Limit       int
}

// LabEventFilter narrows a lab event listing. PatientID is required.
type LabEventFilter struct {
	PatientID    string
	AdmissionID  string
	AbnormalOnly bool
	Category     string
	Limit        int
}

// MedicationFilter narrows a medication listing. One of PatientID or
// AdmissionID is required.
type MedicationFilter struct {
	PatientID   string
	AdmissionID string
	Medication  string
	Route       string
	Limit       int
}

// ProcedureFilter narrows a procedure listing. One of PatientID or
// AdmissionID is required.
type ProcedureFilter struct {
	PatientID   string
	AdmissionID string
	Limit       int
}

// RecordService provides the fixed-shape retrieval tools. These are
// parameterized, statically known traversals; they never touch the
// generator, validator, or cache.
type RecordService interface {
	// GetPatient returns a patient summary with the requested sections.
	GetPatient(ctx context.Context, subjectID string, opts PatientOptions) (*domain.PatientRecord, error)

	// GetClinicalNotes retrieves discharge summaries and radiology reports.
	GetClinicalNotes(ctx context.Context, filter NoteFilter) ([]domain.ClinicalNote, error)

	// SearchNotes searches clinical note text by substring or by vector
	// similarity.
	SearchNotes(ctx context.Context, filter NoteSearchFilter) ([]domain.NoteSearchResult, error)

	// ListDiagnoses lists diagnoses for a patient or admission.
	ListDiagnoses(ctx context.Context, filter DiagnosisFilter) ([]domain.Diagnosis, error)

	// ListLabEvents lists lab events for a patient.
	ListLabEvents(ctx context.Context, filter LabEventFilter) ([]domain.LabEvent, error)

	// ListMedications lists medications for a patient or admission.
	ListMedications(ctx context.Context, filter MedicationFilter) ([]domain.Medication, error)

	// ListProcedures lists procedures for a patient or admission.
	ListProcedures(ctx context.Context, filter ProcedureFilter) ([]domain.Procedure, error)
}
