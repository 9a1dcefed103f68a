package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clinigraph/clinigraph/internal/core/domain"
	"github.com/clinigraph/clinigraph/internal/core/ports/driving"
	"github.com/clinigraph/clinigraph/internal/render"
)

// NaturalQueryInput is the input schema for the ehr_natural_query tool.
type NaturalQueryInput struct {
	Query  string `json:"query" jsonschema:"the natural language question about the EHR data"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	Format string `json:"format,omitempty" jsonschema:"output format: structured, tabular, or narrative (default structured)"`
}

// NaturalQueryOutput is the output schema for the ehr_natural_query tool.
type NaturalQueryOutput struct {
	Question    string           `json:"question"`
	CypherQuery string           `json:"cypher_query"`
	Results     []map[string]any `json:"results"`
	Count       int              `json:"count"`
	CacheHit    bool             `json:"cache_hit"`
}

// SchemaInput is the input schema for the ehr_get_schema tool.
type SchemaInput struct {
	Refresh bool   `json:"refresh,omitempty" jsonschema:"discard the cached schema snapshot and introspect again"`
	Format  string `json:"format,omitempty" jsonschema:"output format: structured, tabular, or narrative (default structured)"`
}

// PatientInput is the input schema for the ehr_patient tool.
type PatientInput struct {
	SubjectID          string `json:"subject_id" jsonschema:"the patient subject ID"`
	IncludeAdmissions  bool   `json:"include_admissions,omitempty" jsonschema:"include hospital admissions"`
	IncludeDiagnoses   bool   `json:"include_diagnoses,omitempty" jsonschema:"include ICD diagnoses"`
	IncludeProcedures  bool   `json:"include_procedures,omitempty" jsonschema:"include ICD procedures"`
	IncludeMedications bool   `json:"include_medications,omitempty" jsonschema:"include medications"`
	IncludeLabEvents   bool   `json:"include_lab_events,omitempty" jsonschema:"include lab events"`
	Format             string `json:"format,omitempty" jsonschema:"output format: structured, tabular, or narrative (default structured)"`
}

// ClinicalNotesInput is the input schema for the ehr_get_clinical_notes tool.
type ClinicalNotesInput struct {
	NoteType    string `json:"note_type,omitempty" jsonschema:"note type: discharge, radiology, or all (default all)"`
	PatientID   string `json:"patient_id,omitempty" jsonschema:"filter by patient subject ID"`
	AdmissionID string `json:"admission_id,omitempty" jsonschema:"filter by hospital admission ID"`
	Limit       int    `json:"limit,omitempty" jsonschema:"maximum number of notes to return (default 5)"`
	Format      string `json:"format,omitempty" jsonschema:"output format: structured, tabular, or narrative (default structured)"`
}

// SearchNotesInput is the input schema for the ehr_search_notes tool.
type SearchNotesInput struct {
	Query       string `json:"query" jsonschema:"the text to search clinical notes for"`
	NoteType    string `json:"note_type,omitempty" jsonschema:"note type: discharge, radiology, or all (default all)"`
	PatientID   string `json:"patient_id,omitempty" jsonschema:"filter by patient subject ID"`
	AdmissionID string `json:"admission_id,omitempty" jsonschema:"filter by hospital admission ID"`
	Limit       int    `json:"limit,omitempty" jsonschema:"maximum number of notes to return (default 5)"`
	Semantic    bool   `json:"semantic,omitempty" jsonschema:"rank by vector similarity instead of substring matching (requires an embedding engine)"`
	Format      string `json:"format,omitempty" jsonschema:"output format: structured, tabular, or narrative (default structured)"`
}

// DiagnosesInput is the input schema for the ehr_list_diagnoses tool.
type DiagnosesInput struct {
	PatientID   string `json:"patient_id,omitempty" jsonschema:"filter by patient subject ID (this or admission_id is required)"`
	AdmissionID string `json:"admission_id,omitempty" jsonschema:"filter by hospital admission ID"`
	Limit       int    `json:"limit,omitempty" jsonschema:"maximum number of diagnoses to return (default 20)"`
	Format      string `json:"format,omitempty" jsonschema:"output format: structured, tabular, or narrative (default structured)"`
}

// LabEventsInput is the input schema for the ehr_list_lab_events tool.
type LabEventsInput struct {
	PatientID    string `json:"patient_id" jsonschema:"the patient subject ID"`
	AdmissionID  string `json:"admission_id,omitempty" jsonschema:"filter by hospital admission ID"`
	AbnormalOnly bool   `json:"abnormal_only,omitempty" jsonschema:"only return lab events flagged abnormal"`
	Category     string `json:"category,omitempty" jsonschema:"filter by lab category (e.g. Blood Gas, Chemistry)"`
	Limit        int    `json:"limit,omitempty" jsonschema:"maximum number of lab events to return (default 20)"`
	Format       string `json:"format,omitempty" jsonschema:"output format: structured, tabular, or narrative (default structured)"`
}

// MedicationsInput is the input schema for the ehr_list_medications tool.
type MedicationsInput struct {
	PatientID   string `json:"patient_id,omitempty" jsonschema:"filter by patient subject ID (this or admission_id is required)"`
	AdmissionID string `json:"admission_id,omitempty" jsonschema:"filter by hospital admission ID"`
	Medication  string `json:"medication,omitempty" jsonschema:"filter by medication name (case-insensitive substring)"`
	Route       string `json:"route,omitempty" jsonschema:"filter by administration route"`
	Limit       int    `json:"limit,omitempty" jsonschema:"maximum number of medications to return (default 20)"`
	Format      string `json:"format,omitempty" jsonschema:"output format: structured, tabular, or narrative (default structured)"`
}

// ProceduresInput is the input schema for the ehr_list_procedures tool.
type ProceduresInput struct {
	PatientID   string `json:"patient_id,omitempty" jsonschema:"filter by patient subject ID (this or admission_id is required)"`
	AdmissionID string `json:"admission_id,omitempty" jsonschema:"filter by hospital admission ID"`
	Limit       int    `json:"limit,omitempty" jsonschema:"maximum number of procedures to return (default 20)"`
	Format      string `json:"format,omitempty" jsonschema:"output format: structured, tabular, or narrative (default structured)"`
}

// RecordsOutput is the generic output schema for the listing tools.
type RecordsOutput struct {
	Rendered string `json:"rendered"`
	Count    int    `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ehr_natural_query",
		Description: "Translate a natural language question into a Cypher query and run it against the EHR graph",
	}, s.handleNaturalQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ehr_get_schema",
		Description: "Return the EHR graph schema summary (node labels, relationships, properties, indexes)",
	}, s.handleSchema)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ehr_patient",
		Description: "Retrieve a patient summary with optional admissions, diagnoses, procedures, medications, and lab events",
	}, s.handlePatient)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ehr_get_clinical_notes",
		Description: "Retrieve discharge summaries and radiology reports, optionally filtered by patient or admission",
	}, s.handleClinicalNotes)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ehr_search_notes",
		Description: "Search clinical note text by substring or by semantic similarity over the note embeddings index",
	}, s.handleSearchNotes)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ehr_list_diagnoses",
		Description: "List ICD diagnoses for a patient or admission",
	}, s.handleDiagnoses)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ehr_list_lab_events",
		Description: "List laboratory events for a patient, optionally filtered by admission, abnormality, or category",
	}, s.handleLabEvents)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ehr_list_medications",
		Description: "List medications for a patient or admission, optionally filtered by name or route",
	}, s.handleMedications)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ehr_list_procedures",
		Description: "List ICD procedures for a patient or admission",
	}, s.handleProcedures)
}

// handleNaturalQuery handles the ehr_natural_query tool invocation.
func (s *Server) handleNaturalQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input NaturalQueryInput,
) (*mcp.CallToolResult, NaturalQueryOutput, error) {
	enc, err := domain.ParseEncoding(input.Format)
	if err != nil {
		return nil, NaturalQueryOutput{}, err
	}

	answer, err := s.ports.Answer.Answer(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, NaturalQueryOutput{}, err
	}

	output := NaturalQueryOutput{
		Question:    answer.Question,
		CypherQuery: answer.Query,
		Results:     make([]map[string]any, len(answer.Rows)),
		Count:       answer.Count,
		CacheHit:    answer.CacheHit,
	}
	for i, row := range answer.Rows {
		output.Results[i] = row.AsMap()
	}

	rendered, err := render.Answer(enc, answer)
	if err != nil {
		return nil, NaturalQueryOutput{}, err
	}
	return textResult(rendered), output, nil
}

// handleSchema handles the ehr_get_schema tool invocation.
func (s *Server) handleSchema(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SchemaInput,
) (*mcp.CallToolResult, *domain.SchemaSummary, error) {
	if s.ports.Schema == nil {
		return nil, nil, ErrSchemaUnavailable
	}
	enc, err := domain.ParseEncoding(input.Format)
	if err != nil {
		return nil, nil, err
	}

	var summary *domain.SchemaSummary
	if input.Refresh {
		summary, err = s.ports.Schema.Refresh(ctx)
	} else {
		summary, err = s.ports.Schema.Summary(ctx)
	}
	if err != nil {
		return nil, nil, err
	}

	rendered, err := render.SchemaSummary(enc, summary)
	if err != nil {
		return nil, nil, err
	}
	return textResult(rendered), summary, nil
}

// handlePatient handles the ehr_patient tool invocation.
func (s *Server) handlePatient(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PatientInput,
) (*mcp.CallToolResult, *domain.PatientRecord, error) {
	enc, err := domain.ParseEncoding(input.Format)
	if err != nil {
		return nil, nil, err
	}

	opts := driving.PatientOptions{
		IncludeAdmissions:  input.IncludeAdmissions,
		IncludeDiagnoses:   input.IncludeDiagnoses,
		IncludeProcedures:  input.IncludeProcedures,
		IncludeMedications: input.IncludeMedications,
		IncludeLabEvents:   input.IncludeLabEvents,
	}
	record, err := s.ports.Record.GetPatient(ctx, input.SubjectID, opts)
	if err != nil {
		return nil, nil, err
	}

	rendered, err := render.PatientRecord(enc, record)
	if err != nil {
		return nil, nil, err
	}
	return textResult(rendered), record, nil
}

// handleClinicalNotes handles the ehr_get_clinical_notes tool invocation.
func (s *Server) handleClinicalNotes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ClinicalNotesInput,
) (*mcp.CallToolResult, RecordsOutput, error) {
	enc, err := domain.ParseEncoding(input.Format)
	if err != nil {
		return nil, RecordsOutput{}, err
	}

	noteType := domain.NoteType(input.NoteType)
	if noteType == "" {
		noteType = domain.NoteTypeAll
	}
	notes, err := s.ports.Record.GetClinicalNotes(ctx, driving.NoteFilter{
		NoteType:    noteType,
		PatientID:   input.PatientID,
		AdmissionID: input.AdmissionID,
		Limit:       input.Limit,
	})
	if err != nil {
		return nil, RecordsOutput{}, err
	}

	rendered, err := render.ClinicalNotes(enc, notes)
	if err != nil {
		return nil, RecordsOutput{}, err
	}
	return textResult(rendered), RecordsOutput{Rendered: rendered, Count: len(notes)}, nil
}

// handleSearchNotes handles the ehr_search_notes tool invocation.
func (s *Server) handleSearchNotes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchNotesInput,
) (*mcp.CallToolResult, RecordsOutput, error) {
	enc, err := domain.ParseEncoding(input.Format)
	if err != nil {
		return nil, RecordsOutput{}, err
	}

	noteType := domain.NoteType(input.NoteType)
	if noteType == "" {
		noteType = domain.NoteTypeAll
	}
	results, err := s.ports.Record.SearchNotes(ctx, driving.NoteSearchFilter{
		Query:       input.Query,
		NoteType:    noteType,
		PatientID:   input.PatientID,
		AdmissionID: input.AdmissionID,
		Limit:       input.Limit,
		Semantic:    input.Semantic,
	})
	if err != nil {
		return nil, RecordsOutput{}, err
	}

	rendered, err := render.NoteSearchResults(enc, results)
	if err != nil {
		return nil, RecordsOutput{}, err
	}
	return textResult(rendered), RecordsOutput{Rendered: rendered, Count: len(results)}, nil
}

// handleDiagnoses handles the ehr_list_diagnoses tool invocation.
func (s *Server) handleDiagnoses(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DiagnosesInput,
) (*mcp.CallToolResult, RecordsOutput, error) {
	enc, err := domain.ParseEncoding(input.Format)
	if err != nil {
		return nil, RecordsOutput{}, err
	}

	items, err := s.ports.Record.ListDiagnoses(ctx, driving.DiagnosisFilter{
		PatientID:   input.PatientID,
		AdmissionID: input.AdmissionID,
		Limit:       input.Limit,
	})
	if err != nil {
		return nil, RecordsOutput{}, err
	}

	rendered, err := render.Diagnoses(enc, items)
	if err != nil {
		return nil, RecordsOutput{}, err
	}
	return textResult(rendered), RecordsOutput{Rendered: rendered, Count: len(items)}, nil
}

// handleLabEvents handles the ehr_list_lab_events tool invocation.
func (s *Server) handleLabEvents(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LabEventsInput,
) (*mcp.CallToolResult, RecordsOutput, error) {
	enc, err := domain.ParseEncoding(input.Format)
	if err != nil {
		return nil, RecordsOutput{}, err
	}

	items, err := s.ports.Record.ListLabEvents(ctx, driving.LabEventFilter{
		PatientID:    input.PatientID,
		AdmissionID:  input.AdmissionID,
		AbnormalOnly: input.AbnormalOnly,
		Category:     input.Category,
		Limit:        input.Limit,
	})
	if err != nil {
		return nil, RecordsOutput{}, err
	}

	rendered, err := render.LabEvents(enc, items)
	if err != nil {
		return nil, RecordsOutput{}, err
	}
	return textResult(rendered), RecordsOutput{Rendered: rendered, Count: len(items)}, nil
}

// handleMedications handles the ehr_list_medications tool invocation.
func (s *Server) handleMedications(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MedicationsInput,
) (*mcp.CallToolResult, RecordsOutput, error) {
	enc, err := domain.ParseEncoding(input.Format)
	if err != nil {
		return nil, RecordsOutput{}, err
	}

	items, err := s.ports.Record.ListMedications(ctx, driving.MedicationFilter{
		PatientID:   input.PatientID,
		AdmissionID: input.AdmissionID,
		Medication:  input.Medication,
		Route:       input.Route,
		Limit:       input.Limit,
	})
	if err != nil {
		return nil, RecordsOutput{}, err
	}

	rendered, err := render.Medications(enc, items)
	if err != nil {
		return nil, RecordsOutput{}, err
	}
	return textResult(rendered), RecordsOutput{Rendered: rendered, Count: len(items)}, nil
}

// handleProcedures handles the ehr_list_procedures tool invocation.
func (s *Server) handleProcedures(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ProceduresInput,
) (*mcp.CallToolResult, RecordsOutput, error) {
	enc, err := domain.ParseEncoding(input.Format)
	if err != nil {
		return nil, RecordsOutput{}, err
	}

	items, err := s.ports.Record.ListProcedures(ctx, driving.ProcedureFilter{
		PatientID:   input.PatientID,
		AdmissionID: input.AdmissionID,
		Limit:       input.Limit,
	})
	if err != nil {
		return nil, RecordsOutput{}, err
	}

	rendered, err := render.Procedures(enc, items)
	if err != nil {
		return nil, RecordsOutput{}, err
	}
	return textResult(rendered), RecordsOutput{Rendered: rendered, Count: len(items)}, nil
}

// textResult wraps rendered text as a tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
