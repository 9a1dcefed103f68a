package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clinigraph/clinigraph/internal/core/domain"
	"github.com/clinigraph/clinigraph/internal/core/ports/driven"
	"github.com/clinigraph/clinigraph/internal/core/ports/driving"
	"github.com/clinigraph/clinigraph/internal/logger"
)

// Ensure RecordService implements the interface.
var _ driving.RecordService = (*RecordService)(nil)

// RecordService implements the fixed-shape retrieval tools. Every query
// here is statically known and parameterized; nothing passes through the
// generator, validator, or cache.
type RecordService struct {
	store    driven.GraphStore
	embedder driven.Embedder
}

// NewRecordService creates a record service over the given store.
func NewRecordService(store driven.GraphStore) *RecordService {
	return &RecordService{store: store}
}

// SetEmbedder enables semantic note search. Without an embedder only
// substring search is available.
func (s *RecordService) SetEmbedder(embedder driven.Embedder) {
	s.embedder = embedder
}

// GetPatient returns a patient summary with the requested sections.
func (s *RecordService) GetPatient(
	ctx context.Context, subjectID string, opts driving.PatientOptions,
) (*domain.PatientRecord, error) {
	if subjectID == "" {
		return nil, fmt.Errorf("%w: subject_id is required", domain.ErrInvalidInput)
	}

	parts := []string{"MATCH (p:Patient {subject_id: $subject_id})"}
	returns := []string{"p"}

	if opts.IncludeAdmissions {
		parts = append(parts, "OPTIONAL MATCH (p)-[:HAS_ADMISSION]->(a:Admission)")
		returns = append(returns, "COLLECT(DISTINCT a) as admissions")
	}
	if opts.IncludeDiagnoses {
		parts = append(parts, "OPTIONAL MATCH (a)-[:HAS_DIAGNOSIS]->(d:Diagnosis)")
		returns = append(returns, "COLLECT(DISTINCT d) as diagnoses")
	}
	if opts.IncludeProcedures {
		parts = append(parts, "OPTIONAL MATCH (a)-[:HAS_PROCEDURE]->(proc:Procedure)")
		returns = append(returns, "COLLECT(DISTINCT proc) as procedures")
	}
	if opts.IncludeMedications {
		parts = append(parts, "OPTIONAL MATCH (a)-[:HAS_MEDICATION]->(m:Medication)")
		returns = append(returns, "COLLECT(DISTINCT m) as medications")
	}
	if opts.IncludeLabEvents {
		parts = append(parts, "OPTIONAL MATCH (a)-[:INCLUDES_LAB_EVENT]->(l:LabEvent)")
		returns = append(returns, "COLLECT(DISTINCT l) as lab_events")
	}

	query := strings.Join(parts, "\n") + "\nRETURN " + strings.Join(returns, ", ")
	logger.Debug("Patient query for subject_id=%s", subjectID)

	rs, err := s.store.ExecuteRead(ctx, query, map[string]any{"subject_id": subjectID})
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	if rs.Len() == 0 {
		return nil, fmt.Errorf("patient %s: %w", subjectID, domain.ErrNotFound)
	}

	row := rs.Rows[0].AsMap()
	props, ok := row["p"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("patient %s: %w", subjectID, domain.ErrNotFound)
	}

	record := &domain.PatientRecord{Patient: patientFromProps(props)}
	for _, a := range propsList(row["admissions"]) {
		record.Admissions = append(record.Admissions, admissionFromProps(a))
	}
	for _, d := range propsList(row["diagnoses"]) {
		record.Diagnoses = append(record.Diagnoses, diagnosisFromProps(d))
	}
	for _, p := range propsList(row["procedures"]) {
		record.Procedures = append(record.Procedures, procedureFromProps(p))
	}
	for _, m := range propsList(row["medications"]) {
		record.Medications = append(record.Medications, medicationFromProps(m))
	}
	for _, l := range propsList(row["lab_events"]) {
		record.LabEvents = append(record.LabEvents, labEventFromProps(l))
	}
	return record, nil
}

// GetClinicalNotes retrieves discharge summaries and radiology reports.
func (s *RecordService) GetClinicalNotes(
	ctx context.Context, filter driving.NoteFilter,
) ([]domain.ClinicalNote, error) {
	conditions := []string{noteLabelCondition(filter.NoteType)}
	params := map[string]any{"limit": limitOrDefault(filter.Limit, domain.DefaultNoteLimit)}
	if filter.PatientID != "" {
		conditions = append(conditions, "note.subject_id = $patient_id")
		params["patient_id"] = filter.PatientID
	}
	if filter.AdmissionID != "" {
		conditions = append(conditions, "note.hadm_id = $admission_id")
		params["admission_id"] = filter.AdmissionID
	}

	query := fmt.Sprintf(`MATCH (note)
WHERE %s
RETURN note.note_id as note_id,
       note.note_type as note_type,
       note.subject_id as subject_id,
       note.hadm_id as hadm_id,
       note.charttime as charttime,
       note.text as text
ORDER BY note.charttime DESC
LIMIT $limit`, strings.Join(conditions, " AND "))

	rs, err := s.store.ExecuteRead(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("get clinical notes: %w", err)
	}

	notes := make([]domain.ClinicalNote, 0, rs.Len())
	for _, row := range rs.Rows {
		notes = append(notes, noteFromRow(row.AsMap()))
	}
	return notes, nil
}

// noteEmbeddingsIndex is the vector index over clinical note text.
const noteEmbeddingsIndex = "note_embeddings"

// SearchNotes searches clinical note text. Text search matches a
// case-insensitive substring; semantic search embeds the query and ranks
// notes by vector similarity.
func (s *RecordService) SearchNotes(
	ctx context.Context, filter driving.NoteSearchFilter,
) ([]domain.NoteSearchResult, error) {
	if strings.TrimSpace(filter.Query) == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}

	limit := limitOrDefault(filter.Limit, domain.DefaultNoteLimit)
	if filter.Semantic {
		return s.searchNotesSemantic(ctx, filter, limit)
	}

	conditions := []string{
		noteLabelCondition(filter.NoteType),
		"toLower(note.text) CONTAINS toLower($query)",
	}
	params := map[string]any{"query": filter.Query, "limit": limit}
	if filter.PatientID != "" {
		conditions = append(conditions, "note.subject_id = $patient_id")
		params["patient_id"] = filter.PatientID
	}
	if filter.AdmissionID != "" {
		conditions = append(conditions, "note.hadm_id = $admission_id")
		params["admission_id"] = filter.AdmissionID
	}

	query := fmt.Sprintf(`MATCH (note)
WHERE %s
RETURN note.note_id as note_id,
       note.note_type as note_type,
       note.subject_id as subject_id,
       note.hadm_id as hadm_id,
       note.charttime as charttime,
       note.text as text
ORDER BY note.charttime DESC
LIMIT $limit`, strings.Join(conditions, " AND "))

	rs, err := s.store.ExecuteRead(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}

	results := make([]domain.NoteSearchResult, 0, rs.Len())
	for _, row := range rs.Rows {
		results = append(results, domain.NoteSearchResult{ClinicalNote: noteFromRow(row.AsMap())})
	}
	return results, nil
}

// searchNotesSemantic ranks notes against the query embedding via the
// note embeddings vector index. The index is queried for twice the
// requested limit because label and ID filters trim the candidates
// afterwards.
func (s *RecordService) searchNotesSemantic(
	ctx context.Context, filter driving.NoteSearchFilter, limit int,
) ([]domain.NoteSearchResult, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("semantic note search: %w", domain.ErrGeneratorUnavailable)
	}

	embedding, err := s.embedder.Embed(ctx, filter.Query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	conditions := []string{noteLabelCondition(filter.NoteType)}
	params := map[string]any{
		"index_name": noteEmbeddingsIndex,
		"fetch":      limit * 2,
		"embedding":  embedding,
	}
	if filter.PatientID != "" {
		conditions = append(conditions, "note.subject_id = $patient_id")
		params["patient_id"] = filter.PatientID
	}
	if filter.AdmissionID != "" {
		conditions = append(conditions, "note.hadm_id = $admission_id")
		params["admission_id"] = filter.AdmissionID
	}

	query := fmt.Sprintf(`CALL db.index.vector.queryNodes($index_name, $fetch, $embedding)
YIELD node as note, score
WHERE %s
RETURN note.note_id as note_id,
       note.note_type as note_type,
       note.subject_id as subject_id,
       note.hadm_id as hadm_id,
       note.charttime as charttime,
       note.text as text,
       score
ORDER BY score DESC`, strings.Join(conditions, " AND "))

	rs, err := s.store.ExecuteRead(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("semantic note search: %w", err)
	}
	logger.Debug("Semantic note search returned %d candidates", rs.Len())

	results := make([]domain.NoteSearchResult, 0, rs.Len())
	for _, row := range rs.Rows {
		m := row.AsMap()
		results = append(results, domain.NoteSearchResult{
			ClinicalNote: noteFromRow(m),
			Score:        asFloat(m["score"]),
		})
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

// noteLabelCondition narrows a note match to the requested labels.
func noteLabelCondition(noteType domain.NoteType) string {
	switch noteType {
	case domain.NoteTypeDischarge:
		return "note:DischargeNote"
	case domain.NoteTypeRadiology:
		return "note:RadiologyReport"
	default:
		return "(note:DischargeNote OR note:RadiologyReport)"
	}
}

func noteFromRow(m map[string]any) domain.ClinicalNote {
	return domain.ClinicalNote{
		NoteID:    asString(m["note_id"]),
		NoteType:  asString(m["note_type"]),
		SubjectID: asString(m["subject_id"]),
		HadmID:    asString(m["hadm_id"]),
		ChartTime: asTime(m["charttime"]),
		Text:      asString(m["text"]),
	}
}

// ListDiagnoses lists diagnoses for a patient or admission.
func (s *RecordService) ListDiagnoses(
	ctx context.Context, filter driving.DiagnosisFilter,
) ([]domain.Diagnosis, error) {
	limit := limitOrDefault(filter.Limit, domain.DefaultListLimit)

	var query string
	params := map[string]any{"limit": limit}
	switch {
	case filter.AdmissionID != "":
		query = `MATCH (a:Admission {hadm_id: $admission_id})-[:HAS_DIAGNOSIS]->(d:Diagnosis)
RETURN d
ORDER BY d.seq_num
LIMIT $limit`
		params["admission_id"] = filter.AdmissionID
	case filter.PatientID != "":
		query = `MATCH (p:Patient {subject_id: $patient_id})-[:HAS_ADMISSION]->(a:Admission)-[:HAS_DIAGNOSIS]->(d:Diagnosis)
RETURN d, a.hadm_id as hadm_id
ORDER BY a.admittime DESC, d.seq_num
LIMIT $limit`
		params["patient_id"] = filter.PatientID
	default:
		return nil, fmt.Errorf("%w: either patient_id or admission_id is required", domain.ErrInvalidInput)
	}

	rs, err := s.store.ExecuteRead(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("list diagnoses: %w", err)
	}

	diagnoses := make([]domain.Diagnosis, 0, rs.Len())
	for _, row := range rs.Rows {
		m := row.AsMap()
		props, ok := m["d"].(map[string]any)
		if !ok {
			continue
		}
		diag := diagnosisFromProps(props)
		if hadm := asString(m["hadm_id"]); hadm != "" {
			diag.HadmID = hadm
		}
		diagnoses = append(diagnoses, diag)
	}
	return diagnoses, nil
}

// ListLabEvents lists lab events for a patient.
func (s *RecordService) ListLabEvents(
	ctx context.Context, filter driving.LabEventFilter,
) ([]domain.LabEvent, error) {
	if filter.PatientID == "" {
		return nil, fmt.Errorf("%w: patient_id is required", domain.ErrInvalidInput)
	}

	conditions := []string{"l.subject_id = $patient_id"}
	params := map[string]any{
		"patient_id": filter.PatientID,
		"limit":      limitOrDefault(filter.Limit, domain.DefaultListLimit),
	}
	if filter.AdmissionID != "" {
		conditions = append(conditions, "l.hadm_id = $admission_id")
		params["admission_id"] = filter.AdmissionID
	}
	if filter.AbnormalOnly {
		conditions = append(conditions, "l.flag IS NOT NULL AND l.flag <> 'normal'")
	}
	if filter.Category != "" {
		conditions = append(conditions, "toLower(l.category) = toLower($category)")
		params["category"] = filter.Category
	}

	query := fmt.Sprintf(`MATCH (l:LabEvent)
WHERE %s
RETURN l
ORDER BY l.charttime DESC
LIMIT $limit`, strings.Join(conditions, " AND "))

	rs, err := s.store.ExecuteRead(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("list lab events: %w", err)
	}

	events := make([]domain.LabEvent, 0, rs.Len())
	for _, row := range rs.Rows {
		if props, ok := row.AsMap()["l"].(map[string]any); ok {
			events = append(events, labEventFromProps(props))
		}
	}
	return events, nil
}

// ListMedications lists medications for a patient or admission.
func (s *RecordService) ListMedications(
	ctx context.Context, filter driving.MedicationFilter,
) ([]domain.Medication, error) {
	var conditions []string
	params := map[string]any{"limit": limitOrDefault(filter.Limit, domain.DefaultListLimit)}

	switch {
	case filter.AdmissionID != "":
		conditions = append(conditions, "m.hadm_id = $admission_id")
		params["admission_id"] = filter.AdmissionID
	case filter.PatientID != "":
		conditions = append(conditions, "m.subject_id = $patient_id")
		params["patient_id"] = filter.PatientID
	default:
		return nil, fmt.Errorf("%w: either patient_id or admission_id is required", domain.ErrInvalidInput)
	}

	if filter.Medication != "" {
		conditions = append(conditions, "toLower(m.medication) CONTAINS toLower($medication)")
		params["medication"] = filter.Medication
	}
	if filter.Route != "" {
		conditions = append(conditions, "toLower(m.route) = toLower($route)")
		params["route"] = filter.Route
	}

	query := fmt.Sprintf(`MATCH (m:Medication)
WHERE %s
RETURN m
ORDER BY m.verifiedtime DESC
LIMIT $limit`, strings.Join(conditions, " AND "))

	rs, err := s.store.ExecuteRead(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}

	medications := make([]domain.Medication, 0, rs.Len())
	for _, row := range rs.Rows {
		if props, ok := row.AsMap()["m"].(map[string]any); ok {
			medications = append(medications, medicationFromProps(props))
		}
	}
	return medications, nil
}

// ListProcedures lists procedures for a patient or admission.
func (s *RecordService) ListProcedures(
	ctx context.Context, filter driving.ProcedureFilter,
) ([]domain.Procedure, error) {
	var query string
	params := map[string]any{"limit": limitOrDefault(filter.Limit, domain.DefaultListLimit)}

	switch {
	case filter.AdmissionID != "":
		query = `MATCH (a:Admission {hadm_id: $admission_id})-[:HAS_PROCEDURE]->(p:Procedure)
RETURN p
ORDER BY p.seq_num
LIMIT $limit`
		params["admission_id"] = filter.AdmissionID
	case filter.PatientID != "":
		query = `MATCH (pat:Patient {subject_id: $patient_id})-[:HAS_ADMISSION]->(a:Admission)-[:HAS_PROCEDURE]->(p:Procedure)
RETURN p, a.hadm_id as hadm_id
ORDER BY p.chartdate DESC, p.seq_num
LIMIT $limit`
		params["patient_id"] = filter.PatientID
	default:
		return nil, fmt.Errorf("%w: either patient_id or admission_id is required", domain.ErrInvalidInput)
	}

	rs, err := s.store.ExecuteRead(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("list procedures: %w", err)
	}

	procedures := make([]domain.Procedure, 0, rs.Len())
	for _, row := range rs.Rows {
		m := row.AsMap()
		props, ok := m["p"].(map[string]any)
		if !ok {
			continue
		}
		proc := procedureFromProps(props)
		if hadm := asString(m["hadm_id"]); hadm != "" {
			proc.HadmID = hadm
		}
		procedures = append(procedures, proc)
	}
	return procedures, nil
}

func limitOrDefault(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}

// propsList unwraps a COLLECT() result into property maps, dropping the
// nulls OPTIONAL MATCH contributes.
func propsList(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if props, ok := item.(map[string]any); ok {
			out = append(out, props)
		}
	}
	return out
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func asTime(v any) *time.Time {
	if t, ok := v.(time.Time); ok {
		return &t
	}
	return nil
}

func asStrings(v any) []string {
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

func patientFromProps(p map[string]any) domain.Patient {
	return domain.Patient{
		SubjectID:       asString(p["subject_id"]),
		Gender:          asString(p["gender"]),
		AnchorAge:       asInt(p["anchor_age"]),
		AnchorYear:      asInt(p["anchor_year"]),
		AnchorYearGroup: asString(p["anchor_year_group"]),
		DOD:             asTime(p["dod"]),
	}
}

func admissionFromProps(p map[string]any) domain.Admission {
	return domain.Admission{
		HadmID:            asString(p["hadm_id"]),
		AdmissionType:     asString(p["admission_type"]),
		AdmitTime:         asTime(p["admittime"]),
		DischTime:         asTime(p["dischtime"]),
		DeathTime:         asTime(p["deathtime"]),
		AdmissionLocation: asString(p["admission_location"]),
		DischargeLocation: asString(p["discharge_location"]),
		Insurance:         asString(p["insurance"]),
		Language:          asString(p["language"]),
		MaritalStatus:     asString(p["marital_status"]),
		Race:              asString(p["race"]),
		EDRegTime:         asTime(p["edregtime"]),
		EDOutTime:         asTime(p["edouttime"]),
		HospitalExpire:    asInt(p["hospital_expire_flag"]),
		AdmitProviderID:   asString(p["admit_provider_id"]),
	}
}

func diagnosisFromProps(p map[string]any) domain.Diagnosis {
	return domain.Diagnosis{
		ICDCode:    asString(p["icd_code"]),
		LongTitle:  asString(p["long_title"]),
		Synonyms:   asStrings(p["synonyms"]),
		HadmID:     asString(p["hadm_id"]),
		SubjectID:  asString(p["subject_id"]),
		SeqNum:     asInt(p["seq_num"]),
		ICDVersion: asInt(p["icd_version"]),
	}
}

func procedureFromProps(p map[string]any) domain.Procedure {
	return domain.Procedure{
		ICDCode:    asString(p["icd_code"]),
		LongTitle:  asString(p["long_title"]),
		HadmID:     asString(p["hadm_id"]),
		SeqNum:     asInt(p["seq_num"]),
		ChartDate:  asTime(p["chartdate"]),
		ICDVersion: asInt(p["icd_version"]),
	}
}

func medicationFromProps(p map[string]any) domain.Medication {
	return domain.Medication{
		Medication:   asString(p["medication"]),
		Route:        asString(p["route"]),
		HadmID:       asString(p["hadm_id"]),
		SubjectID:    asString(p["subject_id"]),
		Frequency:    asString(p["frequency"]),
		VerifiedTime: asTime(p["verifiedtime"]),
	}
}

func labEventFromProps(p map[string]any) domain.LabEvent {
	return domain.LabEvent{
		LabEventID:    asString(p["lab_event_id"]),
		SubjectID:     asString(p["subject_id"]),
		HadmID:        asString(p["hadm_id"]),
		ChartTime:     asTime(p["charttime"]),
		Label:         asString(p["label"]),
		ItemID:        asString(p["itemid"]),
		Category:      asString(p["category"]),
		Flag:          asString(p["flag"]),
		Value:         asString(p["value"]),
		Comments:      asString(p["comments"]),
		RefRangeUpper: asFloat(p["ref_range_upper"]),
		RefRangeLower: asFloat(p["ref_range_lower"]),
		Fluid:         asString(p["fluid"]),
		Priority:      asString(p["priority"]),
		StoreTime:     asTime(p["storetime"]),
	}
}
