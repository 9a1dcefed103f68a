package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clinigraph/clinigraph/internal/core/domain"
)

// Column orders for the fixed-shape record listings. These are stable
// regardless of JSON map iteration order.
var (
	admissionColumns  = []string{"hadm_id", "admission_type", "admittime", "dischtime", "admission_location", "discharge_location", "insurance", "race"}
	noteColumns       = []string{"note_id", "note_type", "hadm_id", "subject_id", "charttime", "text"}
	noteSearchColumns = []string{"note_id", "note_type", "hadm_id", "subject_id", "charttime", "score", "text"}
	diagnosisColumns  = []string{"icd_code", "long_title", "seq_num", "icd_version", "hadm_id", "subject_id"}
	labEventColumns   = []string{"lab_event_id", "label", "category", "value", "flag", "ref_range_lower", "ref_range_upper", "charttime"}
	medicationColumns = []string{"medication", "route", "frequency", "hadm_id", "verifiedtime"}
	procedureColumns  = []string{"icd_code", "long_title", "seq_num", "icd_version", "chartdate", "hadm_id"}
)

// PatientRecord renders a patient summary in the given encoding.
func PatientRecord(enc domain.Encoding, record *domain.PatientRecord) (string, error) {
	switch enc {
	case domain.EncodingStructured, "":
		return Structured(record)
	case domain.EncodingTabular, domain.EncodingNarrative:
		return patientText(enc, record)
	default:
		return "", fmt.Errorf("%w: unknown encoding %q", domain.ErrInvalidInput, enc)
	}
}

// ClinicalNotes renders clinical notes in the given encoding. Narrative
// output keeps full note text; tabular truncates it to fit the grid.
func ClinicalNotes(enc domain.Encoding, notes []domain.ClinicalNote) (string, error) {
	switch enc {
	case domain.EncodingStructured, "":
		return Structured(notes)
	case domain.EncodingTabular:
		return listText(enc, "CLINICAL NOTES", structRows(notes, noteColumns)), nil
	case domain.EncodingNarrative:
		return notesNarrative(notes), nil
	default:
		return "", fmt.Errorf("%w: unknown encoding %q", domain.ErrInvalidInput, enc)
	}
}

// NoteSearchResults renders note search matches in the given encoding.
// Narrative output keeps full note text and shows similarity scores.
func NoteSearchResults(enc domain.Encoding, results []domain.NoteSearchResult) (string, error) {
	switch enc {
	case domain.EncodingStructured, "":
		return Structured(results)
	case domain.EncodingTabular:
		return listText(enc, "NOTE SEARCH RESULTS", structRows(results, noteSearchColumns)), nil
	case domain.EncodingNarrative:
		return noteSearchNarrative(results), nil
	default:
		return "", fmt.Errorf("%w: unknown encoding %q", domain.ErrInvalidInput, enc)
	}
}

// Diagnoses renders a diagnosis listing in the given encoding.
func Diagnoses(enc domain.Encoding, items []domain.Diagnosis) (string, error) {
	return recordList(enc, "DIAGNOSES", items, diagnosisColumns)
}

// LabEvents renders a lab event listing in the given encoding.
func LabEvents(enc domain.Encoding, items []domain.LabEvent) (string, error) {
	return recordList(enc, "LAB EVENTS", items, labEventColumns)
}

// Medications renders a medication listing in the given encoding.
func Medications(enc domain.Encoding, items []domain.Medication) (string, error) {
	return recordList(enc, "MEDICATIONS", items, medicationColumns)
}

// Procedures renders a procedure listing in the given encoding.
func Procedures(enc domain.Encoding, items []domain.Procedure) (string, error) {
	return recordList(enc, "PROCEDURES", items, procedureColumns)
}

// SchemaSummary renders the schema summary. Structured output is the
// summary JSON; tabular and narrative use the compact text rendering the
// query generator sees.
func SchemaSummary(enc domain.Encoding, summary *domain.SchemaSummary) (string, error) {
	switch enc {
	case domain.EncodingStructured, "":
		return Structured(summary)
	case domain.EncodingTabular, domain.EncodingNarrative:
		return summary.Render(), nil
	default:
		return "", fmt.Errorf("%w: unknown encoding %q", domain.ErrInvalidInput, enc)
	}
}

func recordList[T any](enc domain.Encoding, title string, items []T, columns []string) (string, error) {
	switch enc {
	case domain.EncodingStructured, "":
		return Structured(items)
	case domain.EncodingTabular, domain.EncodingNarrative:
		return listText(enc, title, structRows(items, columns)), nil
	default:
		return "", fmt.Errorf("%w: unknown encoding %q", domain.ErrInvalidInput, enc)
	}
}

func listText(enc domain.Encoding, title string, rows []domain.Row) string {
	var b strings.Builder
	if enc == domain.EncodingNarrative {
		fmt.Fprintf(&b, "## %s (%d)\n\n", titleCase(title), len(rows))
		if len(rows) == 0 {
			b.WriteString("No results found.\n")
			return b.String()
		}
		b.WriteString(MarkdownTable(rows))
		return b.String()
	}
	fmt.Fprintf(&b, "%s (%d):\n", title, len(rows))
	if len(rows) == 0 {
		b.WriteString("No results found.\n")
		return b.String()
	}
	b.WriteString(Grid(rows))
	return b.String()
}

func patientText(enc domain.Encoding, record *domain.PatientRecord) (string, error) {
	var b strings.Builder
	p := record.Patient
	if enc == domain.EncodingNarrative {
		fmt.Fprintf(&b, "## Patient %s\n\n", p.SubjectID)
	} else {
		fmt.Fprintf(&b, "PATIENT %s\n", p.SubjectID)
	}
	fmt.Fprintf(&b, "Gender: %s\n", p.Gender)
	fmt.Fprintf(&b, "Anchor age: %d (year %d, group %s)\n", p.AnchorAge, p.AnchorYear, p.AnchorYearGroup)
	if p.DOD != nil {
		fmt.Fprintf(&b, "Date of death: %s\n", p.DOD.Format("2006-01-02"))
	}
	b.WriteString("\n")

	sections := []struct {
		title string
		rows  []domain.Row
		want  bool
	}{
		{"ADMISSIONS", structRows(record.Admissions, admissionColumns), record.Admissions != nil},
		{"DIAGNOSES", structRows(record.Diagnoses, diagnosisColumns), record.Diagnoses != nil},
		{"PROCEDURES", structRows(record.Procedures, procedureColumns), record.Procedures != nil},
		{"MEDICATIONS", structRows(record.Medications, medicationColumns), record.Medications != nil},
		{"LAB EVENTS", structRows(record.LabEvents, labEventColumns), record.LabEvents != nil},
	}
	for _, sec := range sections {
		if len(sec.rows) == 0 {
			continue
		}
		b.WriteString(listText(enc, sec.title, sec.rows))
		b.WriteString("\n")
	}
	return b.String(), nil
}

// notesNarrative renders each note as its own markdown section so long
// note text stays readable.
func notesNarrative(notes []domain.ClinicalNote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Clinical Notes (%d)\n\n", len(notes))
	if len(notes) == 0 {
		b.WriteString("No results found.\n")
		return b.String()
	}
	for _, note := range notes {
		fmt.Fprintf(&b, "### Note %s (%s)\n\n", note.NoteID, note.NoteType)
		if note.ChartTime != nil {
			fmt.Fprintf(&b, "Charted: %s\n\n", note.ChartTime.Format("2006-01-02 15:04"))
		}
		b.WriteString(strings.TrimSpace(note.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

func noteSearchNarrative(results []domain.NoteSearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Note Search Results (%d)\n\n", len(results))
	if len(results) == 0 {
		b.WriteString("No results found.\n")
		return b.String()
	}
	for _, r := range results {
		fmt.Fprintf(&b, "### Note %s (%s)\n\n", r.NoteID, r.NoteType)
		if r.Score != 0 {
			fmt.Fprintf(&b, "Similarity: %.4f\n\n", r.Score)
		}
		if r.ChartTime != nil {
			fmt.Fprintf(&b, "Charted: %s\n\n", r.ChartTime.Format("2006-01-02 15:04"))
		}
		b.WriteString(strings.TrimSpace(r.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// structRows flattens a slice of record structs into rows using their
// JSON field names, preserving the given column order.
func structRows[T any](items []T, columns []string) []domain.Row {
	rows := make([]domain.Row, 0, len(items))
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			continue
		}
		row := domain.Row{Keys: columns, Values: make([]any, len(columns))}
		for i, col := range columns {
			row.Values[i] = m[col]
		}
		rows = append(rows, row)
	}
	return rows
}

func titleCase(upper string) string {
	words := strings.Fields(strings.ToLower(upper))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
