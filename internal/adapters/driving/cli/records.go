package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clinigraph/clinigraph/internal/core/domain"
	"github.com/clinigraph/clinigraph/internal/core/ports/driving"
	"github.com/clinigraph/clinigraph/internal/render"
)

// Shared flags for the record listing commands.
var (
	recordPatientID   string
	recordAdmissionID string
	recordLimit       int
	recordFormat      string

	noteType       string
	searchSemantic bool
	labAbnormal    bool
	labCategory    string
	medName        string
	medRoute       string
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Retrieve clinical notes",
	Long: `Retrieves discharge summaries and radiology reports, optionally filtered
by patient or admission.

Examples:
  clinigraph notes --patient 10000032
  clinigraph notes --admission 22595853 --type discharge --format narrative`,
	RunE: runNotes,
}

var searchNotesCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search clinical note text",
	Long: `Searches clinical note text. By default matches a case-insensitive
substring; --semantic ranks notes by vector similarity instead, which
requires an OpenAI API key.

Examples:
  clinigraph search "chest pain" --patient 10000032
  clinigraph search "signs of heart failure" --semantic --limit 3`,
	Args: cobra.ExactArgs(1),
	RunE: runSearchNotes,
}

var diagnosesCmd = &cobra.Command{
	Use:   "diagnoses",
	Short: "List ICD diagnoses for a patient or admission",
	RunE:  runDiagnoses,
}

var labsCmd = &cobra.Command{
	Use:   "labs",
	Short: "List laboratory events for a patient",
	Long: `Lists laboratory events for a patient, optionally filtered by admission,
abnormality flag, or lab category.

Examples:
  clinigraph labs --patient 10000032 --abnormal
  clinigraph labs --patient 10000032 --category Chemistry --limit 50`,
	RunE: runLabs,
}

var medicationsCmd = &cobra.Command{
	Use:   "medications",
	Short: "List medications for a patient or admission",
	RunE:  runMedications,
}

var proceduresCmd = &cobra.Command{
	Use:   "procedures",
	Short: "List ICD procedures for a patient or admission",
	RunE:  runProcedures,
}

func init() {
	for _, cmd := range []*cobra.Command{notesCmd, searchNotesCmd, diagnosesCmd, labsCmd, medicationsCmd, proceduresCmd} {
		cmd.Flags().StringVar(&recordPatientID, "patient", "", "patient subject ID")
		cmd.Flags().StringVar(&recordAdmissionID, "admission", "", "hospital admission ID")
		cmd.Flags().IntVarP(&recordLimit, "limit", "n", 0, "maximum number of results")
		cmd.Flags().StringVarP(&recordFormat, "format", "f", "structured", "output format: structured, tabular, or narrative")
		rootCmd.AddCommand(cmd)
	}

	notesCmd.Flags().StringVar(&noteType, "type", "all", "note type: discharge, radiology, or all")
	searchNotesCmd.Flags().StringVar(&noteType, "type", "all", "note type: discharge, radiology, or all")
	searchNotesCmd.Flags().BoolVar(&searchSemantic, "semantic", false, "rank by vector similarity instead of substring matching")
	labsCmd.Flags().BoolVar(&labAbnormal, "abnormal", false, "only lab events flagged abnormal")
	labsCmd.Flags().StringVar(&labCategory, "category", "", "lab category (e.g. Blood Gas, Chemistry)")
	medicationsCmd.Flags().StringVar(&medName, "medication", "", "medication name filter (case-insensitive substring)")
	medicationsCmd.Flags().StringVar(&medRoute, "route", "", "administration route filter")
}

// recordListSetup validates shared flags and wires services.
func recordListSetup() (domain.Encoding, error) {
	enc, err := domain.ParseEncoding(recordFormat)
	if err != nil {
		return "", err
	}
	if err := ensureServices(); err != nil {
		return "", err
	}
	if recordService == nil {
		return "", errServicesNotConfigured
	}
	return enc, nil
}

func runNotes(cmd *cobra.Command, _ []string) error {
	enc, err := recordListSetup()
	if err != nil {
		return err
	}

	notes, err := recordService.GetClinicalNotes(cmd.Context(), driving.NoteFilter{
		NoteType:    domain.NoteType(noteType),
		PatientID:   recordPatientID,
		AdmissionID: recordAdmissionID,
		Limit:       recordLimit,
	})
	if err != nil {
		return fmt.Errorf("retrieving notes: %w", err)
	}

	rendered, err := render.ClinicalNotes(enc, notes)
	if err != nil {
		return err
	}
	cmd.Println(rendered)
	return nil
}

func runSearchNotes(cmd *cobra.Command, args []string) error {
	enc, err := recordListSetup()
	if err != nil {
		return err
	}

	results, err := recordService.SearchNotes(cmd.Context(), driving.NoteSearchFilter{
		Query:       args[0],
		NoteType:    domain.NoteType(noteType),
		PatientID:   recordPatientID,
		AdmissionID: recordAdmissionID,
		Limit:       recordLimit,
		Semantic:    searchSemantic,
	})
	if err != nil {
		return fmt.Errorf("searching notes: %w", err)
	}

	rendered, err := render.NoteSearchResults(enc, results)
	if err != nil {
		return err
	}
	cmd.Println(rendered)
	return nil
}

func runDiagnoses(cmd *cobra.Command, _ []string) error {
	enc, err := recordListSetup()
	if err != nil {
		return err
	}

	items, err := recordService.ListDiagnoses(cmd.Context(), driving.DiagnosisFilter{
		PatientID:   recordPatientID,
		AdmissionID: recordAdmissionID,
		Limit:       recordLimit,
	})
	if err != nil {
		return fmt.Errorf("listing diagnoses: %w", err)
	}

	rendered, err := render.Diagnoses(enc, items)
	if err != nil {
		return err
	}
	cmd.Println(rendered)
	return nil
}

func runLabs(cmd *cobra.Command, _ []string) error {
	enc, err := recordListSetup()
	if err != nil {
		return err
	}

	items, err := recordService.ListLabEvents(cmd.Context(), driving.LabEventFilter{
		PatientID:    recordPatientID,
		AdmissionID:  recordAdmissionID,
		AbnormalOnly: labAbnormal,
		Category:     labCategory,
		Limit:        recordLimit,
	})
	if err != nil {
		return fmt.Errorf("listing lab events: %w", err)
	}

	rendered, err := render.LabEvents(enc, items)
	if err != nil {
		return err
	}
	cmd.Println(rendered)
	return nil
}

func runMedications(cmd *cobra.Command, _ []string) error {
	enc, err := recordListSetup()
	if err != nil {
		return err
	}

	items, err := recordService.ListMedications(cmd.Context(), driving.MedicationFilter{
		PatientID:   recordPatientID,
		AdmissionID: recordAdmissionID,
		Medication:  medName,
		Route:       medRoute,
		Limit:       recordLimit,
	})
	if err != nil {
		return fmt.Errorf("listing medications: %w", err)
	}

	rendered, err := render.Medications(enc, items)
	if err != nil {
		return err
	}
	cmd.Println(rendered)
	return nil
}

func runProcedures(cmd *cobra.Command, _ []string) error {
	enc, err := recordListSetup()
	if err != nil {
		return err
	}

	items, err := recordService.ListProcedures(cmd.Context(), driving.ProcedureFilter{
		PatientID:   recordPatientID,
		AdmissionID: recordAdmissionID,
		Limit:       recordLimit,
	})
	if err != nil {
		return fmt.Errorf("listing procedures: %w", err)
	}

	rendered, err := render.Procedures(enc, items)
	if err != nil {
		return err
	}
	cmd.Println(rendered)
	return nil
}
