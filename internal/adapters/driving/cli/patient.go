package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clinigraph/clinigraph/internal/core/domain"
	"github.com/clinigraph/clinigraph/internal/core/ports/driving"
	"github.com/clinigraph/clinigraph/internal/render"
)

var (
	patientAdmissions  bool
	patientDiagnoses   bool
	patientProcedures  bool
	patientMedications bool
	patientLabEvents   bool
	patientAll         bool
	patientFormat      string
)

var patientCmd = &cobra.Command{
	Use:   "patient [subject-id]",
	Short: "Show a patient summary",
	Long: `Retrieves a patient's demographics, optionally with admissions,
diagnoses, procedures, medications, and lab events.

Examples:
  clinigraph patient 10000032
  clinigraph patient 10000032 --admissions --diagnoses
  clinigraph patient 10000032 --all --format narrative`,
	Args: cobra.ExactArgs(1),
	RunE: runPatient,
}

func init() {
	patientCmd.Flags().BoolVar(&patientAdmissions, "admissions", false, "include hospital admissions")
	patientCmd.Flags().BoolVar(&patientDiagnoses, "diagnoses", false, "include ICD diagnoses")
	patientCmd.Flags().BoolVar(&patientProcedures, "procedures", false, "include ICD procedures")
	patientCmd.Flags().BoolVar(&patientMedications, "medications", false, "include medications")
	patientCmd.Flags().BoolVar(&patientLabEvents, "lab-events", false, "include lab events")
	patientCmd.Flags().BoolVar(&patientAll, "all", false, "include every section")
	patientCmd.Flags().StringVarP(&patientFormat, "format", "f", "structured", "output format: structured, tabular, or narrative")
	rootCmd.AddCommand(patientCmd)
}

func runPatient(cmd *cobra.Command, args []string) error {
	enc, err := domain.ParseEncoding(patientFormat)
	if err != nil {
		return err
	}

	if err := ensureServices(); err != nil {
		return err
	}
	if recordService == nil {
		return errServicesNotConfigured
	}

	opts := driving.PatientOptions{
		IncludeAdmissions:  patientAdmissions || patientAll,
		IncludeDiagnoses:   patientDiagnoses || patientAll,
		IncludeProcedures:  patientProcedures || patientAll,
		IncludeMedications: patientMedications || patientAll,
		IncludeLabEvents:   patientLabEvents || patientAll,
	}
	record, err := recordService.GetPatient(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("retrieving patient: %w", err)
	}

	rendered, err := render.PatientRecord(enc, record)
	if err != nil {
		return err
	}
	cmd.Println(rendered)
	return nil
}
