package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clinigraph/clinigraph/internal/core/domain"
	"github.com/clinigraph/clinigraph/internal/render"
)

var (
	schemaRefresh bool
	schemaFormat  string
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the graph schema summary",
	Long: `Shows the introspected schema of the EHR graph: node labels with their
properties and index flags, and relationship types with their endpoints.

The summary is cached between introspections; use --refresh to force a new
snapshot after the graph structure changes.`,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaRefresh, "refresh", false, "discard the cached snapshot and introspect again")
	schemaCmd.Flags().StringVarP(&schemaFormat, "format", "f", "tabular", "output format: structured, tabular, or narrative")
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, _ []string) error {
	enc, err := domain.ParseEncoding(schemaFormat)
	if err != nil {
		return err
	}

	if err := ensureServices(); err != nil {
		return err
	}
	if schemaService == nil {
		return errServicesNotConfigured
	}

	var summary *domain.SchemaSummary
	if schemaRefresh {
		summary, err = schemaService.Refresh(cmd.Context())
	} else {
		summary, err = schemaService.Summary(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("introspecting schema: %w", err)
	}

	rendered, err := render.SchemaSummary(enc, summary)
	if err != nil {
		return err
	}
	cmd.Println(rendered)
	return nil
}
