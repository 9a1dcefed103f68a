package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clinigraph/clinigraph/internal/core/domain"
	"github.com/clinigraph/clinigraph/internal/render"
)

var (
	askLimit  int
	askFormat string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a natural language question about the EHR graph",
	Long: `Translates a natural language question into a read-only Cypher query,
runs it against the graph, and renders the normalized results.

Generated queries are validated before execution: mutating clauses are
rejected and a LIMIT is injected when missing. Successful translations are
cached, except for questions using relative time ("yesterday", "this week")
whose meaning drifts.

Examples:
  clinigraph ask "how many patients are there?"
  clinigraph ask "most common diagnoses this admission type: EMERGENCY" --limit 5
  clinigraph ask "abnormal creatinine results" --format narrative`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", domain.DefaultAnswerLimit, "maximum number of results")
	askCmd.Flags().StringVarP(&askFormat, "format", "f", "structured", "output format: structured, tabular, or narrative")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	enc, err := domain.ParseEncoding(askFormat)
	if err != nil {
		return err
	}

	if err := ensureServices(); err != nil {
		return err
	}
	if answerService == nil {
		return errServicesNotConfigured
	}

	answer, err := answerService.Answer(cmd.Context(), args[0], askLimit)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	rendered, err := render.Answer(enc, answer)
	if err != nil {
		return err
	}
	cmd.Println(rendered)
	return nil
}
