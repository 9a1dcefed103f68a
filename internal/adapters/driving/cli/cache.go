package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Query cache commands",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached query",
	Long: `Drops every cached natural-language-to-Cypher translation. Subsequent
questions go back through generation and validation.`,
	RunE: runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	if answerService == nil {
		return errServicesNotConfigured
	}

	if err := answerService.InvalidateCache(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	cmd.Println("Query cache cleared.")
	return nil
}
