package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clinigraph/clinigraph/internal/adapters/driven/config/file"
	"github.com/clinigraph/clinigraph/internal/core/ports/driven"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and set configuration values.

Known keys:
  neo4j_uri                     Neo4j connection URI (bolt:// or neo4j://)
  neo4j_username                Neo4j username
  neo4j_password                Neo4j password
  neo4j_database                Neo4j database name (default "neo4j")
  neo4j_query_timeout_seconds   Per-query execution timeout
  openai_api_key                OpenAI API key
  openai_base_url               OpenAI-compatible API base URL
  openai_model                  Generation model (default "gpt-4.1-nano")
  openai_requests_per_minute    Outbound generation call cap
  cache_backend                 Query cache backend: memory, sqlite, or off
  cache_ttl_minutes             Cache entry lifetime
  cache_data_dir                SQLite cache directory
  prompts_dir                   Custom prompt directory
  prompts_watch                 Reload prompts on file change (true/false)
  schema_staleness_minutes      Schema snapshot lifetime

Environment variables (NEO4J_URI, NEO4J_USERNAME, NEO4J_PASSWORD,
NEO4J_DATABASE, OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_MODEL) override
the stored values.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// ensureConfigStore opens the config store without connecting to the
// graph; config commands must work before a store is reachable.
func ensureConfigStore() (driven.ConfigStore, error) {
	if configStore != nil {
		return configStore, nil
	}
	cfg, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	configStore = cfg
	return cfg, nil
}

// secretKeys are masked in config show output.
var secretKeys = map[string]bool{
	"neo4j_password": true,
	"openai_api_key": true,
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := ensureConfigStore()
	if err != nil {
		return err
	}

	keys := file.KnownKeys()

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	for _, key := range keys {
		val, ok := cfg.Get(key)
		if !ok {
			continue
		}
		display := fmt.Sprint(val)
		if secretKeys[key] {
			display = maskSecret(display)
		}
		cmd.Printf("  %s = %s\n", key, display)
	}
	cmd.Println()
	cmd.Printf("Config file: %s\n", cfg.Path())
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, err := ensureConfigStore()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := cfg.Set(key, value); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}

	display := value
	if secretKeys[key] {
		display = maskSecret(value)
	}
	cmd.Printf("Set %s = %s\n", key, display)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	cfg, err := ensureConfigStore()
	if err != nil {
		return err
	}
	cmd.Println(cfg.Path())
	return nil
}

// maskSecret hides all but the last four characters of a secret.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
