// Package cli implements the clinigraph command-line interface using cobra.
// Commands wire the driven adapters into the core services on first use, so
// cheap commands like version never touch the graph store or generation
// engine.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	auditmem "github.com/clinigraph/clinigraph/internal/adapters/driven/audit/memory"
	"github.com/clinigraph/clinigraph/internal/adapters/driven/cache/memory"
	"github.com/clinigraph/clinigraph/internal/adapters/driven/cache/sqlite"
	"github.com/clinigraph/clinigraph/internal/adapters/driven/config/file"
	"github.com/clinigraph/clinigraph/internal/adapters/driven/graph/neo4j"
	"github.com/clinigraph/clinigraph/internal/adapters/driven/llm/openai"
	"github.com/clinigraph/clinigraph/internal/core/ports/driven"
	"github.com/clinigraph/clinigraph/internal/core/ports/driving"
	"github.com/clinigraph/clinigraph/internal/core/services"
	"github.com/clinigraph/clinigraph/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	verbose   bool
	configDir string
)

// Wired services. Tests inject mocks here; ensureServices skips wiring
// when they are already set.
var (
	answerService driving.AnswerService
	schemaService driving.SchemaService
	recordService driving.RecordService
	configStore   driven.ConfigStore

	graphStore  *neo4j.Store
	promptStore *file.PromptStore
)

var rootCmd = &cobra.Command{
	Use:   "clinigraph",
	Short: "Natural language querying over a clinical property graph",
	Long: `clinigraph answers natural language questions about electronic health
records stored in a Neo4j property graph. Questions are translated into
read-only Cypher queries, validated, executed, and rendered in structured,
tabular, or narrative form.

Fixed-shape retrieval commands (patient, notes, listings) query the graph
directly without the language model.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.clinigraph)")
}

// Execute runs the root command.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// ensureServices wires the driven adapters into the core services. Safe to
// call from multiple commands; wiring happens once.
func ensureServices() error {
	if answerService != nil && recordService != nil {
		return nil
	}

	cfg, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	configStore = cfg

	store, err := neo4j.NewStore(neo4j.Config{
		URI:          configValue(cfg, "neo4j_uri", "NEO4J_URI"),
		Username:     configValue(cfg, "neo4j_username", "NEO4J_USERNAME"),
		Password:     configValue(cfg, "neo4j_password", "NEO4J_PASSWORD"),
		Database:     configValue(cfg, "neo4j_database", "NEO4J_DATABASE"),
		QueryTimeout: time.Duration(cfg.GetInt("neo4j_query_timeout_seconds")) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("connecting to graph store: %w", err)
	}
	graphStore = store

	staleness := time.Duration(cfg.GetInt("schema_staleness_minutes")) * time.Minute
	schema := services.NewSchemaService(store, staleness)
	schemaService = schema

	engine := buildGenerationEngine(cfg)
	generator := services.NewGenerator(engine)
	if prompts, err := file.NewPromptStore(cfg.GetString("prompts_dir")); err == nil {
		promptStore = prompts
		generator.SetPromptStore(prompts)
		if cfg.GetBool("prompts_watch") {
			if err := prompts.Watch(); err != nil {
				logger.Warn("Prompt watching disabled: %v", err)
			}
		}
	}

	answer := services.NewAnswerService(schema, generator, store, buildQueryCache(cfg))
	answer.SetAuditSink(auditmem.NewSink(auditmem.WithDebugLog()))
	if promptStore != nil {
		answer.SetPromptStore(promptStore)
	}
	answerService = answer

	records := services.NewRecordService(store)
	if embedder, ok := engine.(driven.Embedder); ok {
		records.SetEmbedder(embedder)
	}
	recordService = records

	return nil
}

// buildGenerationEngine creates the OpenAI adapter, or nil when no API key
// is configured. Natural language commands fail with a clear error; the
// fixed-shape commands keep working.
func buildGenerationEngine(cfg driven.ConfigStore) driven.QueryGenerator {
	apiKey := configValue(cfg, "openai_api_key", "OPENAI_API_KEY")
	if apiKey == "" {
		return nil
	}

	engine, err := openai.NewGenerator(openai.Config{
		APIKey:            apiKey,
		BaseURL:           configValue(cfg, "openai_base_url", "OPENAI_BASE_URL"),
		Model:             configValue(cfg, "openai_model", "OPENAI_MODEL"),
		RequestsPerMinute: cfg.GetInt("openai_requests_per_minute"),
	})
	if err != nil {
		logger.Warn("Generation engine unavailable: %v", err)
		return nil
	}
	return engine
}

// buildQueryCache creates the configured cache backend. Unknown backends
// fall back to in-memory; "off" disables caching entirely.
func buildQueryCache(cfg driven.ConfigStore) driven.QueryCache {
	ttl := time.Duration(cfg.GetInt("cache_ttl_minutes")) * time.Minute

	switch cfg.GetString("cache_backend") {
	case "off":
		return nil
	case "sqlite":
		cache, err := sqlite.NewQueryCache(cfg.GetString("cache_data_dir"), ttl)
		if err != nil {
			logger.Warn("SQLite cache unavailable, using in-memory: %v", err)
			return memory.NewQueryCache(ttl)
		}
		return cache
	default:
		return memory.NewQueryCache(ttl)
	}
}

// configValue reads a config key with an environment variable override.
func configValue(cfg driven.ConfigStore, key, envVar string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return cfg.GetString(key)
}

func closeServices() {
	if promptStore != nil {
		promptStore.Close() //nolint:errcheck
	}
	if graphStore != nil {
		graphStore.Close(context.Background()) //nolint:errcheck
	}
}

// errServicesNotConfigured is returned by commands when wiring was skipped
// and no test injection happened.
var errServicesNotConfigured = errors.New("services not configured")
