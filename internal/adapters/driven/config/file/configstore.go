package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/clinigraph/clinigraph/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// settingKind is the value type a configuration key accepts.
type settingKind int

const (
	stringSetting settingKind = iota
	intSetting
	boolSetting
	choiceSetting
)

// setting describes one known configuration key: its type, its default
// (nil when unset), and the allowed values for choice keys.
type setting struct {
	kind    settingKind
	def     any
	choices []string
}

// settings registers every key the CLI wiring reads. Set rejects keys not
// listed here, so a typo like "neo4j_url" fails loudly instead of being
// silently ignored. Defaults mirror the graph store, generation engine,
// and cache adapter defaults.
var settings = map[string]setting{
	"neo4j_uri":                   {kind: stringSetting, def: "bolt://localhost:7687"},
	"neo4j_username":              {kind: stringSetting, def: "neo4j"},
	"neo4j_password":              {kind: stringSetting},
	"neo4j_database":              {kind: stringSetting, def: "neo4j"},
	"neo4j_query_timeout_seconds": {kind: intSetting, def: int64(30)},
	"openai_api_key":              {kind: stringSetting},
	"openai_base_url":             {kind: stringSetting},
	"openai_model":                {kind: stringSetting, def: "gpt-4.1-nano"},
	"openai_requests_per_minute":  {kind: intSetting, def: int64(30)},
	"cache_backend":               {kind: choiceSetting, def: "memory", choices: []string{"memory", "sqlite", "off"}},
	"cache_ttl_minutes":           {kind: intSetting, def: int64(60)},
	"cache_data_dir":              {kind: stringSetting},
	"prompts_dir":                 {kind: stringSetting},
	"prompts_watch":               {kind: boolSetting, def: false},
	"schema_staleness_minutes":    {kind: intSetting, def: int64(30)},
}

// KnownKeys returns every recognized configuration key, sorted.
func KnownKeys() []string {
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ConfigStore persists clinigraph settings as a flat TOML document. Keys
// are validated and typed against the settings registry; reads fall back
// to per-key defaults.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore creates a TOML-based config store.
// If configDir is empty, defaults to ~/.clinigraph/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".clinigraph")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
		data:     make(map[string]any),
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get retrieves a stored value, falling back to the key's default.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	val, ok := s.data[key]
	s.mu.RUnlock()
	if ok {
		return val, true
	}
	if def := settings[key].def; def != nil {
		return def, true
	}
	return nil, false
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	val, ok := s.Get(key)
	if !ok {
		return ""
	}
	str, _ := val.(string)
	return str
}

// GetInt retrieves an integer configuration value.
func (s *ConfigStore) GetInt(key string) int {
	val, ok := s.Get(key)
	if !ok {
		return 0
	}
	// TOML integers are parsed as int64.
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	val, ok := s.Get(key)
	if !ok {
		return false
	}
	b, _ := val.(bool)
	return b
}

// Set validates and stores a configuration value, persisting immediately.
// String inputs for integer and boolean keys are parsed, so the config
// command can pass everything through as text.
func (s *ConfigStore) Set(key string, value any) error {
	normalized, err := normalizeValue(key, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = normalized
	return s.save()
}

// normalizeValue checks key against the settings registry and coerces the
// value to the key's type.
func normalizeValue(key string, value any) (any, error) {
	spec, ok := settings[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key %q (known keys: %s)",
			key, strings.Join(KnownKeys(), ", "))
	}

	switch spec.kind {
	case intSetting:
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		case string:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s must be an integer, got %q", key, v)
			}
			return n, nil
		}
		return nil, fmt.Errorf("%s must be an integer", key)

	case boolSetting:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("%s must be true or false, got %q", key, v)
			}
			return b, nil
		}
		return nil, fmt.Errorf("%s must be true or false", key)

	case choiceSetting:
		v, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be one of: %s", key, strings.Join(spec.choices, ", "))
		}
		v = strings.ToLower(strings.TrimSpace(v))
		for _, choice := range spec.choices {
			if v == choice {
				return v, nil
			}
		}
		return nil, fmt.Errorf("%s must be one of: %s, got %q", key, strings.Join(spec.choices, ", "), v)

	default:
		v, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be a string", key)
		}
		return v, nil
	}
}

// save writes the configuration to the TOML file (caller must hold lock).
// Credentials live here, so permissions stay restricted.
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(s.data)
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// load reads the configuration file. A missing file is an empty config.
func (s *ConfigStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]any)
			return nil
		}
		return err
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return err
	}
	if loaded == nil {
		loaded = make(map[string]any)
	}
	s.data = loaded
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
