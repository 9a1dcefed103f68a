package driven

// ConfigStore provides access to application configuration: graph store
// credentials, generation engine settings, cache backend selection, and
// prompt directory overrides. Implementations handle persistence, typed
// access, and per-key validation.
type ConfigStore interface {
	// Get retrieves a configuration value by key. Returns the stored value,
	// or the key's default, and whether either exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if the key is unset and has no default.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	// Returns 0 if the key is unset and has no default.
	GetInt(key string) int

	// GetBool retrieves a boolean configuration value.
	// Returns false if the key is unset and has no default.
	GetBool(key string) bool

	// Set validates, stores, and persists a configuration value. Unknown
	// keys and values that fail the key's validation are rejected.
	Set(key string, value any) error

	// Path returns the configuration file path.
	Path() string
}
