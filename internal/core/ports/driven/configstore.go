package driven

// ConfigStore provides persistent key-value configuration.
// Keys use dotted paths, e.g. "llm.provider" or "retrieval.top_k".
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns "" if the key is missing or not a string.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	// Returns 0 if the key is missing or not an integer.
	GetInt(key string) int

	// GetBool retrieves a boolean configuration value.
	// Returns false if the key is missing or not a boolean.
	GetBool(key string) bool

	// Set stores a configuration value and persists it.
	Set(key string, value any) error

	// Load re-reads configuration from the backing store.
	Load() error
}
