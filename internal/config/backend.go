package config

// ConfigBackend abstracts platform-specific config storage.
// macOS uses UserDefaults (via `defaults` CLI), other platforms a JSON file
// under XDG_CONFIG_HOME. Values are stored as text and parsed per key.
type ConfigBackend interface {
	GetString(key string) (val string, ok bool, err error)
	SetString(key, val string) error
	DeleteKey(key string) error
	Flush() error
}
