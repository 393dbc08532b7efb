package prefs

// Backend is the string-keyed blob store a Store persists into.
// Implementations live in internal/backend.
type Backend interface {
	HasKey(key string) (bool, error)
	GetString(key string) (val string, ok bool, err error)
	SetString(key, val string) error
	DeleteKey(key string) error
	// Flush makes previous writes durable.
	Flush() error
}

// Persisted key layout. These names are shared with existing stores and
// must not change.
const (
	IndexKey      = "PlayerPrefs_Keys"
	TypeSuffix    = "_type"
	DefaultSuffix = "_default"

	// Placeholder is the index content of a store that never had a key.
	Placeholder = "None"
)

func typeSlot(key string) string    { return key + TypeSuffix }
func defaultSlot(key string) string { return key + DefaultSuffix }
