package prefs

import (
	"fmt"
	"slices"
	"strings"
)

// keyIndex is the ordered list of registered keys, stored comma-joined
// under IndexKey.
type keyIndex struct {
	b Backend
}

// ensure seeds the placeholder when no index exists yet. It reports
// whether it wrote anything.
func (x keyIndex) ensure() (bool, error) {
	ok, err := x.b.HasKey(IndexKey)
	if err != nil {
		return false, fmt.Errorf("checking key index: %w", err)
	}
	if ok {
		return false, nil
	}
	if err := x.b.SetString(IndexKey, Placeholder); err != nil {
		return false, fmt.Errorf("seeding key index: %w", err)
	}
	return true, nil
}

// List returns the registered keys in insertion order. The placeholder is
// hidden as soon as any real key is present.
func (x keyIndex) List() ([]string, error) {
	raw, _, err := x.b.GetString(IndexKey)
	if err != nil {
		return nil, fmt.Errorf("reading key index: %w", err)
	}
	keys := splitIndex(raw)
	if len(keys) > 1 && slices.Contains(keys, Placeholder) {
		keys = slices.DeleteFunc(keys, func(k string) bool { return k == Placeholder })
	}
	return keys, nil
}

// Register appends key unless it is already present. The stored list is
// rewritten without the placeholder.
func (x keyIndex) Register(key string) error {
	keys, err := x.List()
	if err != nil {
		return err
	}
	if slices.Contains(keys, key) {
		return nil
	}
	keys = slices.DeleteFunc(keys, func(k string) bool { return k == Placeholder })
	keys = append(keys, key)
	return x.write(keys)
}

// Unregister removes key. Unknown keys are ignored.
func (x keyIndex) Unregister(key string) error {
	keys, err := x.List()
	if err != nil {
		return err
	}
	i := slices.Index(keys, key)
	if i < 0 {
		return nil
	}
	return x.write(slices.Delete(keys, i, i+1))
}

func (x keyIndex) write(keys []string) error {
	if err := x.b.SetString(IndexKey, strings.Join(keys, ",")); err != nil {
		return fmt.Errorf("writing key index: %w", err)
	}
	return nil
}

func splitIndex(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// isPlaceholderOnly reports whether keys is the untouched initial index.
func isPlaceholderOnly(keys []string) bool {
	return len(keys) == 1 && keys[0] == Placeholder
}
