package prefs

import "fmt"

// RegisterDefault records v as the default for key. The live entry and the
// key index are left alone; ResetOne applies the default later.
func (s *Store) RegisterDefault(key string, v Value) error {
	if err := s.check(key); err != nil {
		return err
	}
	if err := storable(v); err != nil {
		return err
	}
	if err := s.setDefault(key, v.String()); err != nil {
		return err
	}
	if err := s.b.Flush(); err != nil {
		return fmt.Errorf("flushing default of %q: %w", key, err)
	}
	return nil
}

// Default returns the raw default text registered for key.
func (s *Store) Default(key string) (string, bool, error) {
	if s.closed {
		return "", false, ErrClosed
	}
	text, ok, err := s.b.GetString(defaultSlot(key))
	if err != nil {
		return "", false, fmt.Errorf("reading default of %q: %w", key, err)
	}
	return text, ok, nil
}

// ResetOne saves the registered default of key through the normal save
// path, parsed under the key's current type. It reports false when key has
// no default. A default that does not parse is saved as the sentinel.
func (s *Store) ResetOne(key string) (bool, error) {
	text, ok, err := s.Default(key)
	if err != nil || !ok {
		return false, err
	}
	kind, err := s.kindOf(key)
	if err != nil {
		return false, err
	}
	v, parsed := Parse(kind, text)
	if !parsed {
		s.log.Warn("prefs: default does not parse, resetting to sentinel", "key", key, "type", kind, "default", text)
	}
	if err := s.SaveTyped(key, v); err != nil {
		return false, err
	}
	s.log.Debug("prefs: reset to default", "key", key)
	return true, nil
}

// ResetAll applies ResetOne to every listed key and returns how many keys
// had a default.
func (s *Store) ResetAll() (int, error) {
	keys, err := s.ListKeys()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, key := range keys {
		ok, err := s.ResetOne(key)
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (s *Store) setDefault(key, text string) error {
	if err := s.b.SetString(defaultSlot(key), text); err != nil {
		return fmt.Errorf("writing default of %q: %w", key, err)
	}
	return nil
}
