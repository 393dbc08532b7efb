package prefs

import "fmt"

// Record is one exported setting.
type Record struct {
	Key     string  `json:"key" yaml:"key"`
	Value   Value   `json:"value" yaml:"value"`
	Default *string `json:"default,omitempty" yaml:"default,omitempty"`
}

// Export returns every listed key with its value and default, in index
// order.
func (s *Store) Export() ([]Record, error) {
	keys, err := s.ListKeys()
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(keys))
	for _, key := range keys {
		if key == Placeholder {
			continue
		}
		v, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		rec := Record{Key: key, Value: v}
		if text, ok, err := s.Default(key); err != nil {
			return nil, err
		} else if ok {
			rec.Default = &text
		}
		records = append(records, rec)
	}
	return records, nil
}

// Import saves every record, registering defaults where present. It stops
// at the first failure.
func (s *Store) Import(records []Record) error {
	for _, rec := range records {
		if err := s.SaveTyped(rec.Key, rec.Value); err != nil {
			return fmt.Errorf("importing %q: %w", rec.Key, err)
		}
		if rec.Default == nil {
			continue
		}
		if err := s.setDefault(rec.Key, *rec.Default); err != nil {
			return err
		}
		if err := s.b.Flush(); err != nil {
			return fmt.Errorf("flushing default of %q: %w", rec.Key, err)
		}
	}
	return nil
}
