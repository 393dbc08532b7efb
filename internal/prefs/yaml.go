package prefs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlValue keeps the value as text so DateTime and special floats survive
// without YAML's own type resolution.
type yamlValue struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

func (v Value) MarshalYAML() (any, error) {
	return yamlValue{Type: v.kind.String(), Value: Format(v)}, nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw yamlValue
	if err := node.Decode(&raw); err != nil {
		return err
	}
	kind, err := KindFromName(raw.Type)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	parsed, err := ParseStrict(kind, raw.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = parsed
	return nil
}

// MarshalRecordsYAML renders records as a YAML sequence.
func MarshalRecordsYAML(records []Record) ([]byte, error) {
	return yaml.Marshal(records)
}

// UnmarshalRecordsYAML parses a YAML sequence of records.
func UnmarshalRecordsYAML(data []byte) ([]Record, error) {
	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}
