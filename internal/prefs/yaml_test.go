package prefs

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestRecordsYAMLRoundTrip(t *testing.T) {
	def := "0.5"
	when := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	records := []Record{
		{Key: "name", Value: String("true")},
		{Key: "volume", Value: Float(0.75), Default: &def},
		{Key: "launches", Value: Int(3)},
		{Key: "synced", Value: Time(when)},
		{Key: "limit", Value: Float(math.Inf(1))},
	}

	data, err := MarshalRecordsYAML(records)
	if err != nil {
		t.Fatalf("MarshalRecordsYAML: %v", err)
	}
	if !strings.Contains(string(data), "type: DateTime") {
		t.Errorf("yaml missing type tag:\n%s", data)
	}

	got, err := UnmarshalRecordsYAML(data)
	if err != nil {
		t.Fatalf("UnmarshalRecordsYAML: %v\n%s", err, data)
	}
	if len(got) != len(records) {
		t.Fatalf("got %d records, want %d", len(got), len(records))
	}
	for i := range records {
		if got[i].Key != records[i].Key || !got[i].Value.Equal(records[i].Value) {
			t.Errorf("record %d = %+v, want %+v", i, got[i], records[i])
		}
	}
	if got[0].Value.Kind() != KindString {
		t.Errorf("String(\"true\") came back as %s", got[0].Value.Kind())
	}
	if got[1].Default == nil || *got[1].Default != "0.5" {
		t.Errorf("volume default = %v", got[1].Default)
	}
}

func TestRecordsYAMLRejectsBadValue(t *testing.T) {
	_, err := UnmarshalRecordsYAML([]byte("- key: n\n  value:\n    type: Int\n    value: lots\n"))
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("error = %v, want ErrInvalidValue", err)
	}
	if err != nil && !strings.Contains(err.Error(), "line") {
		t.Errorf("error = %q, want a line number", err)
	}
}
