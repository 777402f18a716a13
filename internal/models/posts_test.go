package models

import (
	"reflect"
	"testing"
)

func TestTagsValueNeverNull(t *testing.T) {
	var nilTags Tags
	v, err := nilTags.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if string(v.([]byte)) != "[]" {
		t.Errorf("nil tags marshaled to %s, want []", v)
	}
}

func TestTagsScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want Tags
	}{
		{"null column", nil, Tags{}},
		{"empty bytes", []byte{}, Tags{}},
		{"json null", []byte("null"), Tags{}},
		{"bytes", []byte(`["nyc","food"]`), Tags{"nyc", "food"}},
		{"string", `["sunset"]`, Tags{"sunset"}},
		{"empty array", []byte(`[]`), Tags{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tags Tags
			if err := tags.Scan(tt.src); err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if tags == nil {
				t.Fatal("Scan produced nil tags")
			}
			if !reflect.DeepEqual(tags, tt.want) {
				t.Errorf("Scan(%v) = %v, want %v", tt.src, tags, tt.want)
			}
		})
	}
}

func TestTagsScanRejectsUnknownType(t *testing.T) {
	var tags Tags
	if err := tags.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}

func TestTagsRoundTrip(t *testing.T) {
	in := Tags{"nyc", "food", "sunset"}
	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var out Tags
	if err := out.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip = %v, want %v", out, in)
	}
}
