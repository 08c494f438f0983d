package arcid

import (
	"strings"
	"testing"
)

func TestGenerateKnownValues(t *testing.T) {
	tests := []struct {
		name     string
		parts    []any
		expected string
	}{
		{"single string", []any{"abc123"}, "K7MUMMS7VF7S24QQK6CBUHD274"},
		{"nested pair", []any{[]any{"abc123", "myorg"}}, "2RW5JYT4YTKA4CZY6P4CZT6LMQ"},
		{"nested numeric string", []any{[]any{"123", "myorg"}}, "KQF3BQE3SW26QXPIJFGYUC7TSM"},
		{"nested integer", []any{[]any{123, "myorg"}}, "22LQ4EK6ODJ3U3U5DRHUSQIREM"},
		{"source and org", []any{"abc123", "myorg"}, "Y6LNM3BS6XOBZGSCZXJARW2HZM"},
		{"numeric string and org", []any{"123", "myorg"}, "CT7YPVGHDSXKGIVDMBZESQX6XI"},
		{"integer and org", []any{123, "myorg"}, "YUBDY7SVKQKQ4NHYXU6DIPQACY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Generate(tt.parts...)
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if id != tt.expected {
				t.Errorf("Expected id '%s', got '%s'", tt.expected, id)
			}
		})
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	first := MustGenerate("story-1", "myorg")
	second := MustGenerate("story-1", "myorg")
	if first != second {
		t.Errorf("Expected equal ids for equal input, got '%s' and '%s'", first, second)
	}

	other := MustGenerate("story-1", "otherorg")
	if first == other {
		t.Errorf("Expected different ids for different orgs, got '%s' for both", first)
	}
}

func TestGenerateFormat(t *testing.T) {
	id := MustGenerate("photo-1", "myorg")

	if len(id) != 26 {
		t.Fatalf("Expected 26-character id, got %d", len(id))
	}
	if strings.Contains(id, "=") {
		t.Error("Expected no padding")
	}
	for _, r := range id {
		if (r < 'A' || r > 'Z') && (r < '2' || r > '7') {
			t.Fatalf("Unexpected character %q in id", r)
		}
	}

	decoded, err := encoding.DecodeString(id)
	if err != nil {
		t.Fatalf("Expected decodable id, got: %v", err)
	}
	if len(decoded) != 16 {
		t.Errorf("Expected 16 decoded bytes, got %d", len(decoded))
	}
}

func TestCanonicalJSONEscapesNonASCII(t *testing.T) {
	out, err := canonicalJSON([]any{[]any{"café", "<b>"}, map[string]any{}})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := `[["caf\u00e9","<b>"],{}]`
	if string(out) != expected {
		t.Errorf("Expected %s, got %s", expected, string(out))
	}
}

func TestGenerateRejectsUnserializableParts(t *testing.T) {
	if _, err := Generate(make(chan int)); err == nil {
		t.Error("Expected error for unserializable part")
	}
}
