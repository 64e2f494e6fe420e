package internal

import (
	"reflect"
	"testing"
)

func TestParseRawMessageRecord(t *testing.T) {
	rec, err := ParseRawMessageRecord("bubbleId:session-1:msg-9",
		[]byte(`{"type":2,"thinking":{"text":"checking the schema"}}`))
	if err != nil {
		t.Fatalf("ParseRawMessageRecord() error = %v", err)
	}

	if rec.SessionID != "session-1" || rec.MessageID != "msg-9" {
		t.Errorf("ids = %q/%q", rec.SessionID, rec.MessageID)
	}
	if rec.Role != RoleAssistant {
		t.Errorf("role = %v", rec.Role)
	}
	if rec.Thinking == nil || rec.Thinking.Text != "checking the schema" {
		t.Errorf("thinking = %+v", rec.Thinking)
	}
}

func TestParseRawMessageRecordInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"wrong prefix", "composerData:x", `{}`},
		{"missing message id", "bubbleId:session-only", `{}`},
		{"invalid json", "bubbleId:s:m", `{not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRawMessageRecord(tt.key, []byte(tt.value)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSplitStorageKey(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		prefix string
		want   []string
	}{
		{"two parts", "bubbleId:abc:def", "bubbleId:", []string{"abc", "def"}},
		{"one part", "composerData:abc", "composerData:", []string{"abc"}},
		{"no prefix match", "other:abc", "bubbleId:", nil},
		{"empty remainder", "bubbleId:", "bubbleId:", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitStorageKey(tt.key, tt.prefix); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitStorageKey(%q, %q) = %v, want %v", tt.key, tt.prefix, got, tt.want)
			}
		})
	}
}

func TestSchemaKindString(t *testing.T) {
	tests := []struct {
		kind SchemaKind
		want string
	}{
		{SchemaLegacy, "legacy"},
		{SchemaSessionOriented, "session-oriented"},
		{SchemaUnknown, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestRoleString(t *testing.T) {
	if RoleUser.String() != "user" || RoleAssistant.String() != "assistant" {
		t.Error("role strings mismatch")
	}
	if Role(9).String() != "unknown" {
		t.Error("unrecognized role should stringify as unknown")
	}
}
