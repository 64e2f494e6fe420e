package internal

import (
	"encoding/json"
	"fmt"
	"time"
)

// SchemaKind identifies which storage generation a database uses.
type SchemaKind int

const (
	SchemaUnknown SchemaKind = iota
	SchemaLegacy
	SchemaSessionOriented
)

func (k SchemaKind) String() string {
	switch k {
	case SchemaLegacy:
		return "legacy"
	case SchemaSessionOriented:
		return "session-oriented"
	default:
		return "unknown"
	}
}

// Role identifies who authored a message. Values match the on-disk type tag.
type Role int

const (
	RoleUser      Role = 1
	RoleAssistant Role = 2
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// WorkspaceDescriptor correlates a filesystem project to one physical
// workspace storage directory. One project can map to several descriptors
// because the application rotates/archives workspace directories.
type WorkspaceDescriptor struct {
	RootPath        string // candidate root the workspace was found under
	WorkspaceID     string // directory hash under workspaceStorage
	ProjectPathHint string // folder recorded in workspace.json, if any
}

// DatabaseHandle is a validated, read-only handle to one state.vscdb file.
// Never mutated after discovery.
type DatabaseHandle struct {
	Path         string
	LastModified time.Time
	Kind         SchemaKind
}

// SessionRecord is one logical conversation from the session-oriented schema.
type SessionRecord struct {
	SessionID   string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	MessageRefs []MessageRef // ordered as stored
}

// MessageRef points at one message record in the global store.
type MessageRef struct {
	MessageID string
	Role      Role
}

// RawMessageRecord is one persisted message as stored. Content lives in
// different fields depending on role: user text in Text, assistant reasoning
// in Thinking.Text, tool calls in ToolCall. At most one is populated per the
// source application's conventions, which is why extraction is a priority
// chain rather than a single field read.
type RawMessageRecord struct {
	MessageID string        `json:"-"`
	SessionID string        `json:"-"`
	Role      Role          `json:"type"`
	Text      string        `json:"text,omitempty"`
	Thinking  *ThinkingPart `json:"thinking,omitempty"`
	ToolCall  *ToolCallPart `json:"toolFormerData,omitempty"`
}

// ThinkingPart holds assistant reasoning text.
type ThinkingPart struct {
	Text string `json:"text,omitempty"`
}

// ToolCallPart holds a structured tool invocation.
type ToolCallPart struct {
	Tool   string `json:"tool,omitempty"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status,omitempty"`
}

// DisplayName returns the best available name for the invoked tool.
func (t *ToolCallPart) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Tool
}

// ParseRawMessageRecord parses a global-store value keyed
// bubbleId:<sessionId>:<messageId> into a RawMessageRecord.
func ParseRawMessageRecord(key string, value []byte) (*RawMessageRecord, error) {
	parts := splitStorageKey(key, "bubbleId:")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid bubbleId key format: %s", key)
	}

	var rec RawMessageRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse message record JSON: %w", err)
	}

	rec.SessionID = parts[0]
	rec.MessageID = parts[1]
	return &rec, nil
}

// LegacyPrompt is one user-authored entry from the aiService.prompts list.
// The legacy format stores no timestamps for prompts.
type LegacyPrompt struct {
	Text        string `json:"text"`
	CommandType int    `json:"commandType,omitempty"`
}

// LegacyGeneration is one AI-authored entry from the aiService.generations
// list. Unlike prompts, generations are timestamped.
type LegacyGeneration struct {
	UnixMS          int64  `json:"unixMs"`
	GenerationUUID  string `json:"generationUUID,omitempty"`
	Type            string `json:"type,omitempty"`
	TextDescription string `json:"textDescription,omitempty"`
}

// Time returns the generation timestamp, zero when unset.
func (g LegacyGeneration) Time() time.Time {
	if g.UnixMS == 0 {
		return time.Time{}
	}
	return time.UnixMilli(g.UnixMS)
}

// ReconstructedMessage is the engine's derived message form. Individual
// records carry no timestamp in this storage format, so Timestamp is
// inherited from the owning session (zero for legacy user prompts).
type ReconstructedMessage struct {
	SessionID  string    `json:"session_id,omitempty"`
	MessageID  string    `json:"message_id,omitempty"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	SessionSeq int       `json:"-"` // session creation order, for the deterministic sort
	RefSeq     int       `json:"-"` // message position within the session
}

// TimeWindow is the inclusive commit-bounded range used to scope history.
type TimeWindow struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Strategy string    `json:"strategy"` // "commit-window", "fallback-24h", "explicit"
}

// Contains reports whether ts falls inside the inclusive window. Messages
// with no timestamp (legacy prompts) are retained: they cannot be attributed
// to any window, and dropping them would lose half of a legacy conversation.
func (w TimeWindow) Contains(ts time.Time) bool {
	if ts.IsZero() {
		return true
	}
	return !ts.Before(w.Start) && !ts.After(w.End)
}

// Inverted reports whether End precedes Start. An inverted window matches no
// timestamped message; a zero-width window still contains its boundary.
func (w TimeWindow) Inverted() bool {
	return w.End.Before(w.Start)
}

// DatabaseFailure records one database that could not contribute results.
type DatabaseFailure struct {
	Path     string `json:"path"`
	Category string `json:"category"`
	Detail   string `json:"detail,omitempty"`
}

// WorkspaceInfo aggregates extraction metadata for observability.
type WorkspaceInfo struct {
	SearchedPaths     []string          `json:"searched_paths"`
	SelectedDatabases []string          `json:"selected_databases"`
	FailedDatabases   []DatabaseFailure `json:"failed_databases,omitempty"`
	TotalMessages     int               `json:"total_messages"`
	TimeWindow        TimeWindow        `json:"time_window"`
}

// ChatHistoryResult is the engine's terminal output. It is always a valid,
// possibly-empty structure; the engine never raises an error across its
// public boundary.
type ChatHistoryResult struct {
	WorkspaceInfo WorkspaceInfo          `json:"workspace_info"`
	Messages      []ReconstructedMessage `json:"messages"`
}

// splitStorageKey strips prefix from key and splits the remainder on ":".
// Returns nil if key does not start with prefix.
func splitStorageKey(key, prefix string) []string {
	if len(key) < len(prefix) || key[:len(prefix)] != prefix {
		return nil
	}
	remainder := key[len(prefix):]
	var parts []string
	start := 0
	for i := 0; i < len(remainder); i++ {
		if remainder[i] == ':' {
			parts = append(parts, remainder[start:i])
			start = i + 1
		}
	}
	parts = append(parts, remainder[start:])
	return parts
}
