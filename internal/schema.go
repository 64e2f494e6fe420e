package internal

import (
	"encoding/json"
	"fmt"
	"time"
)

// Storage keys for the two supported schema generations.
const (
	keySessionIndex      = "composer.composerData"
	keyLegacyPrompts     = "aiService.prompts"
	keyLegacyGenerations = "aiService.generations"
)

// Extraction is the raw output of reading one workspace database. Exactly
// one of the per-schema sections is populated, matching Kind.
type Extraction struct {
	Kind SchemaKind

	// Session-oriented schema.
	Sessions []SessionRecord
	Records  map[string]*RawMessageRecord // keyed "<sessionID>:<messageID>"

	// Legacy flat schema.
	Prompts     []LegacyPrompt
	Generations []LegacyGeneration
}

// DetectSchema probes a workspace database for its storage generation. The
// session index key is tried first; if absent or empty, the legacy keys; if
// neither is present the database is Unknown, which is a valid terminal
// state rather than an error.
func DetectSchema(ws *Executor) (SchemaKind, error) {
	value, ok, err := ws.QueryValue("ItemTable", keySessionIndex)
	if err != nil {
		return SchemaUnknown, err
	}
	if ok {
		var index sessionIndex
		if err := json.Unmarshal(value, &index); err == nil && len(index.AllComposers) > 0 {
			return SchemaSessionOriented, nil
		}
	}

	for _, key := range []string{keyLegacyPrompts, keyLegacyGenerations} {
		_, ok, err := ws.QueryValue("ItemTable", key)
		if err != nil {
			return SchemaUnknown, err
		}
		if ok {
			return SchemaLegacy, nil
		}
	}

	return SchemaUnknown, nil
}

// ExtractRaw detects the schema of ws and pulls its raw records. Session
// message bodies live in the global store, so global may be consulted; a nil
// global executor degrades to sessions with unresolved (empty) records
// rather than failing.
func ExtractRaw(ws, global *Executor) (*Extraction, error) {
	kind, err := DetectSchema(ws)
	if err != nil {
		return nil, err
	}

	switch kind {
	case SchemaSessionOriented:
		return extractSessionOriented(ws, global)
	case SchemaLegacy:
		return extractLegacy(ws)
	default:
		LogDebug("unrecognized schema in %s, returning empty extraction", ws.Path())
		return &Extraction{Kind: SchemaUnknown}, nil
	}
}

// sessionIndex mirrors the composer.composerData JSON payload.
type sessionIndex struct {
	AllComposers []sessionHeader `json:"allComposers"`
}

type sessionHeader struct {
	ComposerID                  string       `json:"composerId"`
	Name                        string       `json:"name,omitempty"`
	CreatedAt                   int64        `json:"createdAt,omitempty"`
	LastUpdatedAt               int64        `json:"lastUpdatedAt,omitempty"`
	FullConversationHeadersOnly []messageRef `json:"fullConversationHeadersOnly,omitempty"`
}

type messageRef struct {
	BubbleID string `json:"bubbleId"`
	Type     int    `json:"type"`
}

func extractSessionOriented(ws, global *Executor) (*Extraction, error) {
	value, ok, err := ws.QueryValue("ItemTable", keySessionIndex)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Extraction{Kind: SchemaSessionOriented}, nil
	}

	var index sessionIndex
	if err := json.Unmarshal(value, &index); err != nil {
		return nil, &SchemaError{Path: ws.Path(), Kind: SchemaSessionOriented,
			Err: fmt.Errorf("failed to parse session index: %w", err)}
	}

	ext := &Extraction{
		Kind:    SchemaSessionOriented,
		Records: make(map[string]*RawMessageRecord),
	}

	for _, header := range index.AllComposers {
		session := SessionRecord{
			SessionID:   header.ComposerID,
			DisplayName: header.Name,
			CreatedAt:   millisToTime(header.CreatedAt),
			UpdatedAt:   millisToTime(header.LastUpdatedAt),
		}
		for _, ref := range header.FullConversationHeadersOnly {
			session.MessageRefs = append(session.MessageRefs, MessageRef{
				MessageID: ref.BubbleID,
				Role:      Role(ref.Type),
			})
		}
		ext.Sessions = append(ext.Sessions, session)

		if global == nil {
			continue
		}
		for _, ref := range session.MessageRefs {
			rec, err := lookupMessageRecord(global, session.SessionID, ref.MessageID)
			if err != nil {
				// One unreadable record shouldn't sink the session.
				LogDebug("message lookup failed for %s:%s: %v", session.SessionID, ref.MessageID, err)
				continue
			}
			if rec != nil {
				ext.Records[session.SessionID+":"+ref.MessageID] = rec
			}
		}
	}

	return ext, nil
}

// lookupMessageRecord fetches one message body from the global store.
// Missing records return (nil, nil): session headers can reference messages
// whose bodies have not been flushed yet.
func lookupMessageRecord(global *Executor, sessionID, messageID string) (*RawMessageRecord, error) {
	key := fmt.Sprintf("bubbleId:%s:%s", sessionID, messageID)
	value, ok, err := global.QueryValue("cursorDiskKV", key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	rec, err := ParseRawMessageRecord(key, value)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func extractLegacy(ws *Executor) (*Extraction, error) {
	ext := &Extraction{Kind: SchemaLegacy}

	if value, ok, err := ws.QueryValue("ItemTable", keyLegacyPrompts); err != nil {
		return nil, err
	} else if ok {
		if err := json.Unmarshal(value, &ext.Prompts); err != nil {
			LogWarn("failed to parse %s in %s: %v", keyLegacyPrompts, ws.Path(), err)
		}
	}

	if value, ok, err := ws.QueryValue("ItemTable", keyLegacyGenerations); err != nil {
		return nil, err
	} else if ok {
		if err := json.Unmarshal(value, &ext.Generations); err != nil {
			LogWarn("failed to parse %s in %s: %v", keyLegacyGenerations, ws.Path(), err)
		}
	}

	return ext, nil
}

func millisToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
