package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// ExtractContent pulls displayable content out of a raw message record using
// a fixed field-priority order, stopping at the first non-empty match:
//
//  1. direct text field (user messages)
//  2. reasoning text field (assistant messages)
//  3. a rendered tool-invocation summary (tool-call records)
//
// Different roles persist content through structurally different fields by
// design of the source application; a single-field read recovers only a
// fraction of the history. An empty result after all three tiers is a valid
// terminal state, not an error.
func ExtractContent(rec *RawMessageRecord) string {
	if rec == nil {
		return ""
	}
	if rec.Text != "" {
		return rec.Text
	}
	if rec.Thinking != nil && rec.Thinking.Text != "" {
		return rec.Thinking.Text
	}
	if rec.ToolCall != nil && rec.ToolCall.DisplayName() != "" {
		return fmt.Sprintf("Tool: %s — %s", rec.ToolCall.DisplayName(), rec.ToolCall.Status)
	}
	return ""
}

// ReconstructMessages converts one database's raw extraction into messages.
// Messages inherit the owning session's updated-at timestamp (individual
// records are not independently timestamped in this format); cross-session
// order follows session creation time. Empty-content messages are retained,
// not dropped: their presence can be structurally meaningful.
//
// The returned slice is in storage order; SortMessages establishes the final
// chronological order after all databases are merged.
func ReconstructMessages(ext *Extraction) []ReconstructedMessage {
	if ext == nil {
		return nil
	}

	switch ext.Kind {
	case SchemaSessionOriented:
		return reconstructSessions(ext)
	case SchemaLegacy:
		return reconstructLegacy(ext)
	default:
		return nil
	}
}

func reconstructSessions(ext *Extraction) []ReconstructedMessage {
	// Session creation order determines the cross-session tie-break.
	sessions := make([]SessionRecord, len(ext.Sessions))
	copy(sessions, ext.Sessions)
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
		}
		return sessions[i].SessionID < sessions[j].SessionID
	})

	var messages []ReconstructedMessage
	for seq, session := range sessions {
		for refSeq, ref := range session.MessageRefs {
			role := ref.Role
			var content string
			if rec := ext.Records[session.SessionID+":"+ref.MessageID]; rec != nil {
				content = ExtractContent(rec)
				if rec.Role != 0 {
					role = rec.Role
				}
			}
			// A header can reference a body the app hasn't flushed yet;
			// the message is kept with empty content.
			messages = append(messages, ReconstructedMessage{
				SessionID:  session.SessionID,
				MessageID:  ref.MessageID,
				Role:       role.String(),
				Content:    content,
				Timestamp:  session.UpdatedAt,
				SessionSeq: seq,
				RefSeq:     refSeq,
			})
		}
	}
	return messages
}

// reconstructLegacy interleaves the two flat lists by position. The legacy
// format provides no key correlating prompts to generations, so this is a
// declared best-effort ordering, not an exact pairing. Prompts carry no
// timestamp at all; generations keep their own.
func reconstructLegacy(ext *Extraction) []ReconstructedMessage {
	var messages []ReconstructedMessage

	for i, prompt := range ext.Prompts {
		messages = append(messages, ReconstructedMessage{
			SessionID: legacySessionID,
			MessageID: legacyPromptID(i, prompt.Text),
			Role:      RoleUser.String(),
			Content:   prompt.Text,
			RefSeq:    2 * i,
		})
	}

	for i, gen := range ext.Generations {
		id := gen.GenerationUUID
		if id == "" {
			id = legacyPromptID(i, gen.TextDescription)
		}
		messages = append(messages, ReconstructedMessage{
			SessionID: legacySessionID,
			MessageID: id,
			Role:      RoleAssistant.String(),
			Content:   gen.TextDescription,
			Timestamp: gen.Time(),
			RefSeq:    2*i + 1,
		})
	}

	return messages
}

// legacySessionID groups legacy flat records under one synthetic session so
// deduplication across rotated databases still applies.
const legacySessionID = "aiService"

// legacyPromptID derives a stable identifier for records the legacy format
// stores without one.
func legacyPromptID(index int, text string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%s", index, text)))
	return hex.EncodeToString(sum[:8])
}

// SortMessages establishes the deterministic final ordering: ascending by
// inherited timestamp, then session creation order, then message position,
// then identifiers. Repeated runs against an unchanged database yield
// byte-identical ordering.
func SortMessages(messages []ReconstructedMessage) {
	sort.SliceStable(messages, func(i, j int) bool {
		a, b := messages[i], messages[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.SessionSeq != b.SessionSeq {
			return a.SessionSeq < b.SessionSeq
		}
		if a.SessionID != b.SessionID {
			return a.SessionID < b.SessionID
		}
		if a.RefSeq != b.RefSeq {
			return a.RefSeq < b.RefSeq
		}
		return a.MessageID < b.MessageID
	})
}
