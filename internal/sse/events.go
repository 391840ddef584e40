// ABOUTME: Typed event definitions for the agent service's SSE stream
// ABOUTME: Maps wire event names to a tagged union with per-kind payload fields

package sse

import (
	"encoding/json"
	"fmt"
)

// Kind identifies the type of an SSE event emitted by the agent service.
type Kind string

const (
	KindConversationIDSet Kind = "conversation_id_set"
	KindReasoning         Kind = "reasoning"
	KindToolCall          Kind = "tool_call"
	KindToolProgress      Kind = "tool_progress"
	KindMessageChunk      Kind = "message_chunk"
	KindMessageComplete   Kind = "message_complete"

	// KindOther covers event names this gateway does not recognize.
	// They are decoded with their raw payload preserved so callers can
	// forward them untouched.
	KindOther Kind = "other"
)

// ToolCall is the payload of a tool_call event.
type ToolCall struct {
	ToolID string          `json:"tool_id"`
	Params json.RawMessage `json:"params"`
}

// Event is one decoded SSE event. Kind selects which payload field is
// populated; Raw always holds the original data payload.
type Event struct {
	Kind Kind

	// Name is the event name as it appeared on the wire. For recognized
	// events it matches string(Kind); for KindOther it carries the
	// unrecognized name.
	Name string

	ConversationID string    // conversation_id_set
	Reasoning      string    // reasoning
	ToolCall       *ToolCall // tool_call
	Progress       string    // tool_progress
	TextChunk      string    // message_chunk

	Raw json.RawMessage
}

// parseEvent decodes one data payload for the given wire event name.
// Unknown names are returned as KindOther with the payload preserved.
func parseEvent(name string, data []byte) (Event, error) {
	ev := Event{Name: name, Raw: append(json.RawMessage(nil), data...)}

	switch Kind(name) {
	case KindConversationIDSet:
		var p struct {
			ConversationID string `json:"conversation_id"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return Event{}, fmt.Errorf("parsing conversation_id_set payload: %w", err)
		}
		ev.Kind = KindConversationIDSet
		ev.ConversationID = p.ConversationID

	case KindReasoning:
		var p struct {
			Reasoning string `json:"reasoning"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return Event{}, fmt.Errorf("parsing reasoning payload: %w", err)
		}
		ev.Kind = KindReasoning
		ev.Reasoning = p.Reasoning

	case KindToolCall:
		var p ToolCall
		if err := json.Unmarshal(data, &p); err != nil {
			return Event{}, fmt.Errorf("parsing tool_call payload: %w", err)
		}
		ev.Kind = KindToolCall
		ev.ToolCall = &p

	case KindToolProgress:
		var p struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return Event{}, fmt.Errorf("parsing tool_progress payload: %w", err)
		}
		ev.Kind = KindToolProgress
		ev.Progress = p.Message

	case KindMessageChunk:
		var p struct {
			TextChunk string `json:"text_chunk"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return Event{}, fmt.Errorf("parsing message_chunk payload: %w", err)
		}
		ev.Kind = KindMessageChunk
		ev.TextChunk = p.TextChunk

	case KindMessageComplete:
		if !json.Valid(data) {
			return Event{}, fmt.Errorf("parsing message_complete payload: invalid JSON")
		}
		ev.Kind = KindMessageComplete

	default:
		if !json.Valid(data) {
			return Event{}, fmt.Errorf("parsing %q payload: invalid JSON", name)
		}
		ev.Kind = KindOther
	}

	return ev, nil
}
