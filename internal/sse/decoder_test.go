// ABOUTME: Tests for the incremental SSE decoder
// ABOUTME: Verifies chunking equivalence, malformed-payload tolerance, and typed payloads

package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStream = "event: conversation_id_set\n" +
	"data: {\"conversation_id\": \"conv_42\"}\n" +
	"\n" +
	"event: reasoning\n" +
	"data: {\"reasoning\": \"Looking up the charge rules\"}\n" +
	"\n" +
	"event: tool_call\n" +
	"data: {\"tool_id\": \"search-rules\", \"params\": {\"query\": \"charge\"}}\n" +
	"\n" +
	"event: tool_progress\n" +
	"data: {\"message\": \"Searching rulebook\"}\n" +
	"\n" +
	"event: message_chunk\n" +
	"data: {\"text_chunk\": \"A charging model \"}\n" +
	"\n" +
	"event: message_chunk\n" +
	"data: {\"text_chunk\": \"moves its full speed.\"}\n" +
	"\n" +
	"event: message_complete\n" +
	"data: {}\n" +
	"\n"

func decodeAll(t *testing.T, chunks ...[]byte) []Event {
	t.Helper()
	d := NewDecoder(nil)
	var events []Event
	for _, chunk := range chunks {
		events = append(events, d.Ingest(chunk)...)
	}
	return events
}

func TestDecoderSingleChunk(t *testing.T) {
	events := decodeAll(t, []byte(sampleStream))
	require.Len(t, events, 7)

	assert.Equal(t, KindConversationIDSet, events[0].Kind)
	assert.Equal(t, "conv_42", events[0].ConversationID)

	assert.Equal(t, KindReasoning, events[1].Kind)
	assert.Equal(t, "Looking up the charge rules", events[1].Reasoning)

	assert.Equal(t, KindToolCall, events[2].Kind)
	require.NotNil(t, events[2].ToolCall)
	assert.Equal(t, "search-rules", events[2].ToolCall.ToolID)
	assert.JSONEq(t, `{"query": "charge"}`, string(events[2].ToolCall.Params))

	assert.Equal(t, KindToolProgress, events[3].Kind)
	assert.Equal(t, "Searching rulebook", events[3].Progress)

	assert.Equal(t, KindMessageChunk, events[4].Kind)
	assert.Equal(t, "A charging model ", events[4].TextChunk)
	assert.Equal(t, KindMessageChunk, events[5].Kind)
	assert.Equal(t, "moves its full speed.", events[5].TextChunk)

	assert.Equal(t, KindMessageComplete, events[6].Kind)
}

// The decoded sequence must be identical no matter how the bytes are
// chunked. Split the sample at every possible boundary, then byte-by-byte.
func TestDecoderArbitraryChunking(t *testing.T) {
	want := decodeAll(t, []byte(sampleStream))

	for split := 1; split < len(sampleStream); split++ {
		got := decodeAll(t, []byte(sampleStream[:split]), []byte(sampleStream[split:]))
		require.Equal(t, want, got, "split at byte %d diverged", split)
	}

	var single [][]byte
	for i := range sampleStream {
		single = append(single, []byte{sampleStream[i]})
	}
	got := decodeAll(t, single...)
	assert.Equal(t, want, got)
}

func TestDecoderMalformedEventDoesNotAbortStream(t *testing.T) {
	stream := "event: message_chunk\n" +
		"data: {not json at all\n" +
		"\n" +
		"event: message_chunk\n" +
		"data: {\"text_chunk\": \"still decoding\"}\n" +
		"\n"

	events := decodeAll(t, []byte(stream))
	require.Len(t, events, 1)
	assert.Equal(t, "still decoding", events[0].TextChunk)
}

func TestDecoderUnknownEventPreserved(t *testing.T) {
	stream := "event: usage_report\n" +
		"data: {\"tokens\": 1234}\n" +
		"\n"

	events := decodeAll(t, []byte(stream))
	require.Len(t, events, 1)
	assert.Equal(t, KindOther, events[0].Kind)
	assert.Equal(t, "usage_report", events[0].Name)
	assert.JSONEq(t, `{"tokens": 1234}`, string(events[0].Raw))
}

func TestDecoderCRLFLines(t *testing.T) {
	stream := "event: message_chunk\r\n" +
		"data: {\"text_chunk\": \"hi\"}\r\n" +
		"\r\n"

	events := decodeAll(t, []byte(stream))
	require.Len(t, events, 1)
	assert.Equal(t, "hi", events[0].TextChunk)
}

func TestDecoderIgnoresCommentsAndNoise(t *testing.T) {
	stream := ": keepalive comment\n" +
		"retry: 3000\n" +
		"event: message_complete\n" +
		"data: {}\n" +
		"\n"

	events := decodeAll(t, []byte(stream))
	require.Len(t, events, 1)
	assert.Equal(t, KindMessageComplete, events[0].Kind)
}

func TestDecoderBlankLineResetsEventKind(t *testing.T) {
	// A data line after a blank line has no current event name; it must not
	// inherit message_chunk from the previous block.
	stream := "event: message_chunk\n" +
		"data: {\"text_chunk\": \"a\"}\n" +
		"\n" +
		"data: {\"text_chunk\": \"orphan\"}\n"

	events := decodeAll(t, []byte(stream))
	require.Len(t, events, 2)
	assert.Equal(t, KindMessageChunk, events[0].Kind)
	assert.Equal(t, KindOther, events[1].Kind)
	assert.Equal(t, "", events[1].Name)
}

func TestDecoderHoldsIncompleteLine(t *testing.T) {
	d := NewDecoder(nil)

	events := d.Ingest([]byte("event: message_chunk\ndata: {\"text_chunk\": \"par"))
	assert.Empty(t, events)

	events = d.Ingest([]byte("tial\"}\n"))
	require.Len(t, events, 1)
	assert.Equal(t, "partial", events[0].TextChunk)
}

func TestDecoderEmptyChunk(t *testing.T) {
	d := NewDecoder(nil)
	assert.Empty(t, d.Ingest(nil))
	assert.Empty(t, d.Ingest([]byte{}))
}
