// Package sse decodes the agent service's Server-Sent-Events stream into
// typed events.
//
// # Wire Format
//
// The agent service frames its output as standard SSE blocks:
//
//	event: message_chunk
//	data: {"text_chunk": "Roll a d6 for each..."}
//
//	event: message_complete
//	data: {}
//
// Recognized event names are conversation_id_set, reasoning, tool_call,
// tool_progress, message_chunk and message_complete. Anything else decodes
// as KindOther with its payload preserved, so callers can forward events
// this gateway does not understand.
//
// # Incremental Decoding
//
// Decoder.Ingest accepts chunks exactly as they arrive off the network. A
// line split across two chunks is held until its terminator arrives; a
// chunk carrying several complete events yields them all at once. The
// decoded sequence is identical regardless of how the bytes were chunked.
//
// Malformed data payloads are logged and dropped without disturbing the
// rest of the stream.
package sse
