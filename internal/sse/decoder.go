// ABOUTME: Incremental decoder turning raw SSE bytes into typed events
// ABOUTME: Tolerates arbitrary chunk boundaries and skips malformed payloads

package sse

import (
	"bytes"
	"log/slog"
)

// Decoder converts an arbitrarily chunked SSE byte stream into Events.
//
// Feed it each chunk as it arrives via Ingest. The decoder keeps only the
// trailing unterminated line between calls, so memory use is bounded by the
// longest single line regardless of stream length.
//
// A Decoder is not safe for concurrent use; each stream gets its own.
type Decoder struct {
	pending []byte // unterminated tail of the previous chunk
	event   string // current event name, set by the last event: line
	logger  *slog.Logger
}

// NewDecoder creates a Decoder. A nil logger falls back to slog.Default.
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{logger: logger.With("component", "sse")}
}

// Ingest appends a chunk to the decoder and returns all events completed by
// it, in arrival order. Malformed payloads are logged and skipped; they never
// abort the stream.
func (d *Decoder) Ingest(chunk []byte) []Event {
	if len(chunk) == 0 {
		return nil
	}

	data := chunk
	if len(d.pending) > 0 {
		data = append(d.pending, chunk...)
	}

	var events []Event
	for {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		line := data[:idx]
		data = data[idx+1:]

		if ev, ok := d.processLine(line); ok {
			events = append(events, ev)
		}
	}

	// Keep the unterminated remainder for the next chunk. Copy it out so we
	// never alias the caller's buffer.
	d.pending = append(d.pending[:0], data...)

	return events
}

// processLine handles one complete line and reports whether it produced an
// event.
func (d *Decoder) processLine(line []byte) (Event, bool) {
	line = bytes.TrimSuffix(line, []byte("\r"))

	if len(line) == 0 {
		// Blank line terminates the current event block.
		d.event = ""
		return Event{}, false
	}

	switch {
	case bytes.HasPrefix(line, []byte("event:")):
		d.event = string(trimFieldValue(line[len("event:"):]))
		return Event{}, false

	case bytes.HasPrefix(line, []byte("data:")):
		payload := trimFieldValue(line[len("data:"):])
		ev, err := parseEvent(d.event, payload)
		if err != nil {
			d.logger.Warn("skipping malformed SSE event", "event", d.event, "error", err)
			return Event{}, false
		}
		return ev, true

	default:
		// Comments and unknown fields are ignored for forward compatibility.
		return Event{}, false
	}
}

// trimFieldValue strips the single optional leading space the SSE format
// allows after a field's colon.
func trimFieldValue(v []byte) []byte {
	if len(v) > 0 && v[0] == ' ' {
		return v[1:]
	}
	return v
}
