// Package gateway is the HTTP server relaying browser chat to the hosted
// agent service.
//
// # Endpoints
//
//   - POST /chat - send a message; the upstream SSE stream is forwarded
//     verbatim while a decoder watches it for the conversation id
//   - GET /conversations - list the caller's conversations
//   - GET /conversations/{id} - full round history (owners only)
//   - DELETE /conversations/{id} - delete upstream (owners only)
//   - GET /health, /health/ready - liveness and readiness
//   - GET /metrics - Prometheus metrics, when enabled
//   - GET / - the embedded chat page
//
// # Relay
//
// The chat handler is a duplicating pipe: each upstream chunk is written to
// the response, flushed, then fed to the per-request SSE decoder, all on
// the request goroutine. Nothing buffers the full response. The only side
// effect taken from the stream is recording conversation ownership on the
// conversation_id_set event; every other event passes through untouched for
// the browser's benefit.
//
// Errors before the stream opens return structured JSON ({"error": ...},
// 400 for validation, 500 for upstream failures with the upstream status
// preserved in the message). Errors after headers are sent can only end
// the stream early; clients detect this as a stream without a
// message_complete event.
//
// # Ownership
//
// The upstream service has no per-user auth, so a process-wide tracker maps
// conversation ids to the opaque per-browser session cookie. Unowned
// conversations are reported as not found, never forbidden.
package gateway
