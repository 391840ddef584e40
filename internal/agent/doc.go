// Package agent is a thin HTTP client for the hosted agent service that
// answers rules questions.
//
// The service exposes a streaming converse endpoint plus conversation CRUD:
//
//   - POST .../converse/async  - send a message, response is an SSE stream
//   - GET  .../conversations   - list all conversations for the agent
//   - GET  .../conversations/{id}
//   - DELETE .../conversations/{id}
//
// All calls carry the configured API key and, when set, a workspace path
// prefix. The service has no notion of per-user identity; every caller of
// this gateway shares the same upstream credentials, which is why the
// ownership tracker exists one layer up.
//
// Non-success statuses become *GatewayError values preserving the upstream
// status and body. Nothing here retries.
package agent
