// Package ownership tracks which browser session created each upstream
// conversation.
//
// The upstream agent service is a single shared tenant: anyone holding the
// gateway's API key sees every conversation. This package records a
// conversation_id -> session_id mapping the first time a conversation id
// becomes known, and the gateway filters list/get/delete calls through it so
// each browser only sees its own history.
//
// Two backends implement Tracker:
//
//   - MemoryTracker (default): process-local, lost on restart.
//   - SQLiteTracker: opt-in durable store for deployments that care about
//     ownership surviving restarts.
//
// Both are first-writer-wins and never update an existing record. This is
// deliberately not an auth mechanism; it partitions visibility for
// convenience only.
package ownership
