// ABOUTME: In-memory Tracker backed by sync.Map with insert-if-absent writes
// ABOUTME: Default backend; records do not survive a process restart

package ownership

import (
	"context"
	"sync"
)

// MemoryTracker keeps ownership records in process memory.
//
// Each key is written at most once (LoadOrStore) and reads only compare the
// stored value, so concurrent in-flight requests need no broader locking.
// There is no eviction: the map grows with distinct conversations for the
// process lifetime, which is acceptable at this deployment's scale. A
// restart loses all records, leaving previously created conversations
// unowned - a known limitation, not silently worked around here.
type MemoryTracker struct {
	owners sync.Map // conversation id -> session id
}

// NewMemoryTracker creates an empty in-memory tracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{}
}

// Track records sessionID as the owner of conversationID unless the
// conversation already has an owner. Repeated calls with the same pair are
// harmless; a different session for an owned conversation is ignored.
func (m *MemoryTracker) Track(_ context.Context, conversationID, sessionID string) error {
	m.owners.LoadOrStore(conversationID, sessionID)
	return nil
}

// IsOwnedBy reports whether conversationID is recorded as owned by sessionID.
func (m *MemoryTracker) IsOwnedBy(_ context.Context, conversationID, sessionID string) (bool, error) {
	owner, ok := m.owners.Load(conversationID)
	if !ok {
		return false, nil
	}
	return owner == sessionID, nil
}

// Forget removes the record for conversationID, if present.
func (m *MemoryTracker) Forget(_ context.Context, conversationID string) error {
	m.owners.Delete(conversationID)
	return nil
}

// Close is a no-op for the in-memory tracker.
func (m *MemoryTracker) Close() error {
	return nil
}
