// ABOUTME: Tracker interface mapping conversation ids to owning sessions
// ABOUTME: First-writer-wins semantics; unknown conversations owned by nobody

package ownership

import (
	"context"

	"github.com/judgement/rules-gateway/internal/agent"
)

// Tracker records which browser session created each upstream conversation.
// The upstream service has no per-user auth, so this mapping is the only
// thing partitioning conversation visibility. It is a best-effort
// convenience, not a security boundary.
//
// Track is first-writer-wins: once a conversation has an owner, later calls
// with any session id are no-ops. IsOwnedBy is conservative: a conversation
// with no record is owned by nobody.
type Tracker interface {
	Track(ctx context.Context, conversationID, sessionID string) error
	IsOwnedBy(ctx context.Context, conversationID, sessionID string) (bool, error)

	// Forget drops a conversation's record, if any. Called after a
	// successful upstream delete so records do not outlive conversations.
	Forget(ctx context.Context, conversationID string) error

	Close() error
}

// FilterBySession returns the subset of convs owned by sessionID, preserving
// input order.
func FilterBySession(ctx context.Context, t Tracker, sessionID string, convs []agent.ConversationSummary) ([]agent.ConversationSummary, error) {
	owned := make([]agent.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		ok, err := t.IsOwnedBy(ctx, conv.ID, sessionID)
		if err != nil {
			return nil, err
		}
		if ok {
			owned = append(owned, conv)
		}
	}
	return owned, nil
}
