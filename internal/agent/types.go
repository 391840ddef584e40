// ABOUTME: Data types for conversations held by the upstream agent service
// ABOUTME: Mirrors the converse API's summary, detail, and round shapes

package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ConversationSummary is one entry from the upstream conversation listing.
type ConversationSummary struct {
	ID        string    `json:"id"`
	AgentID   string    `json:"agent_id,omitempty"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoundInput is the user half of a conversation round.
type RoundInput struct {
	Message string `json:"message"`
}

// RoundResponse is the assistant half of a conversation round.
type RoundResponse struct {
	Message string `json:"message"`
}

// Round is one user input plus the assistant response it produced.
// Steps carries the upstream's intermediate tool/reasoning trace verbatim.
type Round struct {
	Input    RoundInput      `json:"input"`
	Response RoundResponse   `json:"response"`
	Steps    json.RawMessage `json:"steps,omitempty"`
}

// Conversation is the full round history of one upstream conversation.
type Conversation struct {
	ID        string    `json:"id"`
	AgentID   string    `json:"agent_id,omitempty"`
	Title     string    `json:"title"`
	Rounds    []Round   `json:"rounds"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GatewayError is returned when the upstream agent service answers with a
// non-success status. Status and Body preserve the upstream response for
// diagnostic surfacing.
type GatewayError struct {
	Status int
	Body   string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("agent service returned status %d: %s", e.Status, e.Body)
}

// IsNotFound reports whether the error is a GatewayError with a 404-class
// status. The client itself never special-cases this; callers decide.
func IsNotFound(err error) bool {
	var ge *GatewayError
	if !errors.As(err, &ge) {
		return false
	}
	return ge.Status == 404 || ge.Status == 410
}
