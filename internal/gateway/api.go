// ABOUTME: HTTP handlers for the chat relay and conversation endpoints
// ABOUTME: Tees the upstream SSE stream to the browser while capturing conversation ids

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/judgement/rules-gateway/internal/agent"
	"github.com/judgement/rules-gateway/internal/ownership"
	"github.com/judgement/rules-gateway/internal/sse"
)

// relayBufSize is the read buffer for upstream stream chunks. Chunks are
// forwarded as they arrive; this is a cap, not an accumulation buffer.
const relayBufSize = 4096

// conversationOpTimeout bounds non-streaming upstream calls when no timeout
// is configured.
const conversationOpTimeout = 30 * time.Second

// ChatRequest is the JSON request body for POST /chat.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

// ConversationResponse is one entry in the GET /conversations response.
type ConversationResponse struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Messages  []RoundResponse `json:"messages"`
	UpdatedAt string          `json:"updatedAt"`
}

// RoundResponse is one user/assistant round in a conversation response.
type RoundResponse struct {
	Input    string `json:"input"`
	Response string `json:"response"`
}

// handleChat handles POST /chat requests.
//
// The inbound message is validated, the caller's session resolved, and the
// upstream stream opened. From then on every chunk is written verbatim to
// the response and fed through an SSE decoder; when the decoder sees a
// conversation_id_set event the conversation is recorded as owned by the
// caller's session. No other event kind has a side effect here.
func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	reqID := uuid.New().String()
	logger := g.logger.With("request_id", reqID)

	req, err := parseChatRequest(r.Body)
	if err != nil {
		g.metrics.chatRequests.WithLabelValues("invalid").Inc()
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionID, err := g.sessions.Resolve(w, r)
	if err != nil {
		logger.Error("failed to resolve session", "error", err)
		g.metrics.chatRequests.WithLabelValues("error").Inc()
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// Check streaming support before contacting upstream (fail fast)
	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.Error("streaming not supported")
		g.metrics.chatRequests.WithLabelValues("error").Inc()
		g.sendJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	upstream, err := g.agentClient.SendMessage(r.Context(), req.Message, req.ConversationID)
	if err != nil {
		var ge *agent.GatewayError
		if errors.As(err, &ge) {
			logger.Error("upstream rejected message", "status", ge.Status, "body", ge.Body)
			g.metrics.upstreamErrors.Inc()
			g.metrics.chatRequests.WithLabelValues("upstream_error").Inc()
			g.sendJSONError(w, http.StatusInternalServerError, ge.Error())
			return
		}
		logger.Error("failed to send message", "error", err)
		g.metrics.chatRequests.WithLabelValues("error").Inc()
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer upstream.Close()

	// Set SSE headers; from here on errors can only end the stream early.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	g.metrics.activeStreams.Inc()
	defer g.metrics.activeStreams.Dec()

	outcome := g.relayStream(r.Context(), w, flusher, upstream, sessionID, logger)
	g.metrics.chatRequests.WithLabelValues(outcome).Inc()
}

// relayStream copies the upstream byte stream to the response while feeding
// the same bytes through a decoder to capture the conversation id. Returns
// an outcome label for metrics.
//
// The write and the decode for a given chunk happen sequentially on this
// goroutine, so decoder state is never touched concurrently. If the
// downstream client disconnects, ctx is done and the upstream read is
// abandoned; the deferred Close in the caller releases the connection.
func (g *Gateway) relayStream(ctx context.Context, w io.Writer, flusher http.Flusher, upstream io.Reader, sessionID string, logger *slog.Logger) string {
	decoder := sse.NewDecoder(logger)
	buf := make([]byte, relayBufSize)

	for {
		if ctx.Err() != nil {
			logger.Debug("client disconnected, abandoning upstream stream")
			return "cancelled"
		}

		n, readErr := upstream.Read(buf)
		if n > 0 {
			chunk := buf[:n]

			if _, err := w.Write(chunk); err != nil {
				logger.Debug("downstream write failed, abandoning upstream stream", "error", err)
				return "cancelled"
			}
			flusher.Flush()

			for _, ev := range decoder.Ingest(chunk) {
				if ev.Kind == sse.KindConversationIDSet && ev.ConversationID != "" {
					if err := g.tracker.Track(ctx, ev.ConversationID, sessionID); err != nil {
						logger.Error("failed to record conversation ownership",
							"conversation_id", ev.ConversationID, "error", err)
					} else {
						logger.Info("tracking conversation", "conversation_id", ev.ConversationID)
					}
				}
			}
		}

		if readErr == io.EOF {
			return "ok"
		}
		if readErr != nil {
			if ctx.Err() != nil {
				logger.Debug("client disconnected, abandoning upstream stream")
				return "cancelled"
			}
			// Headers already sent as success; the only recourse is to
			// end the response early. The browser treats a stream that
			// ends without message_complete as a failure.
			logger.Error("upstream stream error", "error", readErr)
			g.metrics.upstreamErrors.Inc()
			return "stream_error"
		}
	}
}

// handleConversations handles GET /conversations requests, returning only
// the conversations owned by the caller's session.
func (g *Gateway) handleConversations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sessionID, err := g.sessions.Resolve(w, r)
	if err != nil {
		g.logger.Error("failed to resolve session", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	ctx, cancel := g.opContext(r.Context())
	defer cancel()

	all, err := g.agentClient.ListConversations(ctx)
	if err != nil {
		g.logger.Error("failed to list conversations", "error", err)
		g.metrics.upstreamErrors.Inc()
		g.sendJSONError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}

	owned, err := ownership.FilterBySession(ctx, g.tracker, sessionID, all)
	if err != nil {
		g.logger.Error("failed to filter conversations", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := make([]ConversationResponse, 0, len(owned))
	for _, conv := range owned {
		response = append(response, ConversationResponse{
			ID:        conv.ID,
			Title:     conv.Title,
			Messages:  []RoundResponse{},
			UpdatedAt: conv.UpdatedAt.Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleConversationByID handles GET and DELETE /conversations/{id}.
// A conversation the caller's session does not own is reported as not
// found, never as forbidden, so non-owners learn nothing about existence.
func (g *Gateway) handleConversationByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/conversations/")
	if id == "" || strings.Contains(id, "/") {
		g.sendJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}

	sessionID, err := g.sessions.Resolve(w, r)
	if err != nil {
		g.logger.Error("failed to resolve session", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	ctx, cancel := g.opContext(r.Context())
	defer cancel()

	owned, err := g.tracker.IsOwnedBy(ctx, id, sessionID)
	if err != nil {
		g.logger.Error("failed to check ownership", "conversation_id", id, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !owned {
		g.sendJSONError(w, http.StatusNotFound, "conversation not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		g.getConversation(ctx, w, id)
	case http.MethodDelete:
		g.deleteConversation(ctx, w, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// getConversation proxies the full round history of an owned conversation.
func (g *Gateway) getConversation(ctx context.Context, w http.ResponseWriter, id string) {
	conv, err := g.agentClient.GetConversation(ctx, id)
	if err != nil {
		if agent.IsNotFound(err) {
			// Tracked but gone upstream (deleted out of band).
			g.sendJSONError(w, http.StatusNotFound, "conversation not found")
			return
		}
		g.logger.Error("failed to get conversation", "conversation_id", id, "error", err)
		g.metrics.upstreamErrors.Inc()
		g.sendJSONError(w, http.StatusInternalServerError, "failed to get conversation")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conv)
}

// deleteConversation deletes an owned conversation upstream and drops its
// ownership record.
func (g *Gateway) deleteConversation(ctx context.Context, w http.ResponseWriter, id string) {
	if err := g.agentClient.DeleteConversation(ctx, id); err != nil {
		g.logger.Error("failed to delete conversation", "conversation_id", id, "error", err)
		g.metrics.upstreamErrors.Inc()
		g.sendJSONError(w, http.StatusInternalServerError, "failed to delete conversation")
		return
	}

	// Ownership records should not outlive their conversations.
	if err := g.tracker.Forget(ctx, id); err != nil {
		g.logger.Warn("failed to drop ownership record", "conversation_id", id, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// opContext bounds a non-streaming upstream call with the configured
// timeout.
func (g *Gateway) opContext(parent context.Context) (context.Context, context.CancelFunc) {
	timeout := g.config.Agent.Timeout
	if timeout <= 0 {
		timeout = conversationOpTimeout
	}
	return context.WithTimeout(parent, timeout)
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// parseChatRequest parses and validates a ChatRequest from the given reader.
// Returns an error if the JSON is invalid or message is missing or empty.
func parseChatRequest(r io.Reader) (*ChatRequest, error) {
	var req ChatRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}

	if strings.TrimSpace(req.Message) == "" {
		return nil, errors.New("message is required")
	}

	return &req, nil
}
