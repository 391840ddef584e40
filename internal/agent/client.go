// ABOUTME: HTTP client for the upstream agent service's converse API
// ABOUTME: Streams send-message responses and manages conversation CRUD

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const apiBasePath = "/api/agent_builder"

// Client talks to the hosted agent service. Credentials, the agent id, and
// the optional workspace are process-wide configuration; no request carries
// caller identity upstream.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	agentID    string
	space      string
	logger     *slog.Logger
}

// Options configures a Client.
type Options struct {
	// BaseURL is the agent service root, e.g. "https://kibana.example.com".
	BaseURL string
	// APIKey authenticates every upstream call.
	APIKey string
	// AgentID is the fixed agent all messages are sent to.
	AgentID string
	// Space optionally scopes requests to a workspace ("/s/{space}" prefix).
	Space string
	// HTTPClient overrides the transport; nil uses http.DefaultClient.
	// The send-message stream has no deadline; callers needing bounded
	// latency must pass a client with an externally configured timeout.
	HTTPClient *http.Client
}

// NewClient creates a Client for the upstream agent service.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		httpClient: hc,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		agentID:    opts.AgentID,
		space:      opts.Space,
		logger:     logger.With("component", "agent-client"),
	}
}

// apiURL builds a full upstream URL for a path under the converse API,
// applying the workspace prefix when configured.
func (c *Client) apiURL(path string) string {
	if c.space != "" {
		return c.baseURL + "/s/" + url.PathEscape(c.space) + apiBasePath + path
	}
	return c.baseURL + apiBasePath + path
}

// newRequest creates an authenticated request with the headers the upstream
// service requires.
func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	req.Header.Set("kbn-xsrf", "true")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// checkStatus converts a non-2xx response into a GatewayError, consuming and
// closing the body.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
	return &GatewayError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// sendMessageRequest is the JSON body for the streaming converse endpoint.
type sendMessageRequest struct {
	AgentID        string `json:"agent_id"`
	Input          string `json:"input"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// SendMessage posts a user message to the agent's streaming endpoint and
// returns the raw response body as a live SSE byte stream. The caller owns
// the returned reader and must close it. conversationID may be empty to
// start a new conversation.
//
// Failed sends are never retried: replaying a message against a stateful
// conversation could duplicate turns.
func (c *Client) SendMessage(ctx context.Context, input, conversationID string) (io.ReadCloser, error) {
	payload, err := json.Marshal(sendMessageRequest{
		AgentID:        c.agentID,
		Input:          input,
		ConversationID: conversationID,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding send request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.apiURL("/converse/async"), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending message: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	c.logger.Debug("opened upstream stream", "conversation_id", conversationID)
	return resp.Body, nil
}

// listConversationsResponse is the JSON envelope of the list endpoint.
type listConversationsResponse struct {
	Results []ConversationSummary `json:"results"`
}

// ListConversations fetches every conversation the upstream service knows
// for the configured agent. The result is unfiltered by owner; visibility
// filtering happens in the ownership tracker.
func (c *Client) ListConversations(ctx context.Context) ([]ConversationSummary, error) {
	u := c.apiURL("/conversations") + "?agent_id=" + url.QueryEscape(c.agentID)
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed listConversationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding conversation list: %w", err)
	}
	return parsed.Results, nil
}

// GetConversation fetches the full round history for one conversation.
// A missing conversation surfaces as a GatewayError with a 404 status.
func (c *Client) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.apiURL("/conversations/"+url.PathEscape(id)), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getting conversation: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var conv Conversation
	if err := json.NewDecoder(resp.Body).Decode(&conv); err != nil {
		return nil, fmt.Errorf("decoding conversation: %w", err)
	}
	return &conv, nil
}

// DeleteConversation requests deletion of a conversation upstream.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, c.apiURL("/conversations/"+url.PathEscape(id)), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
