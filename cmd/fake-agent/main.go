// ABOUTME: Minimal fake agent service for local development and E2E testing
// ABOUTME: Usage: fake-agent [-addr localhost:5601] — emulates the converse API with canned SSE

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

// conversation is the fake service's stored state for one conversation.
type conversation struct {
	ID        string  `json:"id"`
	AgentID   string  `json:"agent_id"`
	Title     string  `json:"title"`
	Rounds    []round `json:"rounds"`
	UpdatedAt string  `json:"updated_at"`
}

type round struct {
	Input    message `json:"input"`
	Response message `json:"response"`
}

type message struct {
	Message string `json:"message"`
}

type fakeService struct {
	mu            sync.Mutex
	conversations map[string]*conversation
	nextID        int
	chunkDelay    time.Duration
}

func main() {
	addr := flag.String("addr", "localhost:5601", "listen address")
	delay := flag.Duration("delay", 150*time.Millisecond, "delay between streamed chunks")
	flag.Parse()

	svc := &fakeService{
		conversations: make(map[string]*conversation),
		chunkDelay:    *delay,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/agent_builder/converse/async", svc.handleConverse)
	mux.HandleFunc("/api/agent_builder/conversations", svc.handleList)
	mux.HandleFunc("/api/agent_builder/conversations/", svc.handleByID)

	log.Printf("fake agent service listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

type converseRequest struct {
	AgentID        string `json:"agent_id"`
	Input          string `json:"input"`
	ConversationID string `json:"conversation_id"`
}

// handleConverse streams a canned reply as SSE, creating a conversation when
// the request has no conversation_id.
func (s *fakeService) handleConverse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req converseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"message": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	reply := cannedReply(req.Input)
	conv := s.upsertConversation(req.ConversationID, req.AgentID, req.Input, reply)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	emit := func(event string, payload any) {
		data, _ := json.Marshal(payload)
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
		time.Sleep(s.chunkDelay)
	}

	emit("conversation_id_set", map[string]string{"conversation_id": conv.ID})
	emit("reasoning", map[string]string{"reasoning": "Consulting the rulebook"})
	emit("tool_call", map[string]any{"tool_id": "search-rules", "params": map[string]string{"query": req.Input}})
	emit("tool_progress", map[string]string{"message": "Searching rules text"})
	for _, chunk := range splitChunks(reply, 24) {
		emit("message_chunk", map[string]string{"text_chunk": chunk})
	}
	emit("message_complete", map[string]any{})
}

func (s *fakeService) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type summary struct {
		ID        string `json:"id"`
		AgentID   string `json:"agent_id"`
		Title     string `json:"title"`
		UpdatedAt string `json:"updated_at"`
	}
	results := make([]summary, 0, len(s.conversations))
	for _, c := range s.conversations {
		results = append(results, summary{ID: c.ID, AgentID: c.AgentID, Title: c.Title, UpdatedAt: c.UpdatedAt})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"results": results})
}

func (s *fakeService) handleByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/agent_builder/conversations/")

	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		http.Error(w, `{"message": "conversation not found"}`, http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(conv)
	case http.MethodDelete:
		delete(s.conversations, id)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// upsertConversation records the round, creating the conversation if needed.
func (s *fakeService) upsertConversation(id, agentID, input, reply string) *conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		s.nextID++
		conv = &conversation{
			ID:      fmt.Sprintf("conv_%d", s.nextID),
			AgentID: agentID,
			Title:   title(input),
		}
		s.conversations[conv.ID] = conv
	}
	conv.Rounds = append(conv.Rounds, round{
		Input:    message{Message: input},
		Response: message{Message: reply},
	})
	conv.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return conv
}

func cannedReply(input string) string {
	lower := strings.ToLower(input)
	switch {
	case strings.Contains(lower, "charge"):
		return "A model may declare a charge against any enemy within its charge range. Fleeing models may not charge."
	case strings.Contains(lower, "morale"):
		return "Morale checks are taken at the end of any phase in which the warband lost a model."
	default:
		return fmt.Sprintf("You asked: %q. Consult the core rulebook, section 3, for the full ruling.", input)
	}
}

func title(input string) string {
	if len(input) > 40 {
		return input[:40] + "..."
	}
	return input
}

// splitChunks breaks text into pieces of at most n bytes so the stream has
// several message_chunk events to exercise incremental rendering.
func splitChunks(text string, n int) []string {
	var chunks []string
	for len(text) > n {
		chunks = append(chunks, text[:n])
		text = text[n:]
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
