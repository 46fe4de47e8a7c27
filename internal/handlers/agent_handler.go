// File: internal/handlers/agent_handler.go
package handlers

import (
	"net/http"

	"github.com/huddlehq/huddle/internal/middleware"
	"github.com/huddlehq/huddle/internal/services"
)

// AgentHandler exposes the AI collaborators: semantic search, expert
// finding, agenda suggestion, and channel summaries. The agent service
// is optional; when it is not configured every route answers 503.
type AgentHandler struct {
	AgentService   *services.AgentService
	ChannelService *services.ChannelService
}

func NewAgentHandler(as *services.AgentService, cs *services.ChannelService) *AgentHandler {
	return &AgentHandler{
		AgentService:   as,
		ChannelService: cs,
	}
}

func (h *AgentHandler) available(w http.ResponseWriter) bool {
	if h.AgentService == nil {
		writeError(w, "AI features are not configured", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// SemanticSearch runs an embedding search over one channel's messages.
func (h *AgentHandler) SemanticSearch(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	channelID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, "Query parameter 'q' is required", http.StatusBadRequest)
		return
	}

	if !h.requireMember(w, r, channelID, userID) {
		return
	}

	topK := queryInt(r, "limit", 10)
	hits, err := h.AgentService.SemanticSearch(r.Context(), channelID, query, topK)
	if err != nil {
		writeError(w, "Semantic search failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, hits)
}

// FindExperts suggests users who talk about a topic most.
func (h *AgentHandler) FindExperts(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	topic := r.URL.Query().Get("topic")
	if topic == "" {
		writeError(w, "Query parameter 'topic' is required", http.StatusBadRequest)
		return
	}

	topK := queryInt(r, "limit", 20)
	experts, err := h.AgentService.FindExperts(r.Context(), topic, topK)
	if err != nil {
		writeError(w, "Expert lookup failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, experts)
}

// SuggestAgenda drafts a meeting agenda from a thread.
func (h *AgentHandler) SuggestAgenda(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	messageID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	agenda, err := h.AgentService.SuggestMeetingAgenda(r.Context(), messageID)
	if err != nil {
		writeError(w, "Agenda suggestion failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"agenda": agenda})
}

// SummarizeChannel produces a short summary of recent channel activity.
func (h *AgentHandler) SummarizeChannel(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	channelID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	if !h.requireMember(w, r, channelID, userID) {
		return
	}

	limit := queryInt(r, "limit", 100)
	summary, err := h.AgentService.SummarizeChannel(r.Context(), channelID, limit)
	if err != nil {
		writeError(w, "Channel summary failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (h *AgentHandler) requireMember(w http.ResponseWriter, r *http.Request, channelID, userID uint) bool {
	member, err := h.ChannelService.IsMember(r.Context(), channelID, userID)
	if err != nil {
		writeCoreError(w, err)
		return false
	}
	if !member {
		writeError(w, "You are not a member of this channel", http.StatusForbidden)
		return false
	}
	return true
}
