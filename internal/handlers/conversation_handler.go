// File: internal/handlers/conversation_handler.go
package handlers

import (
	"net/http"

	"github.com/huddlehq/huddle/internal/middleware"
	"github.com/huddlehq/huddle/internal/services"
)

type ConversationHandler struct {
	ConversationService *services.ConversationService
}

func NewConversationHandler(cs *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{ConversationService: cs}
}

// ListConversations returns the caller's direct-message conversation
// list, newest activity first.
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conversations, err := h.ConversationService.ListDirectConversations(r.Context(), userID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}
