// File: internal/handlers/reaction_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/huddlehq/huddle/internal/dtos"
	"github.com/huddlehq/huddle/internal/middleware"
	"github.com/huddlehq/huddle/internal/services"
)

type ReactionHandler struct {
	ReactionService *services.ReactionService
	MessageService  *services.MessageService
	ChannelService  *services.ChannelService
}

func NewReactionHandler(rs *services.ReactionService, ms *services.MessageService, cs *services.ChannelService) *ReactionHandler {
	return &ReactionHandler{
		ReactionService: rs,
		MessageService:  ms,
		ChannelService:  cs,
	}
}

// AddReaction sets the caller's reaction on a message, replacing any
// previous emoji. Members only.
func (h *ReactionHandler) AddReaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	messageID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	var req dtos.ReactionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !h.requireMessageMember(w, r, messageID, userID) {
		return
	}

	if err := h.ReactionService.AddOrReplace(r.Context(), messageID, userID, req.Emoji); err != nil {
		writeCoreError(w, err)
		return
	}

	rollups, err := h.ReactionService.Rollup(r.Context(), messageID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rollups)
}

// RemoveReaction clears the caller's reaction from a message.
func (h *ReactionHandler) RemoveReaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	messageID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	removed, err := h.ReactionService.Remove(r.Context(), messageID, userID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// GetRollup returns a message's reaction rollups. Members only.
func (h *ReactionHandler) GetRollup(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	messageID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Invalid message ID", http.StatusBadRequest)
		return
	}

	if !h.requireMessageMember(w, r, messageID, userID) {
		return
	}

	rollups, err := h.ReactionService.Rollup(r.Context(), messageID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rollups)
}

// GetRollups returns reaction rollups for many messages in one query.
func (h *ReactionHandler) GetRollups(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req dtos.RollupsRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rollups, err := h.ReactionService.BulkRollup(r.Context(), req.MessageIDs)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rollups)
}

func (h *ReactionHandler) requireMessageMember(w http.ResponseWriter, r *http.Request, messageID, userID uint) bool {
	msg, err := h.MessageService.Get(r.Context(), messageID)
	if err != nil {
		writeCoreError(w, err)
		return false
	}
	member, err := h.ChannelService.IsMember(r.Context(), msg.ChannelID, userID)
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
