// File: internal/handlers/message_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/huddlehq/huddle/internal/dtos"
	"github.com/huddlehq/huddle/internal/middleware"
	"github.com/huddlehq/huddle/internal/services"
)

type MessageHandler struct {
	MessageService *services.MessageService
	ChannelService *services.ChannelService
}

func NewMessageHandler(ms *services.MessageService, cs *services.ChannelService) *MessageHandler {
	return &MessageHandler{
		MessageService: ms,
		ChannelService: cs,
	}
}

// CreateMessage posts a message (or thread reply) to a channel. Members only.
func (h *MessageHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
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

	var req dtos.MessageCreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !h.requireMember(w, r, channelID, userID) {
		return
	}

	msg, err := h.MessageService.Create(r.Context(), channelID, userID, req.Content, req.ParentMessageID, req.Attachments)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dtos.MessageFromDomain(*msg, userID))
}

// ListMessages returns a page of a channel's visible top-level messages,
// newest first, with per-message thread reply counts. Members only.
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
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

	limit := queryInt(r, "limit", 50)
	before := queryUint(r, "before")

	msgs, err := h.MessageService.ListChannelMessages(r.Context(), channelID, limit, before)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	ids := make([]uint, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	replyCounts, err := h.MessageService.ThreadReplyCounts(r.Context(), ids)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dtos.MessagesFromDomain(msgs, userID, replyCounts))
}

// GetThreadReplies returns a message's replies, oldest first.
func (h *MessageHandler) GetThreadReplies(w http.ResponseWriter, r *http.Request) {
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

	replies, err := h.MessageService.GetThreadReplies(r.Context(), messageID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.MessagesFromDomain(replies, userID, nil))
}

// EditMessage replaces a message's content. Authors only; the service
// enforces authorship.
func (h *MessageHandler) EditMessage(w http.ResponseWriter, r *http.Request) {
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

	var req dtos.MessageEditRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.MessageService.Edit(r.Context(), messageID, userID, req.Content)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.MessageFromDomain(*msg, userID))
}

// DeleteMessage soft-deletes a message. Authors only.
func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
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

	deleted, err := h.MessageService.SoftDelete(r.Context(), messageID, userID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// ToggleBookmark flips the caller's bookmark on a message and returns
// the new state. Members only.
func (h *MessageHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
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

	bookmarked, err := h.MessageService.ToggleBookmark(r.Context(), messageID, userID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"bookmarked": bookmarked})
}

// SetPinned pins or unpins a message. Channel admins only.
func (h *MessageHandler) SetPinned(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		Pinned bool `json:"pinned"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	msg, err := h.MessageService.Get(r.Context(), messageID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	admin, err := h.ChannelService.IsAdmin(r.Context(), msg.ChannelID, userID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	if !admin {
		writeError(w, "Channel admin role required", http.StatusForbidden)
		return
	}

	changed, err := h.MessageService.SetPinned(r.Context(), messageID, userID, req.Pinned)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"pinned": req.Pinned, "changed": changed})
}

// SearchMessages runs a case-insensitive substring search over one
// channel's visible messages. Members only.
func (h *MessageHandler) SearchMessages(w http.ResponseWriter, r *http.Request) {
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

	term := r.URL.Query().Get("q")
	limit := queryInt(r, "limit", 50)

	msgs, err := h.MessageService.Search(r.Context(), channelID, term, limit)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.MessagesFromDomain(msgs, userID, nil))
}

func (h *MessageHandler) requireMember(w http.ResponseWriter, r *http.Request, channelID, userID uint) bool {
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

// requireMessageMember resolves a message's channel and checks membership.
func (h *MessageHandler) requireMessageMember(w http.ResponseWriter, r *http.Request, messageID, userID uint) bool {
	msg, err := h.MessageService.Get(r.Context(), messageID)
	if err != nil {
		writeCoreError(w, err)
		return false
	}
	return h.requireMember(w, r, msg.ChannelID, userID)
}
