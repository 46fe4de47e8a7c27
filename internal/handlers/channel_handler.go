// File: internal/handlers/channel_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/huddlehq/huddle/internal/domain"
	"github.com/huddlehq/huddle/internal/dtos"
	"github.com/huddlehq/huddle/internal/middleware"
	"github.com/huddlehq/huddle/internal/services"
)

type ChannelHandler struct {
	ChannelService *services.ChannelService
	ReadService    *services.ReadService
}

func NewChannelHandler(cs *services.ChannelService, rs *services.ReadService) *ChannelHandler {
	return &ChannelHandler{
		ChannelService: cs,
		ReadService:    rs,
	}
}

func channelDTO(c domain.Channel) dtos.ChannelResponseDTO {
	return dtos.ChannelResponseDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Visibility:  c.Visibility,
		OwnerID:     c.OwnerID,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

func channelDTOs(channels []domain.Channel) []dtos.ChannelResponseDTO {
	out := make([]dtos.ChannelResponseDTO, len(channels))
	for i, c := range channels {
		out[i] = channelDTO(c)
	}
	return out
}

// CreateChannel creates a public or private channel owned by the caller.
func (h *ChannelHandler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req dtos.ChannelCreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Visibility == "" {
		req.Visibility = domain.ChannelPublic
	}

	channel, err := h.ChannelService.Create(r.Context(), userID, req.Name, req.Description, req.Visibility)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, channelDTO(*channel))
}

// GetChannel returns one channel. Private and direct channels are only
// visible to their members.
func (h *ChannelHandler) GetChannel(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	channelID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "Invalid channel ID", http.StatusBadRequest)
		return
	}

	channel, err := h.ChannelService.Get(r.Context(), channelID)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	if channel.Visibility != domain.ChannelPublic {
		member, err := h.ChannelService.IsMember(r.Context(), channelID, userID)
		if err != nil {
			writeCoreError(w, err)
			return
		}
		if !member {
			writeError(w, "Channel not found", http.StatusNotFound)
			return
		}
	}
	writeJSON(w, http.StatusOK, channelDTO(*channel))
}

// ListMyChannels returns the active channels the caller belongs to.
func (h *ChannelHandler) ListMyChannels(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	channels, err := h.ChannelService.ListForUser(r.Context(), userID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, channelDTOs(channels))
}

// ListPublicChannels returns active public channels for discovery.
func (h *ChannelHandler) ListPublicChannels(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)

	channels, err := h.ChannelService.ListPublic(r.Context(), limit)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, channelDTOs(channels))
}

// DeleteChannel soft-deletes a channel. Channel admins only.
func (h *ChannelHandler) DeleteChannel(w http.ResponseWriter, r *http.Request) {
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

	if !h.requireAdmin(w, r, channelID, userID) {
		return
	}

	if err := h.ChannelService.SoftDelete(r.Context(), channelID, userID); err != nil {
		writeCoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOrCreateDirectChannel resolves the direct channel between the
// caller and another user, creating it if absent.
func (h *ChannelHandler) GetOrCreateDirectChannel(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req dtos.DirectChannelRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	channel, err := h.ChannelService.GetOrCreateDirectChannel(r.Context(), userID, req.UserID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, channelDTO(*channel))
}

// AddMember adds a user to a channel. Callers may join public channels
// themselves; adding anyone else, or joining a private channel, takes a
// channel admin.
func (h *ChannelHandler) AddMember(w http.ResponseWriter, r *http.Request) {
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

	var req dtos.MemberRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Role == "" {
		req.Role = domain.RoleMember
	}

	channel, err := h.ChannelService.Get(r.Context(), channelID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	if channel.Visibility == domain.ChannelDirect {
		writeError(w, "Direct channels have a fixed member pair", http.StatusForbidden)
		return
	}

	selfJoin := req.UserID == userID && channel.Visibility == domain.ChannelPublic && req.Role == domain.RoleMember
	if !selfJoin && !h.requireAdmin(w, r, channelID, userID) {
		return
	}

	added, err := h.ChannelService.AddMember(r.Context(), channelID, req.UserID, req.Role)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"added": added})
}

// RemoveMember removes a user from a channel. Members may leave on their
// own; removing someone else takes a channel admin.
func (h *ChannelHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
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
	targetID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if targetID != userID && !h.requireAdmin(w, r, channelID, userID) {
		return
	}

	removed, err := h.ChannelService.RemoveMember(r.Context(), channelID, targetID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// ListMembers returns a channel's membership roster. Members only.
func (h *ChannelHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
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

	members, err := h.ChannelService.ListMembers(r.Context(), channelID)
	if err != nil {
		writeCoreError(w, err)
		return
	}

	out := make([]dtos.MembershipResponseDTO, len(members))
	for i, m := range members {
		out[i] = dtos.MembershipResponseDTO{
			ChannelID: m.ChannelID,
			UserID:    m.UserID,
			Role:      m.Role,
			JoinedAt:  m.JoinedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// MarkRead advances the caller's read marker for a channel.
func (h *ChannelHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
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

	var req dtos.ReadMarkerRequestDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	if !h.requireMember(w, r, channelID, userID) {
		return
	}

	marker, err := h.ReadService.MarkRead(r.Context(), userID, channelID, req.LastMessageID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, marker)
}

// GetUnreadCount returns the caller's unread count for one channel.
func (h *ChannelHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
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

	count, err := h.ReadService.UnreadCount(r.Context(), userID, channelID)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"unread": count})
}

// GetUnreadCounts returns the caller's unread counts for many channels
// in one query.
func (h *ChannelHandler) GetUnreadCounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req dtos.UnreadCountsRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	counts, err := h.ReadService.BatchUnreadCounts(r.Context(), userID, req.ChannelIDs)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// requireMember writes a 403 and returns false unless userID belongs to
// the channel.
func (h *ChannelHandler) requireMember(w http.ResponseWriter, r *http.Request, channelID, userID uint) bool {
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

// requireAdmin writes a 403 and returns false unless userID holds the
// admin role in the channel.
func (h *ChannelHandler) requireAdmin(w http.ResponseWriter, r *http.Request, channelID, userID uint) bool {
	admin, err := h.ChannelService.IsAdmin(r.Context(), channelID, userID)
	if err != nil {
		writeCoreError(w, err)
		return false
	}
	if !admin {
		writeError(w, "Channel admin role required", http.StatusForbidden)
		return false
	}
	return true
}
