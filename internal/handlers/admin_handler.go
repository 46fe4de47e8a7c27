// File: internal/handlers/admin_handler.go
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/huddlehq/huddle/internal/dtos"
	"github.com/huddlehq/huddle/internal/services/admin_services"
)

type AdminHandler struct {
	adminService *admin_services.AdminService
}

func NewAdminHandler(adminService *admin_services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// GetAllUsersHandler handles the API request to fetch all users.
func (h *AdminHandler) GetAllUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.GetAllUsers(r.Context())
	if err != nil {
		log.Printf("[AdminHandler] Error getting all users: %v", err)
		writeError(w, "Failed to retrieve users", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dtos.ToAdminDomainSlice(users))
}

// SweepOrphansHandler runs the reconciliation sweep that removes
// reactions and thread links whose messages were hard-deleted longer
// ago than the grace period.
func (h *AdminHandler) SweepOrphansHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.SweepRequestDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}
	if req.GracePeriodMinutes <= 0 {
		req.GracePeriodMinutes = 60 * 24 // one day by default
	}

	report, err := h.adminService.SweepOrphans(r.Context(), time.Duration(req.GracePeriodMinutes)*time.Minute)
	if err != nil {
		log.Printf("[AdminHandler] Orphan sweep failed: %v", err)
		writeError(w, "Orphan sweep failed", http.StatusInternalServerError)
		return
	}

	log.Printf("[AdminHandler] Orphan sweep removed %d reactions, %d thread links",
		report.ReactionsRemoved, report.ThreadLinksRemoved)
	writeJSON(w, http.StatusOK, report)
}
