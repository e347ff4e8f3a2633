package handler

import (
	"net/http"

	"github.com/tberndt/papertrade/internal/service"
)

// AdminHandler handles HTTP requests for bootstrap utilities.
type AdminHandler struct {
	adminSvc *service.AdminService
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(adminSvc *service.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// DeleteAllData handles DELETE /utils/delete/all_data.
func (h *AdminHandler) DeleteAllData(w http.ResponseWriter, r *http.Request) {
	h.adminSvc.ResetAll()
	WriteJSON(w, http.StatusOK, map[string]string{
		"message": "All data deleted",
	})
}
