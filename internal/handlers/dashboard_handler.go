package handlers

import "net/http"

type DashboardHandler struct {
	handler
	service DashboardService
}

func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Get(r.Context())
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, dashboard)
}
