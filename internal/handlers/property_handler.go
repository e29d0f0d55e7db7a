package handlers

import (
	"net/http"

	"lease-reconciliation-service/internal/availability"
)

type PropertyHandler struct {
	handler
	service   PropertyService
	contracts ContractService
}

func (h *PropertyHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	properties, page, err := h.service.List(r.Context(), pagination(r))
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ListResponse{Data: properties, Meta: page})
}

func (h *PropertyHandler) LeasedProperties(w http.ResponseWriter, r *http.Request) {
	ids, err := h.contracts.LeasedPropertyIDs(r.Context())
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"property_ids": ids})
}

// Conflicts lists properties already held by more than one active contract.
func (h *PropertyHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	conflicts, err := h.contracts.DoubleLeased(r.Context())
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	if conflicts == nil {
		conflicts = []availability.Conflict{}
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"conflicts": conflicts})
}
