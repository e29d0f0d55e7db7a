package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"lease-reconciliation-service/internal/leaseterm"
	"lease-reconciliation-service/internal/models"
	"lease-reconciliation-service/internal/repositories"
	"lease-reconciliation-service/internal/services"
)

type ContractHandler struct {
	handler
	service ContractService
}

func (h *ContractHandler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var in services.ContractInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	contract, err := h.service.Create(r.Context(), in, actorFrom(r))
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, contract)
}

func (h *ContractHandler) UpdateContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID")
		return
	}

	var in services.ContractInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	contract, err := h.service.Update(r.Context(), id, in, actorFrom(r))
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, contract)
}

func (h *ContractHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID")
		return
	}

	contract, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, contract)
}

func (h *ContractHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := queryInt64(r, "tenant_id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid tenant_id")
		return
	}
	propertyID, ok := queryInt64(r, "property_id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid property_id")
		return
	}
	status := r.URL.Query().Get("status")
	if status != "" && !models.ValidContractStatus(status) {
		respondWithError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	filter := repositories.ContractFilter{TenantID: tenantID, PropertyID: propertyID, Status: status}
	contracts, page, err := h.service.List(r.Context(), filter, pagination(r))
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ListResponse{Data: contracts, Meta: page})
}

// ComputeTerm recomputes the contract form's end date as the operator edits
// the start date or duration. Incomplete or invalid input yields an empty end
// date rather than an error.
func (h *ContractHandler) ComputeTerm(w http.ResponseWriter, r *http.Request) {
	startDate := r.URL.Query().Get("start_date")
	months, _ := strconv.Atoi(r.URL.Query().Get("months"))

	respondWithJSON(w, http.StatusOK, leaseterm.Recompute(leaseterm.TermForm{StartDate: startDate, Months: months}))
}

func (h *ContractHandler) SelectableProperties(w http.ResponseWriter, r *http.Request) {
	contractID, ok := queryInt64(r, "contract_id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid contract_id")
		return
	}
	tenantID, ok := queryInt64(r, "tenant_id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid tenant_id")
		return
	}

	properties, err := h.service.SelectableProperties(r.Context(), contractID, tenantID)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, properties)
}
