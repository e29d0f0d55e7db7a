package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"lease-reconciliation-service/internal/leaseterm"
	"lease-reconciliation-service/internal/models"
	"lease-reconciliation-service/internal/reconciliation"
	"lease-reconciliation-service/internal/repositories"
	"lease-reconciliation-service/internal/services"
)

type PaymentHandler struct {
	handler
	service PaymentService
}

type previewRequest struct {
	ContractID int64                 `json:"contract_id"`
	Amount     reconciliation.Amount `json:"amount"`
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (h *PaymentHandler) PreviewPayment(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.ContractID <= 0 {
		respondWithError(w, http.StatusBadRequest, "contract_id is required")
		return
	}

	preview, err := h.service.Preview(r.Context(), req.ContractID, req.Amount.Decimal)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, preview)
}

func (h *PaymentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var in services.PaymentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	payment, err := h.service.Record(r.Context(), in, actorFrom(r))
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, payment)
}

func (h *PaymentHandler) TransitionPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid payment ID")
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	payment, err := h.service.Transition(r.Context(), id, req.Status, actorFrom(r))
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, payment)
}

func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

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
	filter := repositories.PaymentFilter{
		ContractID: contractID,
		TenantID:   tenantID,
		Status:     q.Get("status"),
		FromDate:   q.Get("from_date"),
		ToDate:     q.Get("to_date"),
	}
	if filter.Status != "" && !models.ValidPaymentStatus(filter.Status) {
		respondWithError(w, http.StatusBadRequest, "Invalid status")
		return
	}
	if filter.FromDate != "" && !leaseterm.ValidDate(filter.FromDate) {
		respondWithError(w, http.StatusBadRequest, "Invalid from_date format. Use YYYY-MM-DD")
		return
	}
	if filter.ToDate != "" && !leaseterm.ValidDate(filter.ToDate) {
		respondWithError(w, http.StatusBadRequest, "Invalid to_date format. Use YYYY-MM-DD")
		return
	}

	payments, page, err := h.service.List(r.Context(), filter, pagination(r))
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ListResponse{Data: payments, Meta: page})
}

func (h *PaymentHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

func (h *PaymentHandler) ReconcilePeriod(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID")
		return
	}

	result, err := h.service.ReconcilePeriod(r.Context(), id, mux.Vars(r)["period"])
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
