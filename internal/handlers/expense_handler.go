package handlers

import (
	"encoding/json"
	"net/http"

	"lease-reconciliation-service/internal/services"
)

type ExpenseHandler struct {
	handler
	service ExpenseService
}

func (h *ExpenseHandler) RecordExpense(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var in services.ExpenseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	expense, err := h.service.Record(r.Context(), projectID, in, actorFrom(r))
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, expense)
}

func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	expenses, err := h.service.List(r.Context(), projectID)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, expenses)
}
