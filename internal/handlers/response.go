package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"lease-reconciliation-service/internal/repositories"
	"lease-reconciliation-service/internal/services"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// ListResponse wraps one page of a listing.
type ListResponse struct {
	Data any               `json:"data"`
	Meta repositories.Page `json:"meta"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Error marshaling JSON response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithServiceError maps service errors onto status codes. Unexpected
// errors are logged and reported without their internals.
func (h *handler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, services.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, services.ErrPropertyLeased), errors.Is(err, services.ErrInvalidTransition):
		respondWithError(w, http.StatusConflict, err.Error())
	default:
		requestLogger(r, h.logger).Error("request failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// pathID reads a positive integer route variable.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt64 returns 0 for a missing parameter and false for a malformed one.
func queryInt64(r *http.Request, name string) (int64, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func pagination(r *http.Request) repositories.Pagination {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	return repositories.Pagination{Page: page, PerPage: perPage}.Normalize()
}

func actorFrom(r *http.Request) services.Actor {
	return services.Actor{
		UserID:        r.Header.Get(userIDHeader),
		CorrelationID: requestIDFrom(r.Context()),
	}
}
