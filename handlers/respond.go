package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"taskboard/membership"
	"taskboard/service"
	"taskboard/store"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// decodeJSON reads the request body into v. Numbers stay json.Number so
// numeric identifiers keep their exact text.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	return dec.Decode(v)
}

// respondError maps service and store errors onto HTTP status codes.
func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrNotAssignee):
		logger.Warn("request rejected", "error", err)
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, membership.ErrReservedTeamID):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
