package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"minangpos-backend/internal/domain"
)

type apiError struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
}

// apiResponse is the envelope of every JSON reply.
type apiResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Data    any       `json:"data"`
	Error   *apiError `json:"error,omitempty"`
}

func writeRawJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func envelope(status int, message string, data any) apiResponse {
	if status < 400 {
		return apiResponse{Status: "ok", Message: message, Data: data}
	}
	return apiResponse{
		Status:  "error",
		Message: message,
		Data:    data,
		Error:   &apiError{Code: status, Status: http.StatusText(status)},
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	writeRawJSON(w, status, envelope(status, "", payload))
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status < 400 {
		status = http.StatusInternalServerError
	}
	writeRawJSON(w, status, envelope(status, message, nil))
}

// writeServiceError maps domain sentinel errors to HTTP statuses. Anything
// unrecognised is logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAuthorization):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyClosed):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("unhandled service error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
