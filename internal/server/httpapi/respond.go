package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/and161185/bdaybook/internal/errs"
)

// envelope is the JSON response shape the clients expect.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}

// writeServiceError maps sentinel errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, errs.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, errs.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate limited, try again later")
	case errors.Is(err, errs.ErrMediaUpload):
		writeError(w, http.StatusBadGateway, "photo upload failed, retry the request")
	default:
		writeError(w, http.StatusInternalServerError, "server error")
	}
}
