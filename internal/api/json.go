package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// buildError is the error shape of the deck build endpoint.
type buildError struct {
	Detail buildErrorDetail `json:"detail"`
}

type buildErrorDetail struct {
	Type    string `json:"type" example:"InvalidCommander"`
	Message string `json:"message"`
}

func buildErrorBody(typ, msg string) buildError {
	return buildError{Detail: buildErrorDetail{Type: typ, Message: msg}}
}
