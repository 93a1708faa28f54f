package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/deckwright/internal/apperr"
	"github.com/starford/deckwright/internal/deckservice"
)

// ExportHandler lists and serves export files.
type ExportHandler struct {
	svc *deckservice.Service
}

// NewExportHandler creates an export handler.
func NewExportHandler(svc *deckservice.Service) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// safeName validates that the filename is a plain name (no path separators,
// no traversal).
func safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") || strings.ContainsAny(cleaned, `/\`) {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	return cleaned, nil
}

// List handles GET /api/exports.
//
//	@Summary		List written exports, newest first
//	@Tags			exports
//	@Produce		json
//	@Success		200	{object}	ExportListResponse
//	@Security		BearerAuth
//	@Router			/exports [get]
func (h *ExportHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Exports(r.Context())
	if err != nil {
		slog.Error("list exports failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ExportListResponse{Exports: items})
}

// ServeFile handles GET /api/exports/{filename}.
//
//	@Summary		Download an export as plain text
//	@Tags			exports
//	@Produce		plain
//	@Param			filename	path	string	true	"Export file name"
//	@Success		200
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/exports/{filename} [get]
func (h *ExportHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name, err := safeName(chi.URLParam(r, "filename"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	data, err := h.svc.ReadExport(r.Context(), name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("read export failed", slog.String("name", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
