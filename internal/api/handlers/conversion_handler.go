package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	middleware "github.com/markdave123-py/pdfcsv/internal/api/middlewares"
	"github.com/markdave123-py/pdfcsv/internal/services"
)

// ConversionHandler serves the history of finished conversions.
type ConversionHandler struct {
	conversions *services.ConversionService
	logger      *slog.Logger
}

func NewConversionHandler(conversions *services.ConversionService, logger *slog.Logger) *ConversionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConversionHandler{conversions: conversions, logger: logger}
}

func (h *ConversionHandler) ListConversions(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			RespondWithError(w, NewValidationError("limit"))
			return
		}
		limit = n
	}

	list, err := h.conversions.ListByUser(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("history.list.failed", "error", err)
		RespondWithError(w, NewInternalError("could not load history", nil))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// DownloadConversion streams an archived CSV back to its owner.
func (h *ConversionHandler) DownloadConversion(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	data, name, err := h.conversions.DownloadCSV(r.Context(), userID, id)
	switch {
	case errors.Is(err, services.ErrNotFound):
		RespondWithError(w, NewNotFoundError("conversion", id))
		return
	case errors.Is(err, services.ErrNotArchived):
		RespondWithError(w, NewConflictError(err.Error()))
		return
	case err != nil:
		h.logger.Error("history.download.failed", "conversion_id", id, "error", err)
		RespondWithError(w, NewInternalError("could not fetch archived csv", nil))
		return
	}
	attach(w, "text/csv; charset=utf-8", name, data)
}
