package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	middleware "github.com/markdave123-py/pdfcsv/internal/api/middlewares"
	"github.com/markdave123-py/pdfcsv/internal/api/view"
	"github.com/markdave123-py/pdfcsv/internal/core/conversion_engine"
	"github.com/markdave123-py/pdfcsv/internal/export"
	"github.com/markdave123-py/pdfcsv/internal/models"
)

// multipartOverhead is the slack allowed on top of the file size for the
// multipart envelope.
const multipartOverhead = 1 << 20

type SessionHandler struct {
	store    *conversion_engine.SessionStore
	engine   conversion_engine.Engine
	maxBytes int64
	logger   *slog.Logger
}

func NewSessionHandler(store *conversion_engine.SessionStore, engine conversion_engine.Engine, maxBytes int64, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{store: store, engine: engine, maxBytes: maxBytes, logger: logger}
}

// CreateSession starts a new IDLE session owned by the caller.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	owner, _ := middleware.UserIDFromContext(r.Context())
	s := h.store.Create(owner)
	h.logger.Info("session.create", "session_id", s.ID())
	writeJSON(w, http.StatusCreated, sessionView(s.State()))
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionView(s.State()))
}

// UploadFile accepts one multipart "file" part and queues its conversion.
func (h *SessionHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	name, mimeType, data, apiErr := h.readPDFPart(r)
	if apiErr != nil {
		RespondWithError(w, apiErr)
		return
	}

	owner, _ := middleware.UserIDFromContext(r.Context())
	up := conversion_engine.Upload{
		Name:     name,
		MimeType: mimeType,
		Body:     bytes.NewReader(data),
		UserID:   owner,
	}

	if err := h.engine.Submit(r.Context(), s, up); err != nil {
		if errors.Is(err, conversion_engine.ErrBusy) {
			RespondWithError(w, NewConflictError(err.Error()))
			return
		}
		h.logger.Error("session.submit.failed", "session_id", s.ID(), "error", err)
		RespondWithError(w, NewServiceUnavailableError("could not queue the conversion"))
		return
	}

	h.logger.Info("session.file.accepted", "session_id", s.ID(), "file", name, "bytes", len(data))
	writeJSON(w, http.StatusAccepted, sessionView(s.State()))
}

// ResetSession clears a finished session back to IDLE.
func (h *SessionHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := s.Reset(); err != nil {
		RespondWithError(w, NewConflictError(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, sessionView(s.State()))
}

func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.store.Delete(s.ID())
	w.WriteHeader(http.StatusNoContent)
}

// DownloadCSV returns the model's text exactly as received, after fence removal.
func (h *SessionHandler) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	st, ok := h.finished(w, r)
	if !ok {
		return
	}
	attach(w, "text/csv; charset=utf-8", conversion_engine.CSVFileName(st.File.Name), []byte(st.Result.RawText))
}

func (h *SessionHandler) DownloadXLSX(w http.ResponseWriter, r *http.Request) {
	st, ok := h.finished(w, r)
	if !ok {
		return
	}
	data, err := export.WorkbookFromResult(*st.Result)
	if err != nil {
		h.logger.Error("session.export.failed", "session_id", st.ID, "error", err)
		RespondWithError(w, NewInternalError("could not build workbook", err))
		return
	}
	name := export.XLSXFileName(conversion_engine.CSVFileName(st.File.Name))
	attach(w, export.XLSXContentType, name, data)
}

// lookup resolves {id}; sessions owned by someone else look missing.
func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*conversion_engine.Session, bool) {
	id := chi.URLParam(r, "id")
	s, err := h.store.Get(id)
	if err != nil {
		RespondWithError(w, NewNotFoundError("session", id))
		return nil, false
	}
	caller, _ := middleware.UserIDFromContext(r.Context())
	if s.Owner() != caller {
		RespondWithError(w, NewNotFoundError("session", id))
		return nil, false
	}
	return s, true
}

func (h *SessionHandler) finished(w http.ResponseWriter, r *http.Request) (models.SessionState, bool) {
	s, ok := h.lookup(w, r)
	if !ok {
		return models.SessionState{}, false
	}
	st := s.State()
	if st.Status != models.StatusSuccess || st.Result == nil || st.File == nil {
		RespondWithError(w, NewConflictError("no converted data to download"))
		return models.SessionState{}, false
	}
	return st, true
}

// readPDFPart finds the "file" part and reads it into memory.
func (h *SessionHandler) readPDFPart(r *http.Request) (string, string, []byte, *APIError) {
	mr, err := r.MultipartReader()
	if err != nil {
		return "", "", nil, NewBadRequestError("expected a multipart/form-data body", err)
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", "", nil, NewValidationError("file")
		}
		if err != nil {
			return "", "", nil, h.bodyError(err)
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}
		defer part.Close()

		mimeType, ok := pdfMediaType(part)
		if !ok {
			return "", "", nil, NewUnsupportedMediaError(part.Header.Get("Content-Type"))
		}

		data, err := io.ReadAll(io.LimitReader(part, h.maxBytes+1))
		if err != nil {
			return "", "", nil, h.bodyError(err)
		}
		if int64(len(data)) > h.maxBytes {
			return "", "", nil, NewTooLargeError(h.maxBytes)
		}
		return part.FileName(), mimeType, data, nil
	}
}

func (h *SessionHandler) bodyError(err error) *APIError {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return NewTooLargeError(h.maxBytes)
	}
	return NewBadRequestError("could not read upload", err)
}

// pdfMediaType accepts application/pdf, or an untyped part whose name ends in .pdf.
func pdfMediaType(part *multipart.Part) (string, bool) {
	raw := part.Header.Get("Content-Type")
	mt := ""
	if raw != "" {
		parsed, _, err := mime.ParseMediaType(raw)
		if err != nil {
			return "", false
		}
		mt = strings.ToLower(parsed)
	}

	switch mt {
	case "application/pdf":
		return mt, true
	case "", "application/octet-stream":
		if strings.HasSuffix(strings.ToLower(part.FileName()), ".pdf") {
			return "application/pdf", true
		}
	}
	return "", false
}

func attach(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func sessionView(st models.SessionState) view.Session {
	downloadName := ""
	if st.File != nil {
		downloadName = conversion_engine.CSVFileName(st.File.Name)
	}
	return view.FromState(st, downloadName)
}
