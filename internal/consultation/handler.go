package consultation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carelink/backend/internal/domain"
	"github.com/carelink/backend/internal/extraction"
)

// userIDHeader carries the caller identity resolved by the fronting
// auth layer. Requests without it are rejected.
const userIDHeader = "X-User-ID"

// Handler exposes the consultation service over HTTP.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates the HTTP handler for consultations.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger.With("component", "http")}
}

// Routes mounts the consultation endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/v1/consultations", func(r chi.Router) {
		r.Post("/", h.startSession)
		r.Get("/", h.listSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.getHistory)
			r.Delete("/", h.deleteSession)
			r.Post("/messages", h.sendMessage)
			r.Post("/reports", h.uploadReport)
			r.Post("/end", h.endSession)
		})
	})
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}

	result, err := h.service.Start(r.Context(), ownerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
		return
	}

	result, err := h.service.SendMessage(r.Context(), chi.URLParam(r, "sessionID"), ownerID, req.Text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) uploadReport(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("multipart field 'file' is required"))
		return
	}
	defer file.Close()

	result, err := h.service.UploadReport(
		r.Context(),
		chi.URLParam(r, "sessionID"),
		ownerID,
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
		file,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}

	session, err := h.service.History(r.Context(), chi.URLParam(r, "sessionID"), ownerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}

	sessions, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (h *Handler) endSession(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.service.End(r.Context(), chi.URLParam(r, "sessionID"), ownerID); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := callerID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "sessionID"), ownerID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps service errors onto HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var extErr *extraction.Error
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("session not found"))
	case errors.Is(err, domain.ErrSessionEnded):
		writeJSON(w, http.StatusConflict, errorBody("session has ended"))
	case errors.As(err, &extErr):
		switch extErr.Code {
		case extraction.ErrFileTooLarge:
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody(extErr.Message))
		case extraction.ErrUnsupportedType:
			writeJSON(w, http.StatusUnsupportedMediaType, errorBody(extErr.Message))
		default:
			h.logger.Error("extraction failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorBody("failed to process file"))
		}
	default:
		h.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(userIDHeader)
	if id == "" {
		writeJSON(w, http.StatusUnauthorized, errorBody("missing "+userIDHeader+" header"))
		return "", false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
