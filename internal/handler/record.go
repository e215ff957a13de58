package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mohamedamineameur/renderback/internal/apperror"
	"github.com/mohamedamineameur/renderback/internal/service"
)

// maxBodyBytes caps request bodies at 100KB.
const maxBodyBytes = 100 << 10

// RecordHandler serves one collection. The router decides which of its
// methods are exposed: Couleur gets all five, Livre only create, list and delete.
type RecordHandler struct {
	svc    *service.RecordService
	logger *slog.Logger
}

// NewRecordHandler creates a RecordHandler over svc.
func NewRecordHandler(svc *service.RecordService, logger *slog.Logger) *RecordHandler {
	return &RecordHandler{
		svc:    svc,
		logger: logger.With(slog.String("entity", svc.Kind().Name)),
	}
}

// HandleList returns every record.
//
// HTTP: GET /livres, GET /couleurs
func (h *RecordHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// HandleGetByID returns one record.
//
// HTTP: GET /couleurs/{id}
func (h *RecordHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	record, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// HandleCreate saves a new record.
//
// HTTP: POST /livres, POST /couleurs
// REQUEST BODY: {"name": "Rouge"}
func (h *RecordHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, err := h.decode(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	record, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// HandleUpdate renames a record.
//
// HTTP: PUT /couleurs/{id}
// REQUEST BODY: {"name": "Violet"}
func (h *RecordHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	in, err := h.decode(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	record, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// HandleDelete removes a record.
//
// HTTP: DELETE /livres/{id}, DELETE /couleurs/{id}
func (h *RecordHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent) // 204 No Content — successful deletion, no body
}

// decode reads the JSON body. An empty body decodes to the zero input, which
// then fails validation like any other missing name.
func (h *RecordHandler) decode(w http.ResponseWriter, r *http.Request) (service.RecordInput, error) {
	var in service.RecordInput

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("invalid JSON body", slog.String("error", err.Error()))
		return in, apperror.ValidationFailed("body", fmt.Sprintf("invalid JSON body: %s", err.Error()))
	}
	return in, nil
}
