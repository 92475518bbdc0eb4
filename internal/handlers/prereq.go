package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/prereq-engine/internal/storage"
	"github.com/jwebster45206/prereq-engine/pkg/requirement"
)

// PrereqRequest is the request body for creating or replacing a prerequisite.
// Requirements arrive as an untrusted tree and are always validated before
// storage.
type PrereqRequest struct {
	Description  string                  `json:"description"`
	Requirements *requirement.Node       `json:"requirements"`
	Subject      *requirement.SubjectRef `json:"subject,omitempty"`
}

type PrereqHandler struct {
	log     *slog.Logger
	storage storage.Storage
}

func NewPrereqHandler(log *slog.Logger, storage storage.Storage) *PrereqHandler {
	return &PrereqHandler{
		log:     log,
		storage: storage,
	}
}

func (h *PrereqHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if r.URL.Path == "/v1/prereqs" || r.URL.Path == "/v1/prereqs/" {
			h.handleList(w, r)
		} else {
			h.handleGet(w, r)
		}
	case http.MethodPost:
		h.handleCreate(w, r)
	case http.MethodPut:
		h.handleReplace(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// prereqID extracts and parses the UUID from /v1/prereqs/{id}
func prereqID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/v1/prereqs/"))
	if raw == "" || raw == "/" {
		http.Error(w, "Prerequisite ID is required in URL path", http.StatusBadRequest)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, "Invalid prerequisite ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *PrereqHandler) handleList(w http.ResponseWriter, r *http.Request) {
	prereqs, err := h.storage.ListPrerequisites(r.Context())
	if err != nil {
		h.log.Error("Failed to list prerequisites", "error", err)
		http.Error(w, "Failed to list prerequisites", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.log, http.StatusOK, prereqs)
}

func (h *PrereqHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := prereqID(w, r)
	if !ok {
		return
	}

	p, err := h.storage.GetPrerequisite(r.Context(), id)
	if err != nil {
		h.log.Error("Failed to load prerequisite", "error", err, "id", id)
		http.Error(w, "Failed to load prerequisite", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.Error(w, "Prerequisite not found", http.StatusNotFound)
		return
	}

	writeJSON(w, h.log, http.StatusOK, p)
}

func (h *PrereqHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req PrereqRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body. Expected JSON with 'description' and 'requirements' fields.", http.StatusBadRequest)
		return
	}

	if req.Description == "" {
		http.Error(w, "Invalid request: description cannot be empty", http.StatusBadRequest)
		return
	}
	if err := requirement.Validate(req.Requirements); err != nil {
		h.log.Debug("Prerequisite validation failed", "error", err)
		http.Error(w, "Invalid requirements: "+err.Error(), http.StatusBadRequest)
		return
	}

	p := requirement.NewPrerequisite(req.Description, req.Requirements)
	p.Subject = req.Subject

	if err := h.storage.SavePrerequisite(r.Context(), p); err != nil {
		h.log.Error("Failed to save prerequisite", "error", err, "id", p.ID)
		http.Error(w, "Failed to save prerequisite", http.StatusInternalServerError)
		return
	}

	h.log.Info("Prerequisite created", "id", p.ID, "description", p.Description)
	writeJSON(w, h.log, http.StatusCreated, p)
}

// handleReplace swaps a prerequisite's requirements tree wholesale.
// The stored tree is never edited in place.
func (h *PrereqHandler) handleReplace(w http.ResponseWriter, r *http.Request) {
	id, ok := prereqID(w, r)
	if !ok {
		return
	}

	var req PrereqRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body. Expected JSON with 'description' and 'requirements' fields.", http.StatusBadRequest)
		return
	}
	if err := requirement.Validate(req.Requirements); err != nil {
		h.log.Debug("Prerequisite validation failed", "error", err, "id", id)
		http.Error(w, "Invalid requirements: "+err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.storage.GetPrerequisite(r.Context(), id)
	if err != nil {
		h.log.Error("Failed to load prerequisite", "error", err, "id", id)
		http.Error(w, "Failed to load prerequisite", http.StatusInternalServerError)
		return
	}
	if p == nil {
		http.Error(w, "Prerequisite not found", http.StatusNotFound)
		return
	}

	p.Requirements = req.Requirements
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.Subject != nil {
		p.Subject = req.Subject
	}
	p.UpdatedAt = time.Now().UTC()

	if err := h.storage.SavePrerequisite(r.Context(), p); err != nil {
		h.log.Error("Failed to save prerequisite", "error", err, "id", id)
		http.Error(w, "Failed to save prerequisite", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.log, http.StatusOK, p)
}

func (h *PrereqHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := prereqID(w, r)
	if !ok {
		return
	}

	if err := h.storage.DeletePrerequisite(r.Context(), id); err != nil {
		h.log.Error("Failed to delete prerequisite", "error", err, "id", id)
		http.Error(w, "Failed to delete prerequisite", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeJSON marshals v and writes it with the given status code
func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("Failed to marshal response", "error", err)
		http.Error(w, "Failed to process response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}
