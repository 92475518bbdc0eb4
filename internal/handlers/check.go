package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/prereq-engine/internal/storage"
	"github.com/jwebster45206/prereq-engine/pkg/actor"
	"github.com/jwebster45206/prereq-engine/pkg/check"
	"github.com/jwebster45206/prereq-engine/pkg/requirement"
)

// CheckRequest asks for one evaluation of a character against either a
// stored prerequisite (PrereqID) or an inline requirements tree. Inline
// trees cross a trust boundary and are validated before evaluation; stored
// trees were validated at save time. Record persists a check record.
type CheckRequest struct {
	CharacterID  string            `json:"character_id"`
	PrereqID     *uuid.UUID        `json:"prereq_id,omitempty"`
	Requirements *requirement.Node `json:"requirements,omitempty"`
	Record       bool              `json:"record,omitempty"`
}

// CheckResponse carries the full result breakdown so consumers can explain
// why a character does not qualify, not merely that it does not.
type CheckResponse struct {
	Passed         bool                   `json:"passed"`
	Result         *check.Result          `json:"result"`
	FailureReasons []string               `json:"failure_reasons,omitempty"`
	Subject        requirement.SubjectRef `json:"subject"`
	RecordID       *uuid.UUID             `json:"record_id,omitempty"`
}

type CheckHandler struct {
	log     *slog.Logger
	storage storage.Storage
	checker *check.Checker
}

func NewCheckHandler(log *slog.Logger, storage storage.Storage, checker *check.Checker) *CheckHandler {
	return &CheckHandler{
		log:     log,
		storage: storage,
		checker: checker,
	}
}

func (h *CheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCheck(w, r)
	case http.MethodGet:
		h.handleListRecords(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CheckHandler) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body. Expected JSON with 'character_id' and 'prereq_id' or 'requirements'.", http.StatusBadRequest)
		return
	}

	if req.CharacterID == "" {
		http.Error(w, "Invalid request: character_id cannot be empty", http.StatusBadRequest)
		return
	}
	if (req.PrereqID == nil) == (req.Requirements == nil) {
		http.Error(w, "Invalid request: exactly one of prereq_id or requirements must be given", http.StatusBadRequest)
		return
	}

	// Security: prevent directory traversal into the character data dir
	if strings.Contains(req.CharacterID, "..") || strings.Contains(req.CharacterID, "/") {
		http.Error(w, "Invalid character ID", http.StatusBadRequest)
		return
	}

	spec, err := h.storage.GetCharacterSpec(r.Context(), req.CharacterID)
	if err != nil {
		if errors.Is(err, storage.ErrCharacterNotFound) {
			http.Error(w, "Character not found", http.StatusNotFound)
			return
		}
		h.log.Error("Failed to load character spec", "error", err, "id", req.CharacterID)
		http.Error(w, "Failed to load character", http.StatusInternalServerError)
		return
	}

	character, err := actor.NewCharacterFromSpec(spec)
	if err != nil {
		h.log.Error("Failed to build character from spec", "error", err, "id", req.CharacterID)
		http.Error(w, "Failed to build character", http.StatusInternalServerError)
		return
	}

	tree := req.Requirements
	if req.PrereqID != nil {
		p, err := h.storage.GetPrerequisite(r.Context(), *req.PrereqID)
		if err != nil {
			h.log.Error("Failed to load prerequisite", "error", err, "id", req.PrereqID)
			http.Error(w, "Failed to load prerequisite", http.StatusInternalServerError)
			return
		}
		if p == nil {
			http.Error(w, "Prerequisite not found", http.StatusNotFound)
			return
		}
		tree = p.Requirements
	} else {
		// Inline trees come straight off the wire
		if err := requirement.Validate(tree); err != nil {
			h.log.Debug("Inline requirements validation failed", "error", err)
			http.Error(w, "Invalid requirements: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	result := h.checker.Check(character, tree)

	resp := CheckResponse{
		Passed:         result.Passed,
		Result:         result,
		FailureReasons: result.FailureReasons(),
		Subject:        character.Ref(),
	}

	if req.Record {
		record := check.NewRecord(character.Ref(), tree, result)
		if err := h.storage.SaveCheckRecord(r.Context(), record); err != nil {
			h.log.Error("Failed to save check record", "error", err, "id", record.ID)
			http.Error(w, "Failed to save check record", http.StatusInternalServerError)
			return
		}
		resp.RecordID = &record.ID
		h.log.Info("Check recorded", "record_id", record.ID, "subject", record.Subject.String(), "passed", record.Passed)
	}

	writeJSON(w, h.log, http.StatusOK, resp)
}

// handleListRecords serves GET /v1/checks?subject=<kind>:<id>
func (h *CheckHandler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("subject")
	kind, id, found := strings.Cut(raw, ":")
	if !found || kind == "" || id == "" {
		http.Error(w, "Query parameter 'subject' is required in the form kind:id (e.g. character:pirate_captain)", http.StatusBadRequest)
		return
	}

	records, err := h.storage.ListCheckRecords(r.Context(), requirement.SubjectRef{Kind: kind, ID: id})
	if err != nil {
		h.log.Error("Failed to list check records", "error", err, "subject", raw)
		http.Error(w, "Failed to list check records", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.log, http.StatusOK, records)
}
