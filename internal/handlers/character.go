package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/prereq-engine/internal/storage"
)

type CharacterHandler struct {
	log     *slog.Logger
	storage storage.Storage
}

func NewCharacterHandler(log *slog.Logger, storage storage.Storage) *CharacterHandler {
	return &CharacterHandler{
		log:     log,
		storage: storage,
	}
}

func (h *CharacterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if r.URL.Path == "/v1/characters" || r.URL.Path == "/v1/characters/" {
			h.handleList(w, r)
		} else {
			h.handleGet(w, r)
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleList lists all available character sheets with summary fields
func (h *CharacterHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := h.storage.ListCharacters(r.Context())
	if err != nil {
		h.log.Error("Failed to list characters", "error", err)
		http.Error(w, "Failed to list characters", http.StatusInternalServerError)
		return
	}

	// Initialize as empty slice instead of nil
	characterList := make([]map[string]interface{}, 0)
	for _, id := range ids {
		spec, err := h.storage.GetCharacterSpec(r.Context(), id)
		if err != nil {
			h.log.Warn("Failed to load character spec", "error", err, "id", id)
			continue
		}

		characterList = append(characterList, map[string]interface{}{
			"id":       spec.ID,
			"name":     spec.Name,
			"class":    spec.Class,
			"level":    spec.Level,
			"pronouns": spec.Pronouns,
		})
	}

	writeJSON(w, h.log, http.StatusOK, characterList)
}

func (h *CharacterHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/v1/characters/"))
	if id == "" || id == "/" {
		http.Error(w, "Character ID is required in URL path (e.g., /v1/characters/pirate_captain)", http.StatusBadRequest)
		return
	}

	// Security: prevent directory traversal
	if strings.Contains(id, "..") || strings.Contains(id, "/") {
		http.Error(w, "Invalid character ID", http.StatusBadRequest)
		return
	}

	spec, err := h.storage.GetCharacterSpec(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrCharacterNotFound) {
			http.Error(w, "Character not found", http.StatusNotFound)
			return
		}
		h.log.Error("Failed to load character spec", "error", err, "id", id)
		http.Error(w, "Failed to load character", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.log, http.StatusOK, spec)
}
