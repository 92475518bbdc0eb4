package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jwebster45206/prereq-engine/internal/storage"
	"github.com/jwebster45206/prereq-engine/pkg/actor"
	"github.com/stretchr/testify/assert"
)

func TestCharacterHandler_List(t *testing.T) {
	mockSto := storage.NewMockStorage()
	mockSto.AddCharacterSpec("pirate_captain", testCharacterSpec())
	handler := NewCharacterHandler(testLogger(), mockSto)

	req := httptest.NewRequest(http.MethodGet, "/v1/characters", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
	assert.Equal(t, "pirate_captain", list[0]["id"])
	assert.Equal(t, "Captain Reyes", list[0]["name"])
}

func TestCharacterHandler_ListEmpty(t *testing.T) {
	handler := NewCharacterHandler(testLogger(), storage.NewMockStorage())

	req := httptest.NewRequest(http.MethodGet, "/v1/characters", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCharacterHandler_Get(t *testing.T) {
	mockSto := storage.NewMockStorage()
	mockSto.AddCharacterSpec("pirate_captain", testCharacterSpec())
	handler := NewCharacterHandler(testLogger(), mockSto)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{
			name:           "existing character",
			path:           "/v1/characters/pirate_captain",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown character",
			path:           "/v1/characters/nobody",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "directory traversal",
			path:           "/v1/characters/..%2Fsecrets",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedStatus == http.StatusOK {
				var spec actor.CharacterSpec
				assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
				assert.Equal(t, "pirate_captain", spec.ID)
			}
		})
	}
}

func TestCharacterHandler_MethodNotAllowed(t *testing.T) {
	handler := NewCharacterHandler(testLogger(), storage.NewMockStorage())

	req := httptest.NewRequest(http.MethodPost, "/v1/characters", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
