package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/google/uuid"
	"github.com/jwebster45206/prereq-engine/pkg/check"
	"github.com/jwebster45206/prereq-engine/pkg/requirement"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// CheckRequest matches the API request structure
type CheckRequest struct {
	CharacterID string     `json:"character_id"`
	PrereqID    *uuid.UUID `json:"prereq_id,omitempty"`
	Record      bool       `json:"record,omitempty"`
}

// CheckResponse matches the API response structure
type CheckResponse struct {
	Passed         bool                   `json:"passed"`
	Result         *check.Result          `json:"result"`
	FailureReasons []string               `json:"failure_reasons,omitempty"`
	Subject        requirement.SubjectRef `json:"subject"`
	RecordID       *uuid.UUID             `json:"record_id,omitempty"`
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func listCharacters(client *http.Client, baseURL string) ([]string, map[string]string, error) {
	resp, err := client.Get(baseURL + "/v1/characters")
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	var characterList []map[string]interface{}
	if err := json.Unmarshal(body, &characterList); err != nil {
		return nil, nil, err
	}

	// Build display map: name -> id
	characterMap := make(map[string]string)
	var names []string
	for _, c := range characterList {
		id, okID := c["id"].(string)
		name, okName := c["name"].(string)
		if okID && okName {
			displayName := name
			if class, ok := c["class"].(string); ok && class != "" {
				if level, ok := c["level"].(float64); ok && level > 0 {
					displayName = fmt.Sprintf("%s (Level %d %s)", name, int(level), class)
				} else {
					displayName = fmt.Sprintf("%s (%s)", name, class)
				}
			}
			names = append(names, displayName)
			characterMap[displayName] = id
		}
	}

	sort.Strings(names)
	return names, characterMap, nil
}

func listPrereqs(client *http.Client, baseURL string) ([]*requirement.Prerequisite, error) {
	resp, err := client.Get(baseURL + "/v1/prereqs")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var prereqs []*requirement.Prerequisite
	if err := json.Unmarshal(body, &prereqs); err != nil {
		return nil, err
	}

	sort.Slice(prereqs, func(i, j int) bool {
		return prereqs[i].Description < prereqs[j].Description
	})
	return prereqs, nil
}

func runCheck(client *http.Client, baseURL string, characterID string, prereqID uuid.UUID, record bool) (*CheckResponse, error) {
	req := CheckRequest{
		CharacterID: characterID,
		PrereqID:    &prereqID,
		Record:      record,
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/checks",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("check request failed: %s", errorResp.Error)
	}

	var checkResp CheckResponse
	if err := json.Unmarshal(body, &checkResp); err != nil {
		return nil, fmt.Errorf("failed to parse check response: %w", err)
	}

	return &checkResp, nil
}
