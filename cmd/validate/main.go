package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/prereq-engine/pkg/requirement"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <prereq.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	if err := validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Prerequisite file is valid!")
}

func validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	// Validate filename format
	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("prerequisite file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidFilename(nameWithoutExt) {
		return fmt.Errorf("prerequisite filename '%s' must be lowercase snake_case (e.g., my_prereq.json, not my-prereq.json or MyPrereq.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var p requirement.Prerequisite
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&p); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	if p.Description == "" {
		return fmt.Errorf("file %s is missing a description", filename)
	}

	if err := requirement.Validate(p.Requirements); err != nil {
		var ve *requirement.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("requirements tree is invalid at %s: %s", ve.Path, ve.Detail)
		}
		return fmt.Errorf("requirements tree is invalid: %w", err)
	}

	return nil
}

var validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidFilename(name string) bool {
	return validFilenameRegex.MatchString(name)
}
