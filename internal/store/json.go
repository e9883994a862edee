// Package store persists the recruiter's JSON files: the DND ledger, the
// pending invite queue and the application config. Every save rewrites the
// whole file.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tartampluch/guild-recruiter/internal/config"
)

// ErrPersistence wraps every file read or write failure.
var ErrPersistence = errors.New(config.ErrPersistence)

// readJSON decodes path into v. A missing file is reported as os.ErrNotExist.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersistence, path, err)
	}
	return nil
}

// writeJSON encodes v as indented UTF-8 JSON without escaping non-ASCII or
// HTML characters and replaces path.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", config.JSONIndent)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersistence, path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), config.FilePermUserRW); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}
