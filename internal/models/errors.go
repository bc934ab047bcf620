package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned by repositories when no document has the given id.
	ErrNotFound = errors.New("application not found")

	// ErrNotFoundAfterWrite means the verification read missed a document the
	// store had just acknowledged.
	ErrNotFoundAfterWrite = errors.New("document not found after saving")
)

// ValidationError carries per-field messages for a rejected submission.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UploadError rejects a photo before it reaches the record.
type UploadError struct {
	Reason string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("photo upload rejected: %s", e.Reason)
}
