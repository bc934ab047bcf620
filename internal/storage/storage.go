// Package storage archives uploaded applicant photos outside the record.
package storage

import (
	"context"
	"path"
)

// Archive stores a blob under a key.
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// PhotoKey is the archive key for an application's photo.
func PhotoKey(applicationID, ext string) string {
	return path.Join(applicationID, "photo"+ext)
}
