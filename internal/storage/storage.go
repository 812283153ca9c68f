// Package storage keeps uploaded guidance media in object storage.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// MediaStore uploads objects and hands back a URL clients can fetch them from.
type MediaStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// ObjectKey builds a collision-free key under prefix that keeps the
// extension of filename.
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	return path.Join(prefix, uuid.NewString()+ext)
}
