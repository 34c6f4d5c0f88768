package utils

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// NewID returns a random UUIDv4 string.
func NewID() string {
	return uuid.NewString()
}

// maxExtLen bounds the extension kept from client supplied filenames.
const maxExtLen = 16

// StoredFileName returns a collision free name for an upload, keeping the
// extension of the original name so static serving picks a sensible type.
func StoredFileName(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	if len(ext) > maxExtLen || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return NewID() + ext
}
