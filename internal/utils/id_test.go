package utils

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestStoredFileName(t *testing.T) {
	tests := []struct {
		original string
		wantExt  string
	}{
		{"photo.PNG", ".png"},
		{"archive.tar.gz", ".gz"},
		{"../../etc/passwd", ""},
		{"noext", ""},
		{"weird." + strings.Repeat("x", 40), ""},
	}

	for _, tt := range tests {
		name := StoredFileName(tt.original)
		if !strings.HasSuffix(name, tt.wantExt) {
			t.Fatalf("%q: expected extension %q in %q", tt.original, tt.wantExt, name)
		}
		if _, err := uuid.Parse(strings.TrimSuffix(name, tt.wantExt)); err != nil {
			t.Fatalf("%q: expected uuid stem in %q: %v", tt.original, name, err)
		}
	}

	if StoredFileName("a.txt") == StoredFileName("a.txt") {
		t.Fatalf("expected unique names")
	}
}
