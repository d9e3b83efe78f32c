package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	keyFile := filepath.Join(dir, "key")
	if err := os.WriteFile(keyFile, []byte("  file-key\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}

	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	tests := []struct {
		name          string
		src           Source
		expect        string
		wantErr       bool
		notConfigured bool
	}{
		{name: "inline value", src: Source{Name: "groq api key", Value: " inline "}, expect: "inline"},
		{name: "file wins over value", src: Source{Value: "inline", File: keyFile}, expect: "file-key"},
		{name: "nothing configured", src: Source{Name: "groq api key"}, wantErr: true, notConfigured: true},
		{name: "empty file", src: Source{File: emptyFile}, wantErr: true},
		{name: "missing file", src: Source{File: filepath.Join(dir, "absent")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if errors.Is(err, ErrNotConfigured) != tt.notConfigured {
				t.Fatalf("unexpected ErrNotConfigured match for %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
