package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "key")
	if err := os.WriteFile(file, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("BIDSCOUT_TEST_SECRET", " from-env ")

	tests := []struct {
		name string
		src  Source
		want string
	}{
		{name: "file wins", src: Source{File: file, Env: "BIDSCOUT_TEST_SECRET", Value: "inline"}, want: "from-file"},
		{name: "env over value", src: Source{Env: "BIDSCOUT_TEST_SECRET", Value: "inline"}, want: "from-env"},
		{name: "unset env falls back", src: Source{Env: "BIDSCOUT_TEST_UNSET", Value: " inline "}, want: "inline"},
		{name: "value", src: Source{Value: "inline"}, want: "inline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadNotConfigured(t *testing.T) {
	t.Parallel()

	_, err := Load(Source{Name: "database url"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "database url") {
		t.Fatalf("error should name the secret: %v", err)
	}
}

func TestLoadFileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte(" \n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Load(Source{Name: "api key", File: empty, Value: "inline"})
	if err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty file error, got %v", err)
	}

	_, err = Load(Source{File: filepath.Join(dir, "missing")})
	if err == nil || errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected read error, got %v", err)
	}
}
