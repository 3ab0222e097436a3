package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Setenv("JOBAPPLY_TEST_TOKEN_SET", " from-env ")

	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token")
	if err := os.WriteFile(tokenFile, []byte("  from-file \n"), 0o600); err != nil {
		t.Fatalf("write token file: %v", err)
	}

	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	tests := []struct {
		name    string
		src     Source
		expect  string
		wantErr string
	}{
		{
			name:   "inline value is trimmed",
			src:    Source{Name: "api token", Value: "  inline  "},
			expect: "inline",
		},
		{
			name:   "file takes precedence over value",
			src:    Source{Name: "api token", Value: "inline", File: tokenFile},
			expect: "from-file",
		},
		{
			name:    "empty file is an error",
			src:     Source{Name: "api token", File: emptyFile},
			wantErr: "is empty",
		},
		{
			name:    "missing file is an error",
			src:     Source{Name: "api token", File: filepath.Join(dir, "missing")},
			wantErr: "reading api token",
		},
		{
			name:   "env is the last resort",
			src:    Source{Name: "api token", Env: "JOBAPPLY_TEST_TOKEN_SET"},
			expect: "from-env",
		},
		{
			name:   "value wins over env",
			src:    Source{Name: "api token", Value: "inline", Env: "JOBAPPLY_TEST_TOKEN_SET"},
			expect: "inline",
		},
		{
			name:    "unset env is not configured",
			src:     Source{Name: "api token", Env: "JOBAPPLY_TEST_TOKEN_UNSET"},
			wantErr: "api token is not configured",
		},
		{
			name:    "nothing configured",
			src:     Source{},
			wantErr: "secret is not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestLoadOptional(t *testing.T) {
	t.Parallel()

	got, err := LoadOptional(Source{Name: "api token"})
	if err != nil || got != "" {
		t.Fatalf("expected empty secret without error, got %q, %v", got, err)
	}

	_, err = Load(Source{Name: "api token"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	_, err = LoadOptional(Source{Name: "api token", File: filepath.Join(t.TempDir(), "missing")})
	if err == nil {
		t.Fatalf("expected error for a missing file")
	}
}
