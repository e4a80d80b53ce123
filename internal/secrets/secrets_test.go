// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Secrets
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, WikimediaToken, "  wm_abc123  \n")
				writeFile(t, dir, ModelDownloadToken, "md_xyz789")
				return dir
			},
			want: Secrets{
				WikimediaToken:     "wm_abc123",
				ModelDownloadToken: "md_xyz789",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Secrets{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, WikimediaToken, "valid-token")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: Secrets{WikimediaToken: "valid-token"},
		},
		{
			name: "skips dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, WikimediaToken, "wm_real")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: Secrets{WikimediaToken: "wm_real"},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: Secrets{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadNotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading secrets directory")
}

func TestSecretsGet(t *testing.T) {
	s := Secrets{WikimediaToken: "from-file"}

	assert.Equal(t, "from-file", s.Get(WikimediaToken, ""))
	assert.Equal(t, "from-flag", s.Get(WikimediaToken, "from-flag"))
	assert.Equal(t, "", s.Get(ModelDownloadToken, ""))
}

func TestSecretsKeys(t *testing.T) {
	s := Secrets{"b": "2", "a": "1"}
	assert.Equal(t, []string{"a", "b"}, s.Keys())
	assert.Empty(t, Secrets{}.Keys())
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
