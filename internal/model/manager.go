// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package model makes annotation models available locally. Built-in models
// ship inside the binary; remote models are lemma dictionaries downloaded
// once into a cache directory and reused on later runs.
package model

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/wiki-nlp/internal/httputil"
	"github.com/pdiddy/wiki-nlp/pkg/types"
)

// BuiltinPrefix marks models compiled into the binary.
const BuiltinPrefix = "builtin:"

var (
	ErrDownloadFailed = errors.New("model download failed")
	ErrUnknownModel   = errors.New("unknown model")
)

// DefaultName returns the built-in model for a wiki language.
func DefaultName(language string) string {
	return BuiltinPrefix + language
}

// IsBuiltin reports whether name refers to a model compiled into the binary.
func IsBuiltin(name string) bool {
	return strings.HasPrefix(name, BuiltinPrefix)
}

// Manager resolves model names to local files, downloading on first use.
type Manager struct {
	client     *http.Client
	cacheDir   string
	baseURL    string
	userAgent  string
	token      string
	maxRetries int
}

// NewManager returns a Manager for cfg. The token, when set, is sent as a
// bearer token with downloads.
func NewManager(client *http.Client, cfg types.ModelConfig, httpCfg types.HTTPConfig, token string) *Manager {
	return &Manager{
		client:     client,
		cacheDir:   cfg.CacheDir,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  httpCfg.UserAgent,
		token:      token,
		maxRetries: httpCfg.MaxRetries,
	}
}

// Path returns where a remote model is cached. Built-in models have no path.
func (m *Manager) Path(name string) string {
	if IsBuiltin(name) {
		return ""
	}
	return filepath.Join(m.cacheDir, filepath.Base(name))
}

// Available reports whether name can be loaded without network access.
func (m *Manager) Available(name string) bool {
	if IsBuiltin(name) {
		return true
	}
	info, err := os.Stat(m.Path(name))
	return err == nil && info.Size() > 0
}

// Ensure makes the named model available and returns its local path (empty
// for built-in models). A cached model is reused without network access.
// Ensure is idempotent.
func (m *Manager) Ensure(ctx context.Context, name string) (string, error) {
	if name == "" || name == BuiltinPrefix {
		return "", fmt.Errorf("%w: empty name", ErrUnknownModel)
	}
	if IsBuiltin(name) {
		slog.Debug("using built-in model", "model", name)
		return "", nil
	}
	if filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q is not a plain file name", ErrUnknownModel, name)
	}

	path := m.Path(name)
	if m.Available(name) {
		slog.Debug("model cache hit", "model", name, "path", path)
		return path, nil
	}
	if m.baseURL == "" {
		return "", fmt.Errorf("%w: %q is not cached and no model base URL is configured", ErrUnknownModel, name)
	}

	if err := os.MkdirAll(m.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("creating model cache directory: %w", err)
	}
	if err := m.download(ctx, name, path); err != nil {
		return "", err
	}
	return path, nil
}

// download fetches name into path through a temp file so a failed transfer
// never leaves a partial model behind.
func (m *Manager) download(ctx context.Context, name, path string) error {
	src := m.baseURL + "/" + url.PathEscape(name)
	slog.Info("downloading model", "model", name, "url", src)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if m.userAgent != "" {
		req.Header.Set("User-Agent", m.userAgent)
	}
	if m.token != "" {
		req.Header.Set("Authorization", "Bearer "+m.token)
	}

	resp, err := httputil.DoWithRetry(ctx, m.client, req, m.maxRetries)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDownloadFailed, name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: HTTP %d", ErrDownloadFailed, name, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("%w: %s: writing: %v", ErrDownloadFailed, name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s: empty response", ErrDownloadFailed, name)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("installing model: %w", err)
	}
	slog.Info("model installed", "model", name, "path", path, "bytes", n)
	return nil
}
