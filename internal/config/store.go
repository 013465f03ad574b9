package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"issue-tracker/internal/apperr"
)

// AppName namespaces the config directory.
const AppName = "issue-tracker"

const fileName = "config.json"

// Record is the persisted credential pair. An empty field means unset.
type Record struct {
	GitHubAccessToken string `json:"github_access_token"`
	UserName          string `json:"user_name"`
}

// DefaultPath returns the config file location. XDG_CONFIG_HOME from env
// wins over the OS default so tests and wrappers can relocate it.
func DefaultPath(env map[string]string) (string, error) {
	if dir := env["XDG_CONFIG_HOME"]; dir != "" {
		return filepath.Join(dir, AppName, fileName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", apperr.Wrap(apperr.ConfigIO, fmt.Errorf("user config dir: %w", err))
	}
	return filepath.Join(dir, AppName, fileName), nil
}

// Store reads and writes a Record at a fixed path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file location without touching the filesystem.
func (s *Store) Path() string { return s.path }

// Load reads the record. A missing file yields the zero Record; the file is
// only created by Save.
func (s *Store) Load() (Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, nil
		}
		return Record{}, apperr.Wrap(apperr.ConfigIO, fmt.Errorf("read %s: %w", s.path, err))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Record{}, nil
	}

	// hand-edited files may carry comments or trailing commas
	std, err := hujson.Standardize(data)
	if err != nil {
		return Record{}, apperr.Wrap(apperr.ConfigIO, fmt.Errorf("parse %s: %w", s.path, err))
	}
	var rec Record
	if err := json.Unmarshal(std, &rec); err != nil {
		return Record{}, apperr.Wrap(apperr.ConfigIO, fmt.Errorf("parse %s: %w", s.path, err))
	}
	return rec, nil
}

// Save replaces the file with rec. The file holds a bearer token, so it is
// kept owner-only.
func (s *Store) Save(rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return apperr.Wrap(apperr.ConfigIO, fmt.Errorf("encode config: %w", err))
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return apperr.Wrap(apperr.ConfigIO, fmt.Errorf("mkdir: %w", err))
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return apperr.Wrap(apperr.ConfigIO, fmt.Errorf("write %s: %w", s.path, err))
	}
	// atomic.WriteFile doesn't set permissions on new files
	if err := os.Chmod(s.path, 0o600); err != nil {
		return apperr.Wrap(apperr.ConfigIO, fmt.Errorf("chmod %s: %w", s.path, err))
	}
	return nil
}
