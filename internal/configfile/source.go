// Package configfile reads, writes and validates the declarative YAML
// configuration that describes the desired state of a shop.
package configfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilupskalvis/shopsync/internal/apperr"
	"github.com/kilupskalvis/shopsync/internal/models"
)

// DefaultPath is used when neither a flag nor the environment names a file
const DefaultPath = "config.yml"

const backupTimeFormat = "2006-01-02T15-04-05"

// Source is a configuration file on disk
type Source struct {
	Path string
}

// NewSource returns a source for path, falling back to DefaultPath
func NewSource(path string) *Source {
	if path == "" {
		path = DefaultPath
	}
	return &Source{Path: path}
}

// Exists reports whether the file is present
func (s *Source) Exists() bool {
	info, err := os.Stat(s.Path)
	return err == nil && !info.IsDir()
}

// Load parses the file. Unknown keys are rejected so that typos do not
// silently drop configuration.
func (s *Source) Load(ctx context.Context) (*models.Configuration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			e := apperr.LocalConfig(s.Path, fmt.Errorf("file not found"))
			e.Suggestions = []string{
				"Run 'shopsync pull' to create the file from the remote instance",
				"Pass the file location with --config or SALEOR_CONFIG",
			}
			return nil, e
		}
		return nil, apperr.LocalConfig(s.Path, err)
	}

	cfg, err := Decode(data)
	if err != nil {
		return nil, apperr.LocalConfig(s.Path, err)
	}
	return cfg, nil
}

// Decode parses YAML into a configuration. An empty document is an empty
// configuration.
func Decode(data []byte) (*models.Configuration, error) {
	cfg := models.Empty()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return models.Empty(), nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, nil
}

// Encode renders a configuration as YAML with two-space indentation
func Encode(cfg *models.Configuration) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes cfg to the file. An existing file is first copied to a
// timestamped backup next to it, whose path is returned.
func (s *Source) Save(cfg *models.Configuration) (string, error) {
	data, err := Encode(cfg)
	if err != nil {
		return "", err
	}

	var backup string
	if s.Exists() {
		backup, err = s.backup(time.Now())
		if err != nil {
			return "", err
		}
	}

	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return backup, nil
}

// BackupPath is the backup file name used for a save at ts
func (s *Source) BackupPath(ts time.Time) string {
	ext := filepath.Ext(s.Path)
	base := strings.TrimSuffix(s.Path, ext)
	return fmt.Sprintf("%s.backup-%s.yml", base, ts.UTC().Format(backupTimeFormat))
}

func (s *Source) backup(ts time.Time) (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read config for backup: %w", err)
	}
	path := s.BackupPath(ts)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return path, nil
}
