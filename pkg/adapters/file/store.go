package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/storygraph/internal/logging"
	"github.com/aretw0/storygraph/pkg/domain"
)

// Ext is the extension of unit files written by the store.
const Ext = ".yaml"

// altExt is accepted on read for units created by hand.
const altExt = ".yml"

// Store implements ports.UnitStore over a directory of YAML files.
// Each unit is stored as <id>.yaml; .yml files are read as well.
type Store struct {
	BasePath string
	logger   *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the logger used by Watch.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to "units".
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = "units"
	}
	s := &Store{BasePath: basePath, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// path returns the existing file of id, preferring .yaml.
func (s *Store) path(id string) (string, error) {
	if err := domain.ValidateUnitID(id); err != nil {
		return "", err
	}
	for _, ext := range []string{Ext, altExt} {
		p := filepath.Join(s.BasePath, id+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to stat unit file: %w", err)
		}
	}
	return "", domain.ErrUnitNotFound
}

// List returns the sorted ids of every unit file.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list units: %w", err)
	}

	seen := make(map[string]struct{}, len(entries))
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		id, ok := unitID(entry.Name())
		if !ok || entry.IsDir() {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// unitID maps a file name to its unit id. Hidden files (including the
// temporary files of Write) are not units.
func unitID(name string) (string, bool) {
	if strings.HasPrefix(name, ".") {
		return "", false
	}
	ext := filepath.Ext(name)
	if ext != Ext && ext != altExt {
		return "", false
	}
	return strings.TrimSuffix(name, ext), true
}

// Read returns the text of a unit.
func (s *Store) Read(ctx context.Context, id string) (string, error) {
	p, err := s.path(id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.ErrUnitNotFound
		}
		return "", fmt.Errorf("failed to read unit file: %w", err)
	}
	return string(data), nil
}

// Write persists the unit atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it
// over the destination. An existing .yml file is replaced in place.
func (s *Store) Write(ctx context.Context, id, text string) error {
	if err := domain.ValidateUnitID(id); err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure unit directory: %w", err)
	}

	destPath, err := s.path(id)
	if errors.Is(err, domain.ErrUnitNotFound) {
		destPath = filepath.Join(s.BasePath, id+Ext)
	} else if err != nil {
		return err
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, ".tmp-*"+Ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.WriteString(text); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		// Windows refuses to rename over an existing file.
		if _, statErr := os.Stat(destPath); statErr == nil {
			if err := os.Remove(destPath); err != nil {
				return fmt.Errorf("failed to remove existing unit file for overwrite: %w", err)
			}
			if err := os.Rename(tmpPath, destPath); err != nil {
				return fmt.Errorf("failed to rename temp file to unit file: %w", err)
			}
			return nil
		}
		return fmt.Errorf("failed to rename temp file to unit file: %w", err)
	}
	return nil
}

// Delete removes the unit file.
func (s *Store) Delete(ctx context.Context, id string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrUnitNotFound
		}
		return fmt.Errorf("failed to delete unit file: %w", err)
	}
	return nil
}

// Rename moves the unit file to newID, keeping its extension.
func (s *Store) Rename(ctx context.Context, oldID, newID string) error {
	src, err := s.path(oldID)
	if err != nil {
		return err
	}
	if _, err := s.path(newID); err == nil {
		return domain.ErrUnitExists
	} else if !errors.Is(err, domain.ErrUnitNotFound) {
		return err
	}

	dst := filepath.Join(s.BasePath, newID+filepath.Ext(src))
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to rename unit file: %w", err)
	}
	return nil
}
