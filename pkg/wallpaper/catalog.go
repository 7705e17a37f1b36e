package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wallpaperio/wallpaperio/util/log"
)

// SettingsStore persists the catalog location.
type SettingsStore interface {
	CatalogPath() string
	SetCatalogPath(path string)
}

// CatalogStore manages the image files in the catalog directory.
type CatalogStore struct {
	mu       sync.RWMutex
	root     string
	settings SettingsStore
}

// NewCatalogStore opens the catalog at the persisted path, creating it if needed.
// It returns ErrCatalogUnavailable if the directory cannot be created or read.
func NewCatalogStore(settings SettingsStore) (*CatalogStore, error) {
	root := settings.CatalogPath()
	if root == "" {
		return nil, fmt.Errorf("%w: catalog path is empty", ErrCatalogUnavailable)
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	if _, err := os.ReadDir(root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return &CatalogStore{root: root, settings: settings}, nil
}

// Root returns the current catalog directory.
func (s *CatalogStore) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Path returns the absolute path of a catalog file.
func (s *CatalogStore) Path(name string) string {
	return filepath.Join(s.Root(), name)
}

// List returns the image files of the catalog in name order. A missing
// directory is recreated and yields an empty list.
func (s *CatalogStore) List() ([]CatalogEntry, error) {
	root := s.Root()
	dirEntries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		if mkErr := os.MkdirAll(root, 0755); mkErr != nil {
			return nil, fmt.Errorf("failed to recreate catalog %s: %w", root, mkErr)
		}
		return []CatalogEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog %s: %w", root, err)
	}

	entries := make([]CatalogEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if !de.Type().IsRegular() || strings.HasPrefix(name, ".") || strings.Contains(name, stagingMarker) {
			continue
		}
		if !isImageFile(name) {
			continue
		}
		entries = append(entries, CatalogEntry{Name: name})
	}
	return entries, nil
}

// Eligible returns the non-banned entries in listing order.
func (s *CatalogStore) Eligible() ([]CatalogEntry, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	eligible := entries[:0]
	for _, e := range entries {
		if !e.Banned() {
			eligible = append(eligible, e)
		}
	}
	return eligible, nil
}

// Exists reports whether the entry is still present as a regular file.
func (s *CatalogStore) Exists(entry CatalogEntry) bool {
	if validateName(entry.Name) != nil {
		return false
	}
	info, err := os.Stat(s.Path(entry.Name))
	return err == nil && info.Mode().IsRegular()
}

// Lookup maps an absolute path to its catalog entry. Paths outside the catalog
// or files that no longer exist are not found.
func (s *CatalogStore) Lookup(path string) (CatalogEntry, bool) {
	if path == "" {
		return CatalogEntry{}, false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return CatalogEntry{}, false
	}
	absRoot, err := filepath.Abs(s.Root())
	if err != nil || filepath.Dir(absPath) != absRoot {
		return CatalogEntry{}, false
	}
	entry := CatalogEntry{Name: filepath.Base(absPath)}
	if !s.Exists(entry) {
		return CatalogEntry{}, false
	}
	return entry, true
}

// Ban marks an entry as banned by renaming it. The renamed entry is returned.
func (s *CatalogStore) Ban(entry CatalogEntry) (CatalogEntry, error) {
	if entry.Banned() {
		return entry, nil
	}
	return s.rename(entry, bannedName(entry.Name))
}

// Unban removes the ban marker from an entry. The renamed entry is returned.
func (s *CatalogStore) Unban(entry CatalogEntry) (CatalogEntry, error) {
	if !entry.Banned() {
		return entry, nil
	}
	return s.rename(entry, unbannedName(entry.Name))
}

func (s *CatalogStore) rename(entry CatalogEntry, newName string) (CatalogEntry, error) {
	if err := validateName(entry.Name); err != nil {
		return entry, fmt.Errorf("%w: %v", ErrRenameFailed, err)
	}
	if err := os.Rename(s.Path(entry.Name), s.Path(newName)); err != nil {
		return entry, fmt.Errorf("%w: %s -> %s: %v", ErrRenameFailed, entry.Name, newName, err)
	}
	log.Debugf("Renamed %s -> %s", entry.Name, newName)
	return CatalogEntry{Name: newName}, nil
}

// Relocate moves the whole catalog to newRoot and persists the new location.
// On failure the old catalog and the persisted path are left unchanged.
func (s *CatalogStore) Relocate(ctx context.Context, newRoot string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	newRoot, err := filepath.Abs(newRoot)
	if err != nil {
		return fmt.Errorf("invalid catalog path: %w", err)
	}
	oldRoot, err := filepath.Abs(s.root)
	if err != nil {
		return fmt.Errorf("invalid catalog path: %w", err)
	}

	if newRoot == oldRoot {
		return nil
	}
	if isWithin(oldRoot, newRoot) {
		return fmt.Errorf("cannot move catalog %s into itself (%s)", oldRoot, newRoot)
	}

	if _, err := os.Stat(oldRoot); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(oldRoot, 0755); err != nil {
			return fmt.Errorf("failed to recreate catalog %s: %w", oldRoot, err)
		}
	}

	if err := moveTree(ctx, oldRoot, newRoot); err != nil {
		return err
	}

	s.root = newRoot
	s.settings.SetCatalogPath(newRoot)
	log.Printf("Catalog moved from %s to %s", oldRoot, newRoot)
	return nil
}
