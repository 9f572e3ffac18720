package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/veranemoloko/media-downloader/internal/domain"
	errpkg "github.com/veranemoloko/media-downloader/internal/errors"
)

// FileStorage manages the flat retention root the engine writes into.
// Files are single-item results, directories are playlist groups.
type FileStorage struct {
	dir string
	now func() time.Time
}

// NewFileStorage creates a new FileStorage instance with the given directory.
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: filepath.Clean(dir), now: time.Now}
}

// Dir returns the retention root.
func (s *FileStorage) Dir() string {
	return s.dir
}

// ResolvePath maps a top-level entry name to its absolute location. Names that
// would escape the root are rejected with ErrInvalidName.
func (s *FileStorage) ResolvePath(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", errpkg.ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// List returns every top-level entry of the root. Directory sizes are the sum
// of all regular files below them. Entries vanishing mid-listing are skipped.
// A missing root lists as empty.
func (s *FileStorage) List() ([]domain.RetentionEntry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir: %w", err)
	}

	entries := make([]domain.RetentionEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		info, err := de.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", de.Name(), err)
		}

		entry := domain.RetentionEntry{
			Name:       de.Name(),
			Kind:       domain.EntryKindFile,
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		}
		if info.IsDir() {
			entry.Kind = domain.EntryKindPlaylist
			entry.SizeBytes = dirSize(filepath.Join(s.dir, de.Name()))
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func dirSize(root string) int64 {
	var total int64
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}

// Touch resets the modification time of an entry to now, restarting its
// retention countdown. A missing entry reports ErrFileNotFound.
func (s *FileStorage) Touch(name string) error {
	path, err := s.ResolvePath(name)
	if err != nil {
		return err
	}

	now := s.now()
	if err := os.Chtimes(path, now, now); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errpkg.ErrFileNotFound
		}
		return fmt.Errorf("touch %s: %w", name, err)
	}
	return nil
}

// Open opens a file entry for reading. Missing entries and playlist
// directories report ErrFileNotFound.
func (s *FileStorage) Open(name string) (*os.File, os.FileInfo, error) {
	path, err := s.ResolvePath(name)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, errpkg.ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("open %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, errpkg.ErrFileNotFound
	}

	return f, info, nil
}

// Remove deletes an entry, recursively for directories. Removing a missing
// entry succeeds.
func (s *FileStorage) Remove(name string) error {
	path, err := s.ResolvePath(name)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// Exists reports whether an entry is present.
func (s *FileStorage) Exists(name string) bool {
	path, err := s.ResolvePath(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
