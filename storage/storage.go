package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Store is the filesystem seam used by the session builder and the pipeline
// stages. Real runs wrap the OS filesystem, tests use an in-memory one.
type Store struct {
	fs afero.Fs
}

func New(fs afero.Fs) *Store { return &Store{fs: fs} }

func NewOS() *Store { return New(afero.NewOsFs()) }

func NewMem() *Store { return New(afero.NewMemMapFs()) }

func (s *Store) Fs() afero.Fs { return s.fs }

// Files lists the regular files in dir whose extension matches ext
// (case-insensitive), sorted by name. An empty ext matches everything.
func (s *Store) Files(dir, ext string) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext != "" && !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// Dirs lists the non-hidden subdirectories of dir, sorted by name.
func (s *Store) Dirs(dir string) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) Exists(path string) (bool, error) {
	return afero.Exists(s.fs, path)
}

func (s *Store) IsDir(path string) (bool, error) {
	ok, err := afero.IsDir(s.fs, path)
	if os.IsNotExist(err) {
		return false, nil
	}
	return ok, err
}

func (s *Store) MkdirAll(dir string) error {
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// ResetDir removes dir with everything in it and recreates it empty.
func (s *Store) ResetDir(dir string) error {
	if err := s.RemoveAll(dir); err != nil {
		return err
	}
	return s.MkdirAll(dir)
}

func (s *Store) RemoveAll(path string) error {
	if err := s.fs.RemoveAll(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

func (s *Store) Rename(from, to string) error {
	if err := s.fs.Rename(from, to); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", from, to, err)
	}
	return nil
}

// Copy copies a regular file, creating the destination's parent directory.
func (s *Store) Copy(src, dst string) error {
	in, err := s.fs.Open(src)
	if err != nil {
		return fmt.Errorf("copy open %s: %w", src, err)
	}
	defer in.Close()

	if err := s.MkdirAll(filepath.Dir(dst)); err != nil {
		return err
	}
	out, err := s.fs.Create(dst)
	if err != nil {
		return fmt.Errorf("copy create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s -> %s: %w", src, dst, err)
	}
	return out.Close()
}

func (s *Store) Open(path string) (afero.File, error) {
	return s.fs.Open(path)
}

// Create opens path for writing, creating its parent directory.
func (s *Store) Create(path string) (afero.File, error) {
	if err := s.MkdirAll(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return s.fs.Create(path)
}

func (s *Store) WriteFile(path string, data []byte) error {
	if err := s.MkdirAll(filepath.Dir(path)); err != nil {
		return err
	}
	return afero.WriteFile(s.fs, path, data, 0o644)
}

func (s *Store) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(s.fs, path)
}

// NewDir roots a store at dir on the OS filesystem.
func NewDir(dir string) *Store {
	return New(afero.NewBasePathFs(afero.NewOsFs(), dir))
}
