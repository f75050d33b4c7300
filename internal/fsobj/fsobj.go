package fsobj

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// File pairs a path with its os.FileInfo, fetched on first access and
// cached afterward. The zero value is not usable; construct with New.
type File struct {
	path string

	once sync.Once
	info os.FileInfo
	err  error
}

// New returns a File for path. No filesystem access happens until a
// field accessor is called.
func New(path string) *File {
	return &File{path: path}
}

func (f *File) String() string { return f.path }

// Path returns the file's path as given to New, unresolved.
func (f *File) Path() string { return f.path }

// Name returns the file's base name.
func (f *File) Name() string { return filepath.Base(f.path) }

func (f *File) stat() (os.FileInfo, error) {
	f.once.Do(func() {
		f.info, f.err = os.Lstat(f.path)
	})
	return f.info, f.err
}

// Exists reports whether the path resolves to anything, swallowing any
// other stat error (permission denied, a parent that isn't a
// directory) into false.
func (f *File) Exists() bool {
	_, err := f.stat()
	return err == nil
}

// Size returns the file's size in bytes, or an error if it could not be
// stat'd.
func (f *File) Size() (int64, error) {
	info, err := f.stat()
	if err != nil {
		return 0, fmt.Errorf("fsobj: %w", err)
	}
	return info.Size(), nil
}

// Mode returns the file's permission and type bits.
func (f *File) Mode() (os.FileMode, error) {
	info, err := f.stat()
	if err != nil {
		return 0, fmt.Errorf("fsobj: %w", err)
	}
	return info.Mode(), nil
}

// ModTime returns the file's last modification time.
func (f *File) ModTime() (time.Time, error) {
	info, err := f.stat()
	if err != nil {
		return time.Time{}, fmt.Errorf("fsobj: %w", err)
	}
	return info.ModTime(), nil
}

// IsDir reports whether the path is a directory. A stat error (most
// commonly: the path doesn't exist) reports false.
func (f *File) IsDir() bool {
	info, err := f.stat()
	return err == nil && info.IsDir()
}

// IsSymlink reports whether the path itself (not its target) is a
// symbolic link.
func (f *File) IsSymlink() bool {
	info, err := f.stat()
	return err == nil && info.Mode()&os.ModeSymlink != 0
}
