package persistence

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"statusdash/internal/providers"
	"strings"
	"time"
)

// FileMode is asserted on every file the stores write.
const FileMode fs.FileMode = 0644

type FileManager struct {
	logger providers.Logger
}

func NewFileManager(logger providers.Logger) *FileManager {
	return &FileManager{logger: logger}
}

// WriteFile replaces fileName atomically: readers see either the previous
// content or the new one. The permission mode is set on the temp file
// before the rename, so the final name never carries the temp file's 0600.
// A chmod failure is logged and does not fail the write.
func (f *FileManager) WriteFile(fileName string, data []byte, mode fs.FileMode) error {
	file, err := os.CreateTemp(filepath.Dir(fileName), "."+filepath.Base(fileName)+".*.tmp")
	if err != nil {
		return err
	}
	tmpFile := file.Name()

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Chmod(mode); err != nil {
		f.logger.Warnf(providers.TypeStore, "Unable to set mode %o on %s: %s", mode, tmpFile, err)
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	if err = os.Rename(tmpFile, fileName); err != nil {
		os.Remove(tmpFile)
		return err
	}
	return nil
}

func (f *FileManager) chmod(fileName string, mode fs.FileMode) {
	if err := os.Chmod(fileName, mode); err != nil {
		f.logger.Warnf(providers.TypeStore, "Unable to set mode %o on %s: %s", mode, fileName, err)
	}
}

func (f *FileManager) ReadFile(fileName string) ([]byte, error) {
	return os.ReadFile(fileName)
}

func (f *FileManager) Exists(fileName string) (bool, error) {
	_, err := os.Stat(fileName)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Remove deletes fileName; a missing file is not an error.
func (f *FileManager) Remove(fileName string) error {
	err := os.Remove(fileName)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// CopyFile copies src to dst byte for byte, with the same atomic
// replacement as WriteFile.
func (f *FileManager) CopyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	return f.WriteFile(dst, data, mode)
}

func (f *FileManager) Rename(oldName, newName string) error {
	return os.Rename(oldName, newName)
}

// ListDir returns the names of the regular files in dir.
func (f *FileManager) ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// RemoveStaleTemps deletes temporary files left in dir by interrupted
// writes once they are older than maxAge. It returns how many were removed.
func (f *FileManager) RemoveStaleTemps(dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !isTempName(name) {
			continue
		}
		info, err := e.Info()
		if err != nil || now.Sub(info.ModTime()) < maxAge {
			continue
		}
		path := filepath.Join(dir, name)
		if err := f.Remove(path); err != nil {
			f.logger.Warnf(providers.TypeStore, "Unable to remove stale temp file %s: %s", path, err)
			continue
		}
		removed++
	}
	return removed, nil
}

func isTempName(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".tmp")
}

func (f *FileManager) EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
