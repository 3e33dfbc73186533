package profile

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// Files bundles the file collaborators consumed by the migration pipeline:
// plain reads and writes of profile files, timestamped backups before any
// overwrite, and safe copies of live SQLite stores.
type Files struct {
	Fs afero.Fs
}

// NewFiles returns Files backed by the real OS filesystem.
func NewFiles() *Files {
	return &Files{Fs: afero.NewOsFs()}
}

// ReadFile reads the file at path in full.
func (f *Files) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(f.Fs, path)
}

// WriteFile writes data to path, truncating any existing file.
// Profile files are owner-only.
func (f *Files) WriteFile(path string, data []byte) error {
	return afero.WriteFile(f.Fs, path, data, 0600)
}

// Exists reports whether path exists as a regular file.
func (f *Files) Exists(path string) bool {
	info, err := f.Fs.Stat(path)
	return err == nil && !info.IsDir()
}

// Backup copies the file at path to a timestamped sibling
// ("<name>.bak.20060102150405") and returns the backup path.
func (f *Files) Backup(path string) (string, error) {
	backupPath := fmt.Sprintf("%s.bak.%s", path, time.Now().Format("20060102150405"))
	if err := f.copyFile(path, backupPath); err != nil {
		return "", fmt.Errorf("cannot back up %s: %w", filepath.Base(path), err)
	}
	return backupPath, nil
}

// Restore copies the backup at backupPath back over path, byte for byte.
func (f *Files) Restore(backupPath, path string) error {
	if err := f.copyFile(backupPath, path); err != nil {
		return fmt.Errorf("cannot restore %s from backup: %w", filepath.Base(path), err)
	}
	return nil
}

// SafeCopy copies a SQLite store (and its -wal and -shm companions if they
// exist) to a temporary directory so the copy can be opened without touching
// the browser-owned original.
//
// Returns the path of the copied store, a cleanup function that removes the
// temp directory, and an error. The caller MUST call cleanup when done.
func (f *Files) SafeCopy(srcPath string) (copiedPath string, cleanup func(), err error) {
	info, err := f.Fs.Stat(srcPath)
	if err != nil {
		return "", nil, fmt.Errorf("store file not found: %s", srcPath)
	}
	if info.IsDir() {
		return "", nil, fmt.Errorf("%s is a directory, expected a store file", srcPath)
	}
	if info.Size() == 0 {
		return "", nil, fmt.Errorf("store file at %s is empty", srcPath)
	}

	tempDir, err := afero.TempDir(f.Fs, "", "bravevault-store-")
	if err != nil {
		return "", nil, fmt.Errorf("cannot create temp directory: %w", err)
	}

	cleanup = func() {
		_ = f.Fs.RemoveAll(tempDir)
	}

	baseName := filepath.Base(srcPath)
	copiedPath = filepath.Join(tempDir, baseName)
	if err := f.copyFile(srcPath, copiedPath); err != nil {
		cleanup()
		return "", nil, err
	}

	// Copy WAL and SHM if they exist (best-effort)
	for _, suffix := range []string{"-wal", "-shm"} {
		companion := srcPath + suffix
		if _, err := f.Fs.Stat(companion); err == nil {
			_ = f.copyFile(companion, filepath.Join(tempDir, baseName+suffix))
		}
	}

	return copiedPath, cleanup, nil
}

// copyFile copies a file from src to dst.
func (f *Files) copyFile(src, dst string) error {
	in, err := f.Fs.Open(src)
	if err != nil {
		return fmt.Errorf("cannot open source file %s: %w", src, err)
	}
	defer in.Close()

	out, err := f.Fs.Create(dst)
	if err != nil {
		return fmt.Errorf("cannot create destination file %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("cannot copy file: %w", err)
	}
	return nil
}
