package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DataDirSuffix is the extension every purgeable data directory carries.
const DataDirSuffix = ".etcd"

const defaultDataDirMode fs.FileMode = 0o700

// Purger empties etcd data directories.
type Purger struct{}

// NewPurger returns a Purger for the local filesystem.
func NewPurger() *Purger {
	return &Purger{}
}

// Purge deletes every entry below dir and leaves dir itself in place, so
// a data directory that is a mount point survives. A missing dir is
// created with the owner of its parent. Paths that are not absolute
// "<something>.etcd" directories below the root are refused.
func (p *Purger) Purge(dir string) error {
	if err := checkPurgeable(dir); err != nil {
		return err
	}

	info, err := os.Lstat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("refusing to purge %s: not a directory", dir)
		}
	case errors.Is(err, fs.ErrNotExist):
		return createDataDir(dir)
	default:
		return fmt.Errorf("failed to stat %s: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return nil
}

func createDataDir(dir string) error {
	var owner *ownership
	if parent, err := os.Stat(filepath.Dir(dir)); err == nil {
		owner = ownerOf(parent)
	}

	if err := os.MkdirAll(dir, defaultDataDirMode); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	// MkdirAll is subject to umask.
	if err := os.Chmod(dir, defaultDataDirMode); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", dir, err)
	}
	if err := owner.apply(dir); err != nil {
		return fmt.Errorf("failed to set owner of %s: %w", dir, err)
	}
	return nil
}

func checkPurgeable(dir string) error {
	if dir == "" {
		return errors.New("refusing to purge: empty path")
	}
	if !filepath.IsAbs(dir) {
		return fmt.Errorf("refusing to purge %s: not an absolute path", dir)
	}
	clean := filepath.Clean(dir)
	if clean == "/" || filepath.Dir(clean) == "/" {
		return fmt.Errorf("refusing to purge %s: too close to the filesystem root", dir)
	}
	base := filepath.Base(clean)
	if !strings.HasSuffix(base, DataDirSuffix) || base == DataDirSuffix {
		return fmt.Errorf("refusing to purge %s: not a %s data directory", dir, DataDirSuffix)
	}
	return nil
}

// IsEmptyDir reports whether dir exists and has no entries.
func IsEmptyDir(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}
