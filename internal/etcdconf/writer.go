package etcdconf

import (
	platformfs "github.com/imamik/etcdnode/internal/platform/fs"
)

// FileConfigurator writes rendered parameters to an etcd config file.
type FileConfigurator struct {
	Path string
}

// NewFileConfigurator returns a FileConfigurator for path.
func NewFileConfigurator(path string) *FileConfigurator {
	return &FileConfigurator{Path: path}
}

// Configure renders p and writes it when it differs from the file on disk.
// It reports whether the file changed.
func (c *FileConfigurator) Configure(p Params) (bool, error) {
	data, err := Render(p)
	if err != nil {
		return false, err
	}
	return platformfs.EnsureFile(c.Path, data, 0o644)
}
