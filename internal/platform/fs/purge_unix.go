//go:build unix

package fs

import (
	"io/fs"
	"os"
	"syscall"
)

type ownership struct {
	uid, gid int
}

func ownerOf(info fs.FileInfo) *ownership {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	return &ownership{uid: int(st.Uid), gid: int(st.Gid)}
}

func (o *ownership) apply(path string) error {
	if o == nil {
		return nil
	}
	if o.uid == os.Getuid() && o.gid == os.Getgid() {
		return nil
	}
	return os.Lchown(path, o.uid, o.gid)
}
