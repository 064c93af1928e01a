//go:build !linux

package probe

import (
	"os"

	"github.com/soyunomas/dupescan/internal/entities"
)

// lstat falls back to os.Lstat; inode, ownership and ctime are left zero.
func lstat(path string) (*entities.Metadata, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return nil, ErrSymlink
	}

	mtime := info.ModTime()
	return &entities.Metadata{
		Mode:  uint32(info.Mode().Perm()),
		Nlink: 1,
		Size:  info.Size(),
		Atime: mtime,
		Mtime: mtime,
		Ctime: mtime,
	}, nil
}
