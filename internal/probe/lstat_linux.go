//go:build linux

package probe

import (
	"io/fs"
	"time"

	"golang.org/x/sys/unix"

	"github.com/soyunomas/dupescan/internal/entities"
)

func lstat(path string) (*entities.Metadata, error) {
	var st unix.Stat_t
	for {
		err := unix.Lstat(path, &st)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return nil, &fs.PathError{Op: "lstat", Path: path, Err: err}
		}
		break
	}

	if st.Mode&unix.S_IFMT == unix.S_IFLNK {
		return nil, ErrSymlink
	}

	return &entities.Metadata{
		Mode:  st.Mode,
		Inode: st.Ino,
		Nlink: uint64(st.Nlink),
		UID:   st.Uid,
		GID:   st.Gid,
		Size:  st.Size,
		Atime: time.Unix(st.Atim.Unix()),
		Mtime: time.Unix(st.Mtim.Unix()),
		Ctime: time.Unix(st.Ctim.Unix()),
	}, nil
}
