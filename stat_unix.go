//go:build unix

package portio

import (
	"golang.org/x/sys/unix"
	"os"
	"time"
)

// Stat fills the wanted fields of the file at path, following symbolic links
// unless wanted contains FieldLink. Every field stat(2) provides is filled
// regardless of wanted; ErrIncomplete is returned when a wanted field could
// not be.
func Stat(path string, wanted Field) (FileInfo, error) {
	if info, ok := statCache.get(path, wanted); ok {
		return info, completeness(path, &info, wanted)
	}
	var st unix.Stat_t
	var err error
	if wanted&FieldLink != 0 {
		err = unix.Lstat(path, &st)
	} else {
		err = unix.Stat(path, &st)
	}
	if err != nil {
		op := "stat"
		if wanted&FieldLink != 0 {
			op = "lstat"
		}
		return FileInfo{}, &os.PathError{Op: op, Path: path, Err: err}
	}
	info := FileInfo{}
	fillFromStat(&info, &st)
	statCache.put(path, wanted, info)
	return info, completeness(path, &info, wanted)
}

// Lstat is Stat with FieldLink forced on.
func Lstat(path string, wanted Field) (FileInfo, error) {
	return Stat(path, wanted|FieldLink)
}

func completeness(path string, info *FileInfo, wanted Field) error {
	missing := wanted &^ (FieldLink | FieldName) &^ info.Valid
	if missing != 0 {
		return &IncompleteError{Path: path, Missing: missing}
	}
	return nil
}

func fillFromStat(info *FileInfo, st *unix.Stat_t) {
	info.Type = typeFromMode(uint32(st.Mode))
	info.Perm = PermFromMode(uint32(st.Mode))
	info.Size = int64(st.Size)
	info.CSize = int64(st.Blocks) * 512
	info.Inode = uint64(st.Ino)
	info.Device = uint64(st.Dev)
	info.NLink = uint64(st.Nlink)
	info.UID = st.Uid
	info.GID = st.Gid
	info.Atime = time.Unix(st.Atim.Unix())
	info.Mtime = time.Unix(st.Mtim.Unix())
	info.Ctime = time.Unix(st.Ctim.Unix())
	info.Valid |= fieldStatOK
}

func typeFromMode(mode uint32) FileType {
	switch mode & unix.S_IFMT {
	case unix.S_IFREG:
		return RegularFile
	case unix.S_IFDIR:
		return Directory
	case unix.S_IFCHR:
		return CharDevice
	case unix.S_IFBLK:
		return BlockDevice
	case unix.S_IFIFO:
		return Pipe
	case unix.S_IFLNK:
		return Symlink
	case unix.S_IFSOCK:
		return SocketFile
	}
	return UnknownFile
}
