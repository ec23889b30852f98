package portio

import (
	"strings"
	"time"
)

// Field is a bit set naming the metadata fields of a FileInfo.
type Field uint32

const (
	// FieldLink asks for information about a symbolic link itself instead of
	// the file it points to. It is a request modifier and never reported valid.
	FieldLink Field = 1 << iota
	FieldType
	FieldSize
	FieldCSize
	FieldAtime
	FieldMtime
	FieldCtime
	FieldUID
	FieldGID
	FieldInode
	FieldDevice
	FieldNLink
	FieldPerm
	FieldName
)

const (
	FieldTimes  = FieldAtime | FieldMtime | FieldCtime
	FieldOwner  = FieldUID | FieldGID
	FieldIdent  = FieldDevice | FieldInode
	FieldMin    = FieldType | FieldSize | FieldMtime | FieldCtime
	FieldNorm   = FieldMin | FieldAtime | FieldOwner | FieldPerm | FieldIdent | FieldNLink
	fieldStatOK = FieldNorm | FieldCSize
)

var fieldNames = []struct {
	bit  Field
	name string
}{
	{FieldLink, "link"},
	{FieldType, "type"},
	{FieldSize, "size"},
	{FieldCSize, "csize"},
	{FieldAtime, "atime"},
	{FieldMtime, "mtime"},
	{FieldCtime, "ctime"},
	{FieldUID, "uid"},
	{FieldGID, "gid"},
	{FieldInode, "inode"},
	{FieldDevice, "device"},
	{FieldNLink, "nlink"},
	{FieldPerm, "perm"},
	{FieldName, "name"},
}

func (f Field) String() string {
	if f == 0 {
		return "none"
	}
	var names []string
	for _, n := range fieldNames {
		if f&n.bit != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// FileType is the kind of filesystem node.
type FileType int

const (
	NoFile FileType = iota
	RegularFile
	Directory
	CharDevice
	BlockDevice
	Pipe
	Symlink
	SocketFile
	UnknownFile
)

func (t FileType) String() string {
	switch t {
	case NoFile:
		return "none"
	case RegularFile:
		return "file"
	case Directory:
		return "dir"
	case CharDevice:
		return "chr"
	case BlockDevice:
		return "blk"
	case Pipe:
		return "pipe"
	case Symlink:
		return "link"
	case SocketFile:
		return "sock"
	}
	return "unknown"
}

// FileInfo is the entry view filled by Dir.Read and Stat. Only the fields
// whose bit is set in Valid can be trusted.
//
// Name aliases a buffer owned by the Dir that produced it and is only valid
// until the next Read, Rewind or Close on that Dir. Copy it if needed.
type FileInfo struct {
	Valid  Field
	Name   []byte
	Type   FileType
	Perm   Perm
	Size   int64
	CSize  int64
	Inode  uint64
	Device uint64
	NLink  uint64
	UID    uint32
	GID    uint32
	Atime  time.Time
	Mtime  time.Time
	Ctime  time.Time
}

// NameString returns a copy of Name.
func (fi *FileInfo) NameString() string {
	return string(fi.Name)
}

func (fi *FileInfo) Has(f Field) bool {
	return fi.Valid&f == f
}
