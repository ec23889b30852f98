//go:build unix

package portio

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
	"os"
	"unsafe"
)

const (
	nameMax = 255
	pathMax = 4096
)

// direntRecordSize is the size of the per-handle entry buffer. Some platforms
// declare the record's name as a one byte array and rely on tail storage.
var direntRecordSize = func() int {
	var d unix.Dirent
	if len(d.Name) > 1 {
		return int(unsafe.Sizeof(d))
	}
	return int(unsafe.Sizeof(d)) + nameMax
}()

// rawEntry is one record produced by a direntReader. rec is nil at end of
// stream; otherwise rec and name alias the entry buffer passed in.
type rawEntry struct {
	rec  []byte
	name []byte
	typ  FileType
	ino  uint64
}

type direntReader interface {
	readdir(entry []byte) (rawEntry, error)
	rewind() error
	close() error
}

// Dir is an open directory stream. A Dir is not safe for concurrent use.
type Dir struct {
	scope   *Scope
	path    string
	file    *os.File
	reader  direntReader
	entry   []byte
	pathBuf []byte
	owned   bool
	closed  bool
}

// OpenDir opens the directory at path. The stream is released when the Dir is
// closed or when scope is closed, whichever happens first.
func OpenDir(scope *Scope, path string) (*Dir, error) {
	opts := dirSettings.Load()
	if scope.Closed() {
		return nil, errors.Wrap(ErrNoMemory, "scope closed")
	}
	var fd int
	var err error
	for {
		fd, err = unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		return nil, &os.PathError{Op: "opendir", Path: path, Err: err}
	}
	file := os.NewFile(uintptr(fd), path)
	d, err := newDir(scope, file, opts)
	if err != nil {
		file.Close()
		return nil, err
	}
	d.owned = true
	scope.Register(d, d.release)
	if log.Debug().Enabled() {
		log.Debug().Msgf("[%d] opened dir %s", fd, path)
	}
	return d, nil
}

// AdoptDir wraps an already open directory stream. The directory path is
// taken from f.Name(). When owned is false no release action is registered
// in scope and the caller stays responsible for the stream until Close.
func AdoptDir(scope *Scope, f *os.File, owned bool) (*Dir, error) {
	if f == nil {
		return nil, ErrInvalidHandle
	}
	d, err := newDir(scope, f, dirSettings.Load())
	if err != nil {
		return nil, err
	}
	if owned {
		d.owned = true
		scope.Register(d, d.release)
	}
	return d, nil
}

// newDir accounts the handle's buffers in scope. Nothing stays reserved when
// it fails.
func newDir(scope *Scope, file *os.File, opts *dirOptions) (*Dir, error) {
	size := direntRecordSize + opts.blockSize
	if err := scope.reserve(size); err != nil {
		return nil, err
	}
	reader, err := newDirentReader(opts.reader, file, opts.blockSize)
	if err != nil {
		scope.unreserve(size)
		return nil, err
	}
	return &Dir{
		scope:   scope,
		path:    file.Name(),
		file:    file,
		reader:  reader,
		entry:   make([]byte, direntRecordSize),
		pathBuf: make([]byte, 0, 256),
	}, nil
}

func (d *Dir) release() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if log.Debug().Enabled() {
		log.Debug().Msgf("closing dir %s", d.path)
	}
	return d.reader.close()
}

// Close releases the stream. Closing twice is a no-op.
func (d *Dir) Close() error {
	if d == nil {
		return ErrInvalidHandle
	}
	if d.owned {
		return d.scope.RunCleanup(d)
	}
	return d.release()
}

func (d *Dir) Path() string {
	return d.path
}

// Read returns the next entry. The name is always reported. Fields in wanted
// beyond what the entry record carries are fetched with Stat; when some of
// them cannot be filled the returned error matches ErrIncomplete and the
// FileInfo still holds the name and every field that is valid. ErrNotFound
// marks the end of the stream.
func (d *Dir) Read(wanted Field) (FileInfo, error) {
	var info FileInfo
	if d == nil || d.closed {
		return info, ErrInvalidHandle
	}
	ent, err := d.reader.readdir(d.entry)
	// A reader may report success at the end of the stream without handing
	// back the entry buffer.
	if err == nil && !aliases(ent.rec, d.entry) {
		err = ErrNotFound
	}
	if err != nil {
		return info, err
	}

	info.Name = ent.name
	info.Valid = FieldName
	wanted &^= FieldName
	fillFromEntry(&info, ent, wanted)

	need := wanted &^ FieldLink &^ info.Valid
	if need == 0 {
		return info, nil
	}
	full, err := d.entryPath(ent.name)
	if err != nil {
		return info, &IncompleteError{Path: d.path, Missing: need, Err: err}
	}
	st, err := Stat(full, need|wanted&FieldLink)
	if err != nil && !errors.Is(err, ErrIncomplete) {
		info = FileInfo{Name: ent.name, Valid: FieldName}
		return info, &IncompleteError{Path: full, Missing: wanted &^ FieldLink, Err: err}
	}
	valid := info.Valid
	st.Name = ent.name
	st.Valid |= valid
	info = st
	if missing := wanted &^ FieldLink &^ info.Valid; missing != 0 {
		return info, &IncompleteError{Path: full, Missing: missing}
	}
	return info, nil
}

// fillFromEntry copies what the record itself knows. The record describes
// the link and not its target, so it is only trusted for links when the
// caller asked about the link.
func fillFromEntry(info *FileInfo, ent rawEntry, wanted Field) {
	if ent.typ == UnknownFile {
		return
	}
	if ent.typ == Symlink && wanted&FieldLink == 0 {
		return
	}
	info.Type = ent.typ
	info.Valid |= FieldType
	if ent.ino != 0 {
		info.Inode = ent.ino
		info.Valid |= FieldInode
	}
}

func (d *Dir) entryPath(name []byte) (string, error) {
	buf := append(d.pathBuf[:0], d.path...)
	if len(buf) == 0 || buf[len(buf)-1] != '/' {
		buf = append(buf, '/')
	}
	buf = append(buf, name...)
	d.pathBuf = buf
	if len(buf) >= pathMax {
		return "", &os.PathError{Op: "readdir", Path: d.path, Err: unix.ENAMETOOLONG}
	}
	return string(buf), nil
}

func aliases(rec, buf []byte) bool {
	return len(rec) > 0 && len(buf) > 0 && &rec[0] == &buf[0]
}

// Rewind resets the stream to its first entry.
func (d *Dir) Rewind() error {
	if d == nil || d.closed {
		return ErrInvalidHandle
	}
	return d.reader.rewind()
}

// Native exposes the underlying stream.
func (d *Dir) Native() (*os.File, error) {
	if d == nil {
		return nil, ErrInvalidHandle
	}
	return d.file, nil
}

// MakeDir creates a directory with the given permissions, subject to umask.
func MakeDir(path string, perm Perm) error {
	err := unix.Mkdir(path, perm.Mode())
	if err != nil {
		return &os.PathError{Op: "mkdir", Path: path, Err: err}
	}
	statCache.invalidate(path)
	return nil
}

// RemoveDir removes an empty directory.
func RemoveDir(path string) error {
	err := unix.Rmdir(path)
	if err != nil {
		return &os.PathError{Op: "rmdir", Path: path, Err: err}
	}
	statCache.invalidate(path)
	return nil
}
