//go:build linux

package portio

import (
	"encoding/binary"
	"errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
	"io"
	"os"
)

// linux_dirent64 layout:
//
//	struct linux_dirent64 {
//	    ino64_t        d_ino;    // offset 0
//	    off64_t        d_off;    // offset 8
//	    unsigned short d_reclen; // offset 16
//	    unsigned char  d_type;   // offset 18
//	    char           d_name[]; // offset 19
//	};
const (
	direntInoOffset    = 0
	direntReclenOffset = 16
	direntTypeOffset   = 18
	direntNameOffset   = 19
)

var errInvalidDirent = errors.New("invalid dirent")

func newDirentReader(kind ReaderKind, file *os.File, blockSize int) (direntReader, error) {
	if kind == ReaderPortable {
		return &fileReader{file: file}, nil
	}
	if blockSize < direntRecordSize {
		blockSize = direntRecordSize
	}
	return &getdentsReader{
		fd:   int(file.Fd()),
		file: file,
		buf:  make([]byte, blockSize),
	}, nil
}

// getdentsReader reads records in blocks into its own buffer, so distinct
// handles can be read from distinct goroutines at the same time.
type getdentsReader struct {
	fd   int
	file *os.File
	buf  []byte
	bufp int
	nbuf int
}

func (r *getdentsReader) fill() (int, error) {
	for {
		n, err := unix.Getdents(r.fd, r.buf)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, os.NewSyscallError("getdents64", err)
		}
		return n, nil
	}
}

func (r *getdentsReader) readdir(entry []byte) (rawEntry, error) {
	for {
		if r.bufp >= r.nbuf {
			r.bufp = 0
			n, err := r.fill()
			if err != nil {
				r.nbuf = 0
				return rawEntry{}, err
			}
			r.nbuf = n
			if n <= 0 {
				return rawEntry{}, nil
			}
		}
		data := r.buf[r.bufp:r.nbuf]
		if len(data) < direntNameOffset {
			return rawEntry{}, errInvalidDirent
		}
		reclen := int(binary.NativeEndian.Uint16(data[direntReclenOffset:]))
		if reclen < direntNameOffset || reclen > len(data) || reclen > len(entry) {
			return rawEntry{}, errInvalidDirent
		}
		r.bufp += reclen

		ino := binary.NativeEndian.Uint64(data[direntInoOffset:])
		if ino == 0 {
			// deleted, not yet removed from the listing
			continue
		}
		rec := entry[:copy(entry, data[:reclen])]
		name := rec[direntNameOffset:]
		for i, b := range name {
			if b == 0 {
				name = name[:i]
				break
			}
		}
		if len(name) == 0 || isDotEntry(name) {
			continue
		}
		return rawEntry{
			rec:  rec,
			name: name,
			typ:  typeFromDirent(rec[direntTypeOffset]),
			ino:  ino,
		}, nil
	}
}

func (r *getdentsReader) rewind() error {
	r.bufp = 0
	r.nbuf = 0
	_, err := unix.Seek(r.fd, 0, io.SeekStart)
	return os.NewSyscallError("lseek", err)
}

func (r *getdentsReader) close() error {
	err := r.file.Close()
	if err != nil {
		log.Error().Msgf("[%d] got error while closing dir: %+v", r.fd, err)
	}
	return err
}

func typeFromDirent(t byte) FileType {
	switch t {
	case unix.DT_REG:
		return RegularFile
	case unix.DT_DIR:
		return Directory
	case unix.DT_LNK:
		return Symlink
	case unix.DT_CHR:
		return CharDevice
	case unix.DT_BLK:
		return BlockDevice
	case unix.DT_FIFO:
		return Pipe
	case unix.DT_SOCK:
		return SocketFile
	}
	return UnknownFile
}
