//go:build unix

package portio

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
	"io"
	"io/fs"
	"os"
	"sync"
)

// sharedCursorLock serialises every read made through fileReader in the
// process.
var sharedCursorLock sync.Mutex

// fileReader walks the stream one entry at a time through the os package.
// It is the fallback where raw records cannot be parsed.
type fileReader struct {
	file *os.File
}

func (r *fileReader) readdir(entry []byte) (rawEntry, error) {
	sharedCursorLock.Lock()
	ents, err := r.file.ReadDir(1)
	sharedCursorLock.Unlock()
	if len(ents) == 0 {
		if err == nil || err == io.EOF {
			return rawEntry{}, nil
		}
		return rawEntry{}, err
	}
	name := ents[0].Name()
	if len(name) >= len(entry) {
		return rawEntry{}, &os.PathError{Op: "readdir", Path: r.file.Name(), Err: unix.ENAMETOOLONG}
	}
	n := copy(entry, name)
	entry[n] = 0
	rec := entry[:n+1]
	return rawEntry{
		rec:  rec,
		name: rec[:n],
		typ:  typeFromFileMode(ents[0].Type()),
	}, nil
}

func (r *fileReader) rewind() error {
	sharedCursorLock.Lock()
	defer sharedCursorLock.Unlock()
	_, err := r.file.Seek(0, io.SeekStart)
	return err
}

func (r *fileReader) close() error {
	err := r.file.Close()
	if err != nil {
		log.Error().Msgf("got error while closing dir %s: %+v", r.file.Name(), err)
	}
	return err
}

func typeFromFileMode(mode fs.FileMode) FileType {
	switch {
	case mode&fs.ModeSymlink != 0:
		return Symlink
	case mode&fs.ModeDir != 0:
		return Directory
	case mode&fs.ModeNamedPipe != 0:
		return Pipe
	case mode&fs.ModeSocket != 0:
		return SocketFile
	case mode&fs.ModeCharDevice != 0:
		return CharDevice
	case mode&fs.ModeDevice != 0:
		return BlockDevice
	case mode&fs.ModeIrregular != 0:
		return UnknownFile
	}
	return RegularFile
}

func isDotEntry(name []byte) bool {
	return (len(name) == 1 && name[0] == '.') || (len(name) == 2 && name[0] == '.' && name[1] == '.')
}
