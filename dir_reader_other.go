//go:build unix && !linux

package portio

import (
	"github.com/rs/zerolog/log"
	"os"
)

func newDirentReader(kind ReaderKind, file *os.File, blockSize int) (direntReader, error) {
	if kind == ReaderGetdents {
		log.Warn().Msgf("getdents reader is not available on this platform, using portable reader for %s", file.Name())
	}
	return &fileReader{file: file}, nil
}
