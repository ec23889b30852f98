package portio

import (
	"go.uber.org/atomic"
)

const defBlockSize = 8192

// ReaderKind selects how directory records are read.
type ReaderKind string

const (
	// ReaderAuto uses getdents where available and the portable reader elsewhere.
	ReaderAuto ReaderKind = "auto"
	// ReaderGetdents parses raw records into a per-handle buffer.
	ReaderGetdents ReaderKind = "getdents"
	// ReaderPortable reads through the os package under a process-wide lock.
	ReaderPortable ReaderKind = "portable"
)

type dirOptions struct {
	reader    ReaderKind
	blockSize int
}

var dirSettings = atomic.NewPointer(&dirOptions{reader: ReaderAuto, blockSize: defBlockSize})
