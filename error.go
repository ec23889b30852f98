package portio

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

var ErrIncomplete = errors.New("incomplete information")
var ErrNotFound = errors.New("not found")
var ErrInvalidHandle = errors.New("invalid handle")
var ErrNoMemory = errors.New("out of memory")

// Kind is the portable classification of an error returned by this package.
type Kind int

const (
	KindOK Kind = iota
	KindIncomplete
	KindNotFound
	KindInvalidHandle
	KindNoMemory
	KindNative
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindIncomplete:
		return "incomplete"
	case KindNotFound:
		return "not-found"
	case KindInvalidHandle:
		return "invalid-handle"
	case KindNoMemory:
		return "out-of-memory"
	case KindNative:
		return "native-error"
	}
	return "unknown"
}

// KindOf classifies err. Incomplete wins over the native error it may wrap.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrIncomplete):
		return KindIncomplete
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidHandle):
		return KindInvalidHandle
	case errors.Is(err, ErrNoMemory):
		return KindNoMemory
	}
	return KindNative
}

// NativeCode extracts the OS error number carried by err, if any.
func NativeCode(err error) (syscall.Errno, bool) {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno, true
	}
	return 0, false
}

// IncompleteError reports a directory entry whose name is valid but whose
// requested metadata could only partly be filled. Err is the metadata
// failure when nothing beyond the name could be fetched.
type IncompleteError struct {
	Path    string
	Missing Field
	Err     error
}

func (e *IncompleteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: incomplete information (missing %s): %v", e.Path, e.Missing, e.Err)
	}
	return fmt.Sprintf("%s: incomplete information (missing %s)", e.Path, e.Missing)
}

func (e *IncompleteError) Is(target error) bool {
	return target == ErrIncomplete
}

func (e *IncompleteError) Unwrap() error {
	return e.Err
}

func syscallError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*os.SyscallError); ok {
		return err
	}
	return os.NewSyscallError(op, err)
}
