//go:build unix

package portio

import (
	"golang.org/x/sys/unix"
)

// Sockets are part of the system call interface here, so nothing is loaded
// at run time and the names are informational.
var defaultLinkNames = LinkNames{Module: "libc", SelectSymbol: "poll", ErrnoSymbol: "errno"}

func loadPlatformSockets(names LinkNames) (*socketLib, error) {
	return &socketLib{module: names.Module, sel: pollSelect}, nil
}

const (
	readReady   = unix.POLLIN | unix.POLLHUP | unix.POLLERR
	writeReady  = unix.POLLOUT | unix.POLLHUP | unix.POLLERR
	exceptReady = unix.POLLPRI
)

// pollSelect gives select semantics over poll(2): each partition entry is
// polled for its own interest and counted once when ready.
func pollSelect(handles []int, nread, nwrite, nexcept int, timeoutMs int) (int, error) {
	fds := make([]unix.PollFd, len(handles))
	for i, h := range handles {
		fds[i].Fd = int32(h)
		switch {
		case i < nread:
			fds[i].Events = unix.POLLIN
		case i < nread+nwrite:
			fds[i].Events = unix.POLLOUT
		default:
			fds[i].Events = unix.POLLPRI
		}
	}
	n, err := unix.Poll(fds, timeoutMs)
	if err != nil {
		return -1, err
	}
	if n == 0 {
		return 0, nil
	}
	ready := 0
	for i := range fds {
		revents := fds[i].Revents
		if revents&unix.POLLNVAL != 0 {
			return -1, unix.EBADF
		}
		switch {
		case i < nread:
			if revents&readReady != 0 {
				ready++
			}
		case i < nread+nwrite:
			if revents&writeReady != 0 {
				ready++
			}
		default:
			if revents&exceptReady != 0 {
				ready++
			}
		}
	}
	return ready, nil
}
