//go:build windows

package portio

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
	"syscall"
	"time"
	"unsafe"
)

var defaultLinkNames = LinkNames{Module: "ws2_32.dll", SelectSymbol: "select", ErrnoSymbol: "WSAGetLastError"}

const (
	fdSetSize   = 64
	socketError = -1
	wsaeintr    = syscall.Errno(10004)
	wsaeinval   = syscall.Errno(10022)
)

type fdSet struct {
	count uint32
	array [fdSetSize]windows.Handle
}

type timeval struct {
	sec  int32
	usec int32
}

func loadPlatformSockets(names LinkNames) (*socketLib, error) {
	dll := windows.NewLazySystemDLL(names.Module)
	if err := dll.Load(); err != nil {
		return nil, errors.Wrapf(err, "load %s", names.Module)
	}
	selectProc := dll.NewProc(names.SelectSymbol)
	if err := selectProc.Find(); err != nil {
		return nil, errors.Wrapf(err, "bind %s", names.SelectSymbol)
	}
	errnoProc := dll.NewProc(names.ErrnoSymbol)
	if err := errnoProc.Find(); err != nil {
		return nil, errors.Wrapf(err, "bind %s", names.ErrnoSymbol)
	}
	return &socketLib{
		module: names.Module,
		sel: func(handles []int, nread, nwrite, nexcept int, timeoutMs int) (int, error) {
			return wsaSelect(selectProc, errnoProc, handles, nread, nwrite, nexcept, timeoutMs)
		},
	}, nil
}

func fillFdSet(set *fdSet, handles []int) error {
	if len(handles) > fdSetSize {
		return wsaeinval
	}
	set.count = uint32(len(handles))
	for i, h := range handles {
		set.array[i] = windows.Handle(h)
	}
	return nil
}

func wsaSelect(selectProc, errnoProc *windows.LazyProc, handles []int, nread, nwrite, nexcept int, timeoutMs int) (int, error) {
	if len(handles) == 0 {
		// select rejects three empty sets
		if timeoutMs < 0 {
			return -1, wsaeinval
		}
		time.Sleep(time.Duration(timeoutMs) * time.Millisecond)
		return 0, nil
	}
	var r, w, e fdSet
	if err := fillFdSet(&r, handles[:nread]); err != nil {
		return -1, err
	}
	if err := fillFdSet(&w, handles[nread:nread+nwrite]); err != nil {
		return -1, err
	}
	if err := fillFdSet(&e, handles[nread+nwrite:nread+nwrite+nexcept]); err != nil {
		return -1, err
	}
	var tv *timeval
	if timeoutMs >= 0 {
		tv = &timeval{sec: int32(timeoutMs / 1000), usec: int32(timeoutMs%1000) * 1000}
	}
	ret, _, _ := selectProc.Call(0,
		uintptr(unsafe.Pointer(&r)),
		uintptr(unsafe.Pointer(&w)),
		uintptr(unsafe.Pointer(&e)),
		uintptr(unsafe.Pointer(tv)))
	if int32(ret) == socketError {
		code, _, _ := errnoProc.Call()
		errno := syscall.Errno(code)
		if errno == wsaeintr {
			errno = syscall.EINTR
		}
		return -1, errno
	}
	return int(int32(ret)), nil
}
