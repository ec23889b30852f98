package portio

import (
	"github.com/pkg/errors"
	"syscall"
)

// Socket is anything holding a socket descriptor.
type Socket interface {
	Fd() int
}

// HandleResolver is implemented by sockets whose kernel handle may change
// after registration, e.g. across a reconnect. PollSet asks for the current
// handle before every wait.
type HandleResolver interface {
	NativeHandle() (int, error)
}

// FdSocket is a Socket for a raw descriptor.
type FdSocket int

func (s FdSocket) Fd() int {
	return int(s)
}

type connSocket struct {
	fd   int
	conn syscall.Conn
}

// NewSocket wraps conn (e.g. *net.TCPConn) without duplicating its descriptor.
// The returned Socket re-reads the descriptor from conn before each wait.
func NewSocket(conn syscall.Conn) (Socket, error) {
	s := &connSocket{conn: conn}
	fd, err := s.NativeHandle()
	if err != nil {
		return nil, err
	}
	s.fd = fd
	return s, nil
}

func (s *connSocket) Fd() int {
	return s.fd
}

func (s *connSocket) NativeHandle() (int, error) {
	raw, err := s.conn.SyscallConn()
	if err != nil {
		return -1, errors.Wrap(err, "can't get raw connection")
	}
	fd := -1
	err = raw.Control(func(h uintptr) {
		fd = int(h)
	})
	if err != nil {
		return -1, errors.Wrap(err, "can't get file descriptor from connection")
	}
	return fd, nil
}
