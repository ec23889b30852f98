//go:build unix

package portio

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net"
	"testing"
	"time"
)

func TestNewSocketTCP(t *testing.T) {
	withLoader(t, loadPlatformSockets)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
		close(accepted)
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	sock, err := NewSocket(conn.(*net.TCPConn))
	require.NoError(t, err)
	assert.Greater(t, sock.Fd(), 2)
	resolver, ok := sock.(HandleResolver)
	require.True(t, ok)
	fd, err := resolver.NativeHandle()
	require.NoError(t, err)
	assert.Equal(t, sock.Fd(), fd)

	peer := <-accepted
	require.NotNil(t, peer)
	defer peer.Close()

	set := newTestPollSet(t, 2)
	require.NoError(t, set.Add(sock, PollIn|PollOut))
	n, err := set.Wait(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = peer.Write([]byte("hello"))
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	n, err = set.Wait(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
