//go:build unix

package portio

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
	"testing"
	"time"
)

func socketPair(t *testing.T) (FdSocket, FdSocket) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return FdSocket(fds[0]), FdSocket(fds[1])
}

func TestPollSelectReadiness(t *testing.T) {
	withLoader(t, loadPlatformSockets)
	a, b := socketPair(t)
	set := newTestPollSet(t, 3)
	require.NoError(t, set.Add(a, PollIn))

	n, err := set.Wait(20 * time.Millisecond)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = unix.Write(int(b), []byte("ping"))
	require.NoError(t, err)
	n, err = set.Wait(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, set.Add(b, PollOut|PollPri))
	n, err = set.Wait(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPollSelectEmptySet(t *testing.T) {
	withLoader(t, loadPlatformSockets)
	set := newTestPollSet(t, 0)
	n, err := set.Wait(0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPollSelectClosedDescriptor(t *testing.T) {
	withLoader(t, loadPlatformSockets)
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	unix.Close(fds[1])
	require.NoError(t, unix.Close(fds[0]))

	set := newTestPollSet(t, 1)
	require.NoError(t, set.Add(FdSocket(fds[0]), PollIn))
	_, err = set.Wait(0)
	assert.ErrorIs(t, err, unix.EBADF)
}
