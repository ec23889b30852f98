package portio

import (
	"fmt"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"io"
	"os"
	"syscall"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
	}{
		{nil, KindOK},
		{ErrIncomplete, KindIncomplete},
		{&IncompleteError{Path: "x", Missing: FieldSize}, KindIncomplete},
		{&IncompleteError{Path: "x", Missing: FieldSize, Err: syscall.ENOENT}, KindIncomplete},
		{ErrNotFound, KindNotFound},
		{errors.Wrap(ErrNotFound, "wrapped"), KindNotFound},
		{ErrInvalidHandle, KindInvalidHandle},
		{fmt.Errorf("scope: %w", ErrNoMemory), KindNoMemory},
		{os.NewSyscallError("open", syscall.EACCES), KindNative},
		{io.ErrUnexpectedEOF, KindNative},
	}
	for _, c := range cases {
		assert.Equal(t, c.kind, KindOf(c.err), "%v", c.err)
	}
}

func TestNativeCode(t *testing.T) {
	code, ok := NativeCode(&os.PathError{Op: "rmdir", Path: "x", Err: syscall.ENOENT})
	assert.True(t, ok)
	assert.Equal(t, syscall.ENOENT, code)

	code, ok = NativeCode(&IncompleteError{Path: "x", Err: os.NewSyscallError("stat", syscall.ELOOP)})
	assert.True(t, ok)
	assert.Equal(t, syscall.ELOOP, code)

	_, ok = NativeCode(ErrNotFound)
	assert.False(t, ok)
}

func TestIncompleteErrorMessage(t *testing.T) {
	err := &IncompleteError{Path: "/tmp/x", Missing: FieldSize | FieldType}
	assert.Equal(t, "/tmp/x: incomplete information (missing type|size)", err.Error())
	assert.True(t, errors.Is(err, ErrIncomplete))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestSyscallErrorKeepsExisting(t *testing.T) {
	orig := os.NewSyscallError("poll", syscall.EBADF)
	assert.Same(t, orig, syscallError("select", orig))
	assert.Nil(t, syscallError("select", nil))
}
