package portio

import (
	"testing"
)

// withLoader swaps the sockets module loader and forgets any linked module
// for the duration of the test.
func withLoader(t *testing.T, loader func(LinkNames) (*socketLib, error)) {
	t.Helper()
	prevLib := linked.Load()
	prevLoader := loadSocketModule
	linked.Store(nil)
	loadSocketModule = loader
	t.Cleanup(func() {
		linked.Store(prevLib)
		loadSocketModule = prevLoader
	})
}

// withSelect links a fake select primitive.
func withSelect(t *testing.T, sel selectFunc) {
	t.Helper()
	withLoader(t, func(names LinkNames) (*socketLib, error) {
		return &socketLib{module: "fake", sel: sel}, nil
	})
}

func withReader(t *testing.T, kind ReaderKind) {
	t.Helper()
	prev := dirSettings.Load()
	dirSettings.Store(&dirOptions{reader: kind, blockSize: prev.blockSize})
	t.Cleanup(func() {
		dirSettings.Store(prev)
	})
}

func newTestScope(t *testing.T) *Scope {
	t.Helper()
	scope := NewScope(t.Name())
	t.Cleanup(func() {
		scope.Close()
	})
	return scope
}
