package portio

import (
	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"
	"sync"
)

// selectFunc is the bound select primitive. handles holds the read, write
// and except partitions back to back; timeoutMs < 0 waits forever.
type selectFunc func(handles []int, nread, nwrite, nexcept int, timeoutMs int) (int, error)

// socketLib holds the entry points resolved from the sockets module.
type socketLib struct {
	module string
	sel    selectFunc
}

// LinkNames names the sockets module and the symbols bound from it.
type LinkNames struct {
	Module       string
	SelectSymbol string
	ErrnoSymbol  string
}

var (
	linkLock  sync.Mutex
	linked    = atomic.NewPointer[socketLib](nil)
	linkNames = atomic.NewPointer(&defaultLinkNames)

	// loadSocketModule binds the select primitive for the platform.
	loadSocketModule = loadPlatformSockets
)

// linkSockets returns the bound sockets module, loading it on first use.
// Concurrent first callers load it once; a failed load is retried by the
// next caller. The module is never unloaded.
func linkSockets() (*socketLib, error) {
	if lib := linked.Load(); lib != nil {
		return lib, nil
	}
	linkLock.Lock()
	defer linkLock.Unlock()
	if lib := linked.Load(); lib != nil {
		return lib, nil
	}
	names := *linkNames.Load()
	lib, err := loadSocketModule(names)
	if err != nil {
		log.Error().Msgf("can't link sockets module %s: %+v", names.Module, err)
		return nil, err
	}
	linked.Store(lib)
	log.Info().Msgf("linked sockets module %s (%s, %s)", names.Module, names.SelectSymbol, names.ErrnoSymbol)
	return lib, nil
}

// SetLinkNames overrides the module and symbol names used by the next load.
// It has no effect once the module is linked.
func SetLinkNames(names LinkNames) {
	def := defaultLinkNames
	if names.Module == "" {
		names.Module = def.Module
	}
	if names.SelectSymbol == "" {
		names.SelectSymbol = def.SelectSymbol
	}
	if names.ErrnoSymbol == "" {
		names.ErrnoSymbol = def.ErrnoSymbol
	}
	linkNames.Store(&names)
}
