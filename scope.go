package portio

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"
	"sync"
)

type cleanup struct {
	owner   interface{}
	release func() error
}

// Scope owns resources on behalf of its caller. Every resource that can leak
// registers a release action here when it is acquired; the action runs either
// when the resource is closed explicitly or when the scope is closed, never
// both.
type Scope struct {
	name     string
	parent   *Scope
	lock     sync.Mutex
	cleanups []*cleanup
	children []*Scope
	closed   *atomic.Bool
	limit    int64
	reserved *atomic.Int64
}

func NewScope(name string) *Scope {
	return &Scope{
		name:     name,
		closed:   atomic.NewBool(false),
		reserved: atomic.NewInt64(0),
	}
}

// WithLimit caps the bytes that may be reserved in the scope. Zero means no cap.
func (s *Scope) WithLimit(bytes int64) *Scope {
	s.limit = bytes
	return s
}

func (s *Scope) Name() string {
	return s.name
}

// NewChild creates a scope that is closed no later than s.
func (s *Scope) NewChild(name string) *Scope {
	child := NewScope(name)
	child.parent = s
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.closed.Load() {
		child.closed.Store(true)
		return child
	}
	s.children = append(s.children, child)
	return child
}

// Register attaches release to owner. Registering the same owner twice keeps
// both actions; RunCleanup runs the most recent one.
func (s *Scope) Register(owner interface{}, release func() error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.cleanups = append(s.cleanups, &cleanup{owner: owner, release: release})
}

func (s *Scope) take(owner interface{}) *cleanup {
	s.lock.Lock()
	defer s.lock.Unlock()
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		c := s.cleanups[i]
		if c.owner == owner {
			s.cleanups = append(s.cleanups[:i], s.cleanups[i+1:]...)
			return c
		}
	}
	return nil
}

// RunCleanup runs and unregisters the release action of owner. It is a no-op
// when nothing is registered, so running it twice is safe.
func (s *Scope) RunCleanup(owner interface{}) error {
	c := s.take(owner)
	if c == nil {
		return nil
	}
	return c.release()
}

// KillCleanup unregisters the release action of owner without running it.
func (s *Scope) KillCleanup(owner interface{}) {
	s.take(owner)
}

// Close closes child scopes, then runs the remaining release actions in
// reverse order of registration. The first error is returned; the rest are
// logged.
func (s *Scope) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.lock.Lock()
	children := s.children
	cleanups := s.cleanups
	s.children = nil
	s.cleanups = nil
	s.lock.Unlock()

	var first error
	for i := len(children) - 1; i >= 0; i-- {
		if err := children[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	for i := len(cleanups) - 1; i >= 0; i-- {
		err := cleanups[i].release()
		if err == nil {
			continue
		}
		if first == nil {
			first = errors.Wrapf(err, "scope %s", s.name)
		} else {
			log.Error().Msgf("scope %s: release failed: %+v", s.name, err)
		}
	}
	if s.parent != nil {
		s.parent.forget(s)
	}
	if log.Debug().Enabled() {
		log.Debug().Msgf("scope %s closed, %d release actions run", s.name, len(cleanups))
	}
	return first
}

func (s *Scope) forget(child *Scope) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

func (s *Scope) Closed() bool {
	return s == nil || s.closed.Load()
}

// reserve accounts n bytes of buffers against the scope.
func (s *Scope) reserve(n int) error {
	if s == nil || s.closed.Load() {
		return errors.Wrap(ErrNoMemory, "scope closed")
	}
	total := s.reserved.Add(int64(n))
	if s.limit > 0 && total > s.limit {
		s.reserved.Sub(int64(n))
		return errors.Wrapf(ErrNoMemory, "scope %s: %d bytes over limit %d", s.name, total-s.limit, s.limit)
	}
	return nil
}

func (s *Scope) unreserve(n int) {
	if s != nil {
		s.reserved.Sub(int64(n))
	}
}

func (s *Scope) Reserved() int64 {
	return s.reserved.Load()
}
