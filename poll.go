package portio

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"syscall"
	"time"
)

// Event is a bit set of readiness interests.
type Event int16

const (
	PollIn   Event = 0x001
	PollPri  Event = 0x002
	PollOut  Event = 0x004
	PollErr  Event = 0x010
	PollHup  Event = 0x020
	PollNval Event = 0x040
)

const handleSize = 8

// PollSet watches a fixed number of sockets with a select style primitive.
// Handles are kept in one array partitioned as [read | write | except], which
// is the layout the primitive takes. A PollSet is not safe for concurrent use.
type PollSet struct {
	scope     *Scope
	list      []int
	scratch   []int
	resolvers map[int]HandleResolver
	numRead   int
	numWrite  int
	numExcept int
	numTotal  int
}

// NewPollSet allocates a set for at most capacity registrations.
func NewPollSet(scope *Scope, capacity int) (*PollSet, error) {
	if capacity < 0 {
		return nil, errors.Errorf("invalid poll set capacity: %d", capacity)
	}
	if err := scope.reserve(2 * capacity * handleSize); err != nil {
		return nil, err
	}
	return &PollSet{
		scope:     scope,
		list:      make([]int, capacity),
		scratch:   make([]int, capacity),
		resolvers: make(map[int]HandleResolver),
	}, nil
}

func (p *PollSet) Cap() int {
	return len(p.list)
}

func (p *PollSet) Len() int {
	return p.numTotal
}

// Counts returns the size of the read, write and except partitions.
func (p *PollSet) Counts() (read, write, except int) {
	return p.numRead, p.numWrite, p.numExcept
}

// Add registers sock once per interest in events. PollIn, PollOut and PollPri
// are honoured; other bits are ignored. Registrations are not deduplicated.
func (p *PollSet) Add(sock Socket, events Event) error {
	if sock == nil {
		return ErrInvalidHandle
	}
	need := 0
	for _, bit := range []Event{PollIn, PollOut, PollPri} {
		if events&bit != 0 {
			need++
		}
	}
	if p.numTotal+need > len(p.list) {
		return errors.Wrapf(ErrNoMemory, "poll set full: %d of %d used, %d more requested", p.numTotal, len(p.list), need)
	}
	h := sock.Fd()
	if events&PollIn != 0 {
		p.insert(p.numRead, h)
		p.numRead++
	}
	if events&PollOut != 0 {
		p.insert(p.numRead+p.numWrite, h)
		p.numWrite++
	}
	if events&PollPri != 0 {
		p.insert(p.numTotal, h)
		p.numExcept++
	}
	if r, ok := sock.(HandleResolver); ok && need > 0 {
		p.resolvers[h] = r
	}
	if log.Debug().Enabled() {
		log.Debug().Msgf("[%d] poll add events:%#x read:%d write:%d except:%d", h, events, p.numRead, p.numWrite, p.numExcept)
	}
	return nil
}

// insert shifts everything from at onwards one slot right and stores h at at.
func (p *PollSet) insert(at int, h int) {
	copy(p.list[at+1:p.numTotal+1], p.list[at:p.numTotal])
	p.list[at] = h
	p.numTotal++
}

func (p *PollSet) partition(bit Event) (start int, count *int) {
	switch bit {
	case PollIn:
		return 0, &p.numRead
	case PollOut:
		return p.numRead, &p.numWrite
	default:
		return p.numRead + p.numWrite, &p.numExcept
	}
}

// Remove drops one registration of sock per interest in events, in read,
// write, except order. ErrNotFound is returned for the first interest sock
// is not registered under; interests after it are left untouched.
func (p *PollSet) Remove(sock Socket, events Event) error {
	if sock == nil {
		return ErrInvalidHandle
	}
	h := sock.Fd()
	defer p.forgetResolver(h)
	for _, bit := range []Event{PollIn, PollOut, PollPri} {
		if events&bit == 0 {
			continue
		}
		start, count := p.partition(bit)
		pos := start
		for pos < start+*count && p.list[pos] != h {
			pos++
		}
		if pos == start+*count {
			return ErrNotFound
		}
		copy(p.list[pos:p.numTotal-1], p.list[pos+1:p.numTotal])
		*count--
		p.numTotal--
	}
	if log.Debug().Enabled() {
		log.Debug().Msgf("[%d] poll remove events:%#x read:%d write:%d except:%d", h, events, p.numRead, p.numWrite, p.numExcept)
	}
	return nil
}

// forgetResolver drops the resolver of h once no registration uses it.
func (p *PollSet) forgetResolver(h int) {
	if p.index(h) < 0 {
		delete(p.resolvers, h)
	}
}

func (p *PollSet) index(h int) int {
	for i := 0; i < p.numTotal; i++ {
		if p.list[i] == h {
			return i
		}
	}
	return -1
}

// Revents reports the interest of the first registration of sock. It does
// not report the readiness observed by the last Wait: a socket registered
// for both reading and writing always reports PollIn.
func (p *PollSet) Revents(sock Socket) (Event, error) {
	if sock == nil {
		return 0, ErrInvalidHandle
	}
	i := p.index(sock.Fd())
	switch {
	case i < 0:
		return 0, ErrInvalidHandle
	case i < p.numRead:
		return PollIn, nil
	case i < p.numRead+p.numWrite:
		return PollOut, nil
	}
	return PollPri, nil
}

// resolve copies the current native handle of every registration into the
// scratch array handed to the primitive.
func (p *PollSet) resolve() error {
	for i := 0; i < p.numTotal; i++ {
		h := p.list[i]
		r, ok := p.resolvers[h]
		if !ok {
			p.scratch[i] = h
			continue
		}
		native, err := r.NativeHandle()
		if err != nil {
			return errors.Wrapf(err, "resolve socket %d", h)
		}
		p.scratch[i] = native
	}
	return nil
}

// Wait blocks until at least one registration is ready or timeout expires
// and returns the number of ready registrations. A negative timeout waits
// forever, zero polls. Interrupted waits are restarted with what is left of
// timeout; when nothing is left Wait returns 0.
func (p *PollSet) Wait(timeout time.Duration) (int, error) {
	lib, err := linkSockets()
	if err != nil {
		return 0, err
	}
	start := time.Now()
	remaining := timeout
	for {
		if err := p.resolve(); err != nil {
			return 0, err
		}
		n, err := lib.sel(p.scratch[:p.numTotal], p.numRead, p.numWrite, p.numExcept, toMillis(remaining))
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, syscall.EINTR) {
			return 0, syscallError("select", err)
		}
		if timeout < 0 {
			continue
		}
		remaining = timeout - time.Since(start)
		if remaining <= 0 {
			return 0, nil
		}
		if log.Debug().Enabled() {
			log.Debug().Msgf("select interrupted, restarting with %s left", remaining)
		}
	}
}

func toMillis(d time.Duration) int {
	if d < 0 {
		return -1
	}
	return int((d + time.Millisecond - 1) / time.Millisecond)
}
