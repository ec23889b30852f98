//go:build unix

package portio

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
	"os"
)

// SetOpenFileLimit raises the soft RLIMIT_NOFILE to n, bounded by the hard limit.
func SetOpenFileLimit(n uint64) error {
	limit := &unix.Rlimit{}
	err := unix.Getrlimit(unix.RLIMIT_NOFILE, limit)
	if err != nil {
		return os.NewSyscallError("getrlimit", err)
	}
	if n > limit.Max {
		log.Warn().Msgf("open files limit %d exceeds hard limit %d", n, limit.Max)
		n = limit.Max
	}
	if limit.Cur >= n {
		return nil
	}
	limit.Cur = n
	err = unix.Setrlimit(unix.RLIMIT_NOFILE, limit)
	if err != nil {
		return os.NewSyscallError("setrlimit", err)
	}
	log.Info().Msgf("open files limit set to %d", n)
	return nil
}
