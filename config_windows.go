//go:build windows

package portio

import (
	"github.com/rs/zerolog/log"
)

func (c *Config) applyPlatform() error {
	if c.Limits.MaxOpenFiles > 0 {
		log.Warn().Msg("max_open_files is ignored on windows")
	}
	return nil
}
