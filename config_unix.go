//go:build unix

package portio

func (c *Config) applyPlatform() error {
	if c.Limits.MaxOpenFiles > 0 {
		return SetOpenFileLimit(c.Limits.MaxOpenFiles)
	}
	return nil
}
