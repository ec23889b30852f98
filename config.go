package portio

import (
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"os"
	"strings"
	"time"
)

type Global struct {
	LogLevel string `yaml:"log_level" toml:"log_level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
}

type DirConfig struct {
	Reader         string `yaml:"reader" toml:"reader" validate:"omitempty,oneof=auto getdents portable"`
	BlockSize      int    `yaml:"block_size" toml:"block_size" validate:"gte=0"`
	StatCacheSize  int64  `yaml:"stat_cache_size" toml:"stat_cache_size" validate:"gte=0"`
	StatCacheTTLMs int    `yaml:"stat_cache_ttl_ms" toml:"stat_cache_ttl_ms" validate:"gte=0"`
}

type PollConfig struct {
	SocketModule string `yaml:"socket_module" toml:"socket_module"`
	SelectSymbol string `yaml:"select_symbol" toml:"select_symbol"`
	ErrnoSymbol  string `yaml:"errno_symbol" toml:"errno_symbol"`
}

type LimitsConfig struct {
	MaxOpenFiles uint64 `yaml:"max_open_files" toml:"max_open_files"`
	ScopeBytes   int64  `yaml:"scope_bytes" toml:"scope_bytes" validate:"gte=0"`
}

type Config struct {
	Global Global       `yaml:"global" toml:"global"`
	Dir    DirConfig    `yaml:"dir" toml:"dir"`
	Poll   PollConfig   `yaml:"poll" toml:"poll"`
	Limits LimitsConfig `yaml:"limits" toml:"limits"`
}

var validate = validator.New()

func DefaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// LoadConfig reads a .toml or .yaml/.yml file, fills defaults and validates it.
func LoadConfig(filePath string) (*Config, error) {
	file, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	config := &Config{}
	switch {
	case strings.HasSuffix(filePath, ".toml"):
		err = toml.Unmarshal(file, config)
	case strings.HasSuffix(filePath, ".yaml"), strings.HasSuffix(filePath, ".yml"):
		err = yaml.Unmarshal(file, config)
	default:
		return nil, errors.Errorf("unsupported config format: %s", filePath)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", filePath)
	}
	applyDefaults(config)
	if err := validateConfig(config); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", filePath)
	}
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Global.LogLevel == "" {
		config.Global.LogLevel = "info"
	}
	config.Global.LogLevel = strings.ToLower(config.Global.LogLevel)
	if config.Dir.Reader == "" {
		config.Dir.Reader = string(ReaderAuto)
	}
	if config.Dir.BlockSize == 0 {
		config.Dir.BlockSize = defBlockSize
	}
	if config.Dir.StatCacheTTLMs == 0 {
		config.Dir.StatCacheTTLMs = int(defStatCacheTTL / time.Millisecond)
	}
	if config.Poll.SocketModule == "" {
		config.Poll.SocketModule = defaultLinkNames.Module
	}
	if config.Poll.SelectSymbol == "" {
		config.Poll.SelectSymbol = defaultLinkNames.SelectSymbol
	}
	if config.Poll.ErrnoSymbol == "" {
		config.Poll.ErrnoSymbol = defaultLinkNames.ErrnoSymbol
	}
}

func validateConfig(config *Config) error {
	if err := validate.Struct(config); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return errors.Errorf("%s: validation failed on '%s' tag (value: %v)", e.Namespace(), e.Tag(), e.Value())
		}
		return err
	}
	return nil
}

// Apply installs the configuration process-wide: log level, directory reader
// settings, metadata cache, socket link names and open file limit.
func (c *Config) Apply() error {
	level, err := zerolog.ParseLevel(c.Global.LogLevel)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	SetLinkNames(LinkNames{
		Module:       c.Poll.SocketModule,
		SelectSymbol: c.Poll.SelectSymbol,
		ErrnoSymbol:  c.Poll.ErrnoSymbol,
	})
	dirSettings.Store(&dirOptions{reader: ReaderKind(c.Dir.Reader), blockSize: c.Dir.BlockSize})
	err = statCache.configure(c.Dir.StatCacheSize, time.Duration(c.Dir.StatCacheTTLMs)*time.Millisecond)
	if err != nil {
		return errors.Wrap(err, "metadata cache")
	}
	return c.applyPlatform()
}

// NewScope creates a root scope bounded by the configured byte limit.
func (c *Config) NewScope(name string) *Scope {
	return NewScope(name).WithLimit(c.Limits.ScopeBytes)
}
