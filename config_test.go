package portio

import (
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigToml(t *testing.T) {
	config, err := LoadConfig("testdata/config.toml")
	require.NoError(t, err)
	assert.Equal(t, "debug", config.Global.LogLevel)
	assert.Equal(t, "portable", config.Dir.Reader)
	assert.Equal(t, 16384, config.Dir.BlockSize)
	assert.EqualValues(t, 512, config.Dir.StatCacheSize)
	assert.Equal(t, 250, config.Dir.StatCacheTTLMs)
	assert.Equal(t, "libc", config.Poll.SocketModule)
	assert.Equal(t, defaultLinkNames.SelectSymbol, config.Poll.SelectSymbol)
	assert.EqualValues(t, 4096, config.Limits.MaxOpenFiles)
	assert.EqualValues(t, 1048576, config.Limits.ScopeBytes)
}

func TestLoadConfigYaml(t *testing.T) {
	config, err := LoadConfig("testdata/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "warn", config.Global.LogLevel)
	assert.Equal(t, "getdents", config.Dir.Reader)
	assert.Equal(t, 4096, config.Dir.BlockSize)
	assert.EqualValues(t, 0, config.Dir.StatCacheSize)
	assert.Equal(t, 1000, config.Dir.StatCacheTTLMs)
	assert.Equal(t, "poll", config.Poll.SelectSymbol)
	assert.Equal(t, defaultLinkNames.Module, config.Poll.SocketModule)
	assert.EqualValues(t, 65536, config.Limits.ScopeBytes)
	assert.Equal(t, int64(65536), config.NewScope("limited").limit)
}

func TestLoadConfigInvalidReader(t *testing.T) {
	_, err := LoadConfig("testdata/bad_reader.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")
}

func TestLoadConfigUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	_, err := LoadConfig(path)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigApply(t *testing.T) {
	prevLevel := zerolog.GlobalLevel()
	prevNames := linkNames.Load()
	prevDir := dirSettings.Load()
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
		linkNames.Store(prevNames)
		dirSettings.Store(prevDir)
		statCache.configure(0, 0)
	})

	config := DefaultConfig()
	config.Global.LogLevel = "error"
	config.Dir.Reader = string(ReaderPortable)
	config.Dir.StatCacheSize = 64
	config.Poll.SelectSymbol = "select"
	require.NoError(t, config.Apply())

	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())
	assert.Equal(t, ReaderPortable, dirSettings.Load().reader)
	assert.Equal(t, defBlockSize, dirSettings.Load().blockSize)
	assert.Equal(t, "select", linkNames.Load().SelectSymbol)
	assert.Equal(t, defaultLinkNames.Module, linkNames.Load().Module)
	assert.NotNil(t, statCache.cache)
}
