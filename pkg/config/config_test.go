package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xpcgo.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Sim.Host)
	assert.Equal(t, 49009, cfg.Sim.Port)
	assert.Equal(t, Duration(100*time.Millisecond), cfg.Sim.Timeout)

	// The file must now exist with the defaults written out.
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoadMergesWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xpcgo.yaml")
	partial := `
sim:
  host: 192.168.1.50
  timeout: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(partial), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.50", cfg.Sim.Host)
	assert.Equal(t, Duration(2*time.Second), cfg.Sim.Timeout)
	// Unspecified fields keep their defaults.
	assert.Equal(t, 49009, cfg.Sim.Port)
	assert.NotEmpty(t, cfg.Monitor.Datarefs)
}

func TestLoadRejectsBadPorts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xpcgo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sim:\n  port: 70000\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xpcgo.yaml")

	orig := DefaultConfig()
	orig.Sim.Host = "simhost"
	orig.Monitor.Interval = Duration(5 * time.Second)
	require.NoError(t, Save(path, orig))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, orig, loaded)
}

func TestGenerateDefaultIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xpcgo.yaml")

	require.NoError(t, GenerateDefault(path))
	info1, err := os.Stat(path)
	require.NoError(t, err)

	// A second call must not touch the existing file.
	require.NoError(t, GenerateDefault(path))
	info2, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info1.ModTime(), info2.ModTime())
}
