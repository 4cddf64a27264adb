package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 300, cfg.Resolution.CacheTTLSeconds)
	assert.Equal(t, 10, cfg.Resolution.MaxConcurrentRoutines)
	assert.Equal(t, 10, cfg.Resolution.RPCCallTimeoutSeconds)
	assert.Equal(t, uint64(300000), cfg.Registrar.RegisterGasLimit)
	assert.Equal(t, uint64(150000), cfg.Registrar.RenewGasLimit)
	assert.Equal(t, uint64(100000), cfg.Registrar.TransferGasLimit)
	assert.Equal(t, uint64(120000), cfg.Registrar.RecordGasLimit)
	assert.Equal(t, 1, cfg.Registrar.DefaultDurationYears)
	assert.Equal(t, "ens_activity", cfg.Activity.ExportDir)
	assert.Equal(t, "https://api.etherscan.io/api", cfg.Explorer.BaseURL)
	assert.Equal(t, 15, cfg.Watcher.PollIntervalSeconds)
}

func TestLoad(t *testing.T) {
	content := `
server:
  port: "9000"
resolution:
  cacheTTLSeconds: 60
registrar:
  defaultDurationYears: 2
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 60, cfg.Resolution.CacheTTLSeconds)
	assert.Equal(t, 2, cfg.Registrar.DefaultDurationYears)

	// Unset values still fall back to defaults.
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, uint64(300000), cfg.Registrar.RegisterGasLimit)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
