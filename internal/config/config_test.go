package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	p := filepath.Join(t.TempDir(), "mwatdr.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
engine:
  binary: /opt/mwatdr/bin/engine
  timeout: 45m
verify:
  allow_empty_signals: true
log:
  level: debug
`), 0o644))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "/opt/mwatdr/bin/engine", cfg.Engine.Binary)
	assert.Equal(t, 45*time.Minute, cfg.Engine.Timeout)
	assert.True(t, cfg.Verify.AllowEmptySignals)
	assert.Equal(t, 4, cfg.Verify.Workers, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	for name, body := range map[string]string{
		"syntax":  "engine: [",
		"level":   "log:\n  level: loud\n",
		"binary":  "engine:\n  binary: \"\"\n",
		"timeout": "engine:\n  timeout: -1s\n",
	} {
		p := filepath.Join(dir, name+".yaml")
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		_, err := Load(p)
		assert.Error(t, err, name)
	}
}
