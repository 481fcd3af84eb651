package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("empty document keeps defaults", func(t *testing.T) {
		c, err := Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, Default(), c)
	})

	t.Run("overrides defaults", func(t *testing.T) {
		c, err := Parse([]byte(`
log:
  verbosity: 2
runtime:
  max_passes: 10
serve:
  tick: 250ms
tracing:
  enabled: true
`))
		require.NoError(t, err)

		assert.Equal(t, 2, c.Log.Verbosity)
		assert.Equal(t, 10, c.Runtime.MaxPasses)
		assert.Equal(t, 250*time.Millisecond, c.Serve.Tick)
		assert.Equal(t, ":8080", c.Serve.Addr)
		assert.True(t, c.Tracing.Enabled)
		assert.False(t, c.Tracing.Passes)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		_, err := Parse([]byte("runtime:\n  max_pases: 10\n"))
		assert.Error(t, err)
	})

	t.Run("reports every invalid field", func(t *testing.T) {
		_, err := Parse([]byte(`
runtime:
  max_passes: 0
serve:
  addr: ""
  tick: -1s
`))
		require.ErrorIs(t, err, ErrInvalid)
		assert.Contains(t, err.Error(), "runtime.max_passes")
		assert.Contains(t, err.Error(), "serve.addr")
		assert.Contains(t, err.Error(), "serve.tick")
	})
}

func TestLoad(t *testing.T) {
	t.Run("no path", func(t *testing.T) {
		c, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), c)
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "impact.yaml")
		require.NoError(t, os.WriteFile(path, []byte("serve:\n  addr: 127.0.0.1:9090\n"), 0o600))

		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:9090", c.Serve.Addr)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
