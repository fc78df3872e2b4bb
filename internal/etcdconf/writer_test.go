package etcdconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileConfigurator(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "etcd", "etcd.conf.yml")
	c := NewFileConfigurator(path)
	p := Build(testConfig("a", "b", "c"), "a", "/var/lib/etcd/a.etcd")

	changed, err := c.Configure(p)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = c.Configure(p)
	require.NoError(t, err)
	assert.False(t, changed, "second run with equal params writes nothing")

	p.LogLevel = "debug"
	changed, err = c.Configure(p)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "log-level: debug")
}
