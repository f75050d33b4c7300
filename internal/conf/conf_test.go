package conf_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geophile/osh/internal/conf"
)

func TestLoadMissingFileYieldsEmptyNamespace(t *testing.T) {
	ns, err := conf.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	_, ok := ns.Value("remote", "prod", "user")
	assert.False(t, ok)
}

func TestLoadReadsDottedValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
remote:
  prod:
    user: deploy
    identity: /home/deploy/.ssh/id_rsa
    hosts:
      - host1
      - host2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ns, err := conf.Load(path)
	require.NoError(t, err)

	user, ok := ns.StringValue("remote", "prod", "user")
	require.True(t, ok)
	assert.Equal(t, "deploy", user)

	hosts, ok := ns.Value("remote.prod.hosts")
	require.True(t, ok)
	assert.Len(t, hosts, 2)
}
