package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/nodesync/internal/config"
	"github.com/vk/nodesync/internal/registry"
	"github.com/vk/nodesync/internal/testutil"
)

const cleanDoc = `
node "sensor" {
  type = "read_sensor"
  flow_out "then" {}
  output "reading" {
    type = string
  }
  output "ok" {
    type = bool
  }
}

node "show" {
  type = "print"
  flow_in "exec" {}
  input "text" {
    type = string
  }
  input "level" {
    type = number
  }
}

connect {
  from = "sensor.then"
  to   = "show.exec"
}

connect {
  from = "sensor.reading"
  to   = "show.text"
}
`

const rejectedConnect = `
connect {
  from = "sensor.ok"
  to   = "show.level"
}
`

// writeDoc writes src into a fresh directory and returns the file path.
func writeDoc(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0600))
	return path
}

// setupAppTest creates an App over the document at path with debug logging.
func setupAppTest(t *testing.T, path string, modules ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	settings := config.DefaultConfig()
	settings.Log.Level = "debug"
	cfg, err := NewConfig(Config{DocumentPaths: []string{path}, Settings: settings})
	require.NoError(t, err)

	logs := &testutil.SafeBuffer{}
	a, err := NewApp(logs, cfg, modules...)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("NODESYNC_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
		_ = a.Close()
	})
	return a, logs
}
