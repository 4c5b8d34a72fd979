package integrationtests

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/nodesync/internal/app"
	"github.com/vk/nodesync/internal/config"
	"github.com/vk/nodesync/internal/scheduler"
	"github.com/vk/nodesync/internal/testutil"
	"github.com/vk/nodesync/internal/viewsync"
)

// harnessResult holds everything a test may assert on after a run.
type harnessResult struct {
	App       *app.App
	Session   *app.Session
	Renderer  *viewsync.MemoryRenderer
	Scheduler *scheduler.Manual
	LogOutput string
	Err       error
}

// runIntegrationTest writes files into a temporary directory, opens it as one
// document and runs the view until it settles.
func runIntegrationTest(t *testing.T, files map[string]string) *harnessResult {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	settings := config.DefaultConfig()
	settings.Log.Level = "debug"
	cfg, err := app.NewConfig(app.Config{DocumentPaths: []string{dir}, Settings: settings})
	require.NoError(t, err)

	logs := &testutil.SafeBuffer{}
	a, err := app.NewApp(logs, cfg)
	require.NoError(t, err)

	res := &harnessResult{
		App:       a,
		Renderer:  viewsync.NewMemoryRenderer(),
		Scheduler: scheduler.NewManual(scheduler.WithAutoAdvance(time.Millisecond)),
	}
	res.Session, res.Err = a.Open(context.Background(), viewsync.NewHost(res.Renderer, res.Scheduler))
	if res.Err == nil {
		_, res.Err = res.Scheduler.RunUntilIdle(100000)
	}
	res.LogOutput = logs.String()

	t.Cleanup(func() {
		if os.Getenv("NODESYNC_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), res.LogOutput)
		}
	})
	return res
}
