package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan fsnotify.Event, 10)
	require.NoError(t, Watch(ctx, path, func(ev fsnotify.Event) { events <- ev }))

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0644))
	require.NoError(t, os.WriteFile(path, []byte(`{"mcpServers": {}}`), 0644))

	select {
	case ev := <-events:
		require.Equal(t, filepath.Base(path), filepath.Base(ev.Name))
	case <-time.After(5 * time.Second):
		t.Fatal("no event for config write")
	}
}
