package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpchat/mcpchat/internal/mcp"
)

func TestServerTools(t *testing.T) {
	tools := []mcp.Tool{
		{Name: "toolbox_sum"},
		{Name: "my_server_read_file"},
		{Name: "toolbox_now"},
		{Name: "my_server_list"},
	}

	names := func(ts []mcp.Tool) []string {
		var out []string
		for _, t := range ts {
			out = append(out, t.Name)
		}
		return out
	}

	assert.Equal(t, []string{"my_server_list", "my_server_read_file"}, names(serverTools(tools, "my-server")))
	assert.Equal(t, []string{"toolbox_now", "toolbox_sum"}, names(serverTools(tools, "toolbox")))
	assert.Len(t, serverTools(tools, ""), 4)
	assert.Empty(t, serverTools(tools, "missing"))
}

func TestInterruptContext(t *testing.T) {
	ctx, stop := interruptContext(context.Background())
	defer stop()

	p, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, p.Signal(os.Interrupt))

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context not cancelled by SIGINT")
	}
}

func TestConnectConfigured_Interrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mcpServers": {"remote": {"url": "http://127.0.0.1:1/mcp"}}}`), 0644))

	old := flagConfig
	flagConfig = path
	defer func() { flagConfig = old }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := connectConfigured(ctx)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 130, exitErr.Code)
}
