package integration_test

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/tupadhub/tupadhub/internal/domain/project"
)

// serverBinary locates a prebuilt server binary; `go build -o bin/tupad ./cmd/server`.
func serverBinary(t *testing.T) string {
	t.Helper()
	for _, path := range []string{"./bin/tupad", "../../bin/tupad"} {
		if _, err := os.Stat(path); err == nil {
			abs, err := filepath.Abs(path)
			require.NoError(t, err)
			return abs
		}
	}
	t.Skip("server binary not found; build bin/tupad first")
	return ""
}

func serverCommand(ctx context.Context, t *testing.T) *exec.Cmd {
	cmd := exec.CommandContext(ctx, serverBinary(t))
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(),
		"TUPAD_TRANSPORT_MODE=stdio",
		"TUPAD_DB_PATH=:memory:",
		"TUPAD_EXPORT_DIR="+filepath.Join(cmd.Dir, "exports"),
		"TUPAD_LOG_LEVEL=debug",
	)
	return cmd
}

// TestStdioProtocolCompliance drives the server binary over stdio with the
// SDK client.
func TestStdioProtocolCompliance(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.CommandTransport{Command: serverCommand(ctx, t)}, nil)
	require.NoError(t, err)
	defer session.Close()

	t.Run("ServerInfo", func(t *testing.T) {
		info := session.InitializeResult()
		require.NotNil(t, info)
		require.Equal(t, "tupad", info.ServerInfo.Name)
	})

	t.Run("CreateAndList", func(t *testing.T) {
		result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
			Name:      "create_project",
			Arguments: map[string]any{"adl": "2024-001", "municipality": "Tagum", "beneficiaries": 10},
		})
		require.NoError(t, err)
		require.False(t, result.IsError, "create_project returned error: %v", result)

		result, err = session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "list_projects"})
		require.NoError(t, err)
		require.False(t, result.IsError)

		data, err := json.Marshal(result.StructuredContent)
		require.NoError(t, err)
		var list struct {
			Projects []project.ProjectSummary `json:"projects"`
		}
		require.NoError(t, json.Unmarshal(data, &list))
		require.Len(t, list.Projects, 1)
		require.Equal(t, "2024-001", list.Projects[0].ADL)
	})
}

// TestStdioProtocol_StdoutHygiene checks that every stdout line is a JSON-RPC
// message even with debug logging on.
func TestStdioProtocol_StdoutHygiene(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := serverCommand(ctx, t)
	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})

	initReq := `{"jsonrpc":"2.0","method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}},"id":1}`
	_, err = stdin.Write([]byte(initReq + "\n"))
	require.NoError(t, err)

	lines := make(chan string, 1)
	go func() {
		scanner := bufio.NewScanner(stdout)
		if scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	select {
	case line, ok := <-lines:
		require.True(t, ok, "server produced no stdout output")
		var msg map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &msg), "stdout line is not JSON: %q", line)
		require.Equal(t, "2.0", msg["jsonrpc"])
		require.EqualValues(t, 1, msg["id"])
	case <-ctx.Done():
		t.Fatal("timeout waiting for initialize response")
	}
	_ = stdin.Close()
}
