// Package testserver assembles the full server stack over an in-memory
// SQLite database for tests.
package testserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/tupadhub/tupadhub/internal/autosave"
	blobfs "github.com/tupadhub/tupadhub/internal/blob/fs"
	"github.com/tupadhub/tupadhub/internal/domain/profile"
	"github.com/tupadhub/tupadhub/internal/domain/project"
	"github.com/tupadhub/tupadhub/internal/export"
	"github.com/tupadhub/tupadhub/internal/mcp"
	"github.com/tupadhub/tupadhub/internal/metrics"
	"github.com/tupadhub/tupadhub/internal/sqlite"
	"github.com/tupadhub/tupadhub/internal/store"
	"github.com/tupadhub/tupadhub/internal/transport"
)

// DefaultDebounce is long enough that tests control commits with flush_edits.
const DefaultDebounce = time.Hour

type TestServer struct {
	DSN      string
	DB       *sqlite.DB
	Store    *store.Store
	Metrics  *metrics.Metrics
	Projects *project.Service
	Profiles *profile.Service
	Editor   *autosave.Reconciler
	Exports  *export.Service
	MCP      *sdkmcp.Server
	HTTP     *httptest.Server
}

type options struct {
	debounce time.Duration
	dsn      string
}

// Option customizes a TestServer.
type Option func(*options)

// WithDebounce sets the auto-save debounce.
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

// WithDSN opens the given database instead of a fresh per-test one, so two
// servers can share state.
func WithDSN(dsn string) Option {
	return func(o *options) { o.dsn = dsn }
}

// DSN returns a shared-cache in-memory database name unique to the test.
func DSN(t *testing.T) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
}

func New(t *testing.T, opts ...Option) *TestServer {
	t.Helper()

	o := options{debounce: DefaultDebounce, dsn: DSN(t)}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sqlite.New(o.dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	m := metrics.New()
	st := store.New(sqlite.NewKVRepository(db), m, nil)
	projectSvc := project.NewService(store.NewProjects(st), nil)
	profileSvc := profile.NewService(store.NewProfiles(st), nil)
	st.Subscribe(m.TrackPortfolio(store.KeyProjects, func() project.Stats {
		return projectSvc.Stats(context.Background())
	}))
	editor := autosave.NewReconciler(projectSvc, o.debounce, nil, autosave.WithRecorder(m))

	sink, err := blobfs.New(t.TempDir())
	require.NoError(t, err)
	exportSvc := export.NewService(projectSvc, sink, nil)

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects: projectSvc,
			Profiles: profileSvc,
			Editor:   editor,
			Exports:  exportSvc,
		},
	})

	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: time.Minute},
	)
	server := httptest.NewServer(transport.NewServer(transport.Options{
		MCP:     mcpHandler,
		Metrics: m.Handler(),
		Exports: exportSvc,
	}))

	ts := &TestServer{
		DSN:      o.dsn,
		DB:       db,
		Store:    st,
		Metrics:  m,
		Projects: projectSvc,
		Profiles: profileSvc,
		Editor:   editor,
		Exports:  exportSvc,
		MCP:      mcpServer,
		HTTP:     server,
	}

	t.Cleanup(func() {
		server.Close()
		editor.CloseAll(context.Background())
		_ = db.Close()
	})

	return ts
}

// Connect opens an MCP client session over in-memory transports.
func (ts *TestServer) Connect(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := ts.MCP.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Wait()
	})
	return session
}

// Call invokes a tool that is expected to succeed and decodes its
// structured result into out (when non-nil).
func Call(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any, out any) {
	t.Helper()
	result := CallRaw(t, session, name, args)
	require.False(t, result.IsError, "%s failed: %s", name, ResultText(result))
	if out == nil {
		return
	}
	data, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

// CallRaw invokes a tool and returns the raw result.
func CallRaw(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	result, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, "tools/call %s", name)
	return result
}

// ResultText joins the text content of a tool result.
func ResultText(result *sdkmcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if text, ok := content.(*sdkmcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}
