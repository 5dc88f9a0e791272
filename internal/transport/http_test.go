package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tupadhub/tupadhub/internal/domain/project"
	"github.com/tupadhub/tupadhub/internal/export"
)

type exporterStub struct {
	format export.Format
	id     string
	err    error
}

func (e *exporterStub) Render(_ context.Context, format export.Format, id string) (*export.Document, error) {
	e.format, e.id = format, id
	if e.err != nil {
		return nil, e.err
	}
	return &export.Document{
		Name:        "tupad-export." + string(format),
		ContentType: format.ContentType(),
		Body:        []byte("payload"),
	}, nil
}

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewServer(opts))
	t.Cleanup(server.Close)
	return server
}

func TestHTTPServer_Health(t *testing.T) {
	server := newTestServer(t, Options{})

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, "ok", string(body))
}

func TestHTTPServer_MountsHandlers(t *testing.T) {
	mcp := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) })
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("# metrics")) })
	server := newTestServer(t, Options{MCP: mcp, Metrics: metrics})

	resp, err := http.Post(server.URL+"/mcp", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, "# metrics", string(body))
}

func TestHTTPServer_UnmountedRoutes(t *testing.T) {
	server := newTestServer(t, Options{})

	for _, path := range []string{"/mcp", "/metrics", "/exports/projects.json"} {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestHTTPServer_Exports(t *testing.T) {
	tests := []struct {
		path        string
		format      export.Format
		id          string
		contentType string
	}{
		{"/exports/projects.json", export.FormatJSON, "", "application/json"},
		{"/exports/projects.xlsx", export.FormatXLSX, "", export.FormatXLSX.ContentType()},
		{"/exports/projects/p-1.csv", export.FormatCSV, "p-1", export.FormatCSV.ContentType()},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			stub := &exporterStub{}
			server := newTestServer(t, Options{Exports: stub})

			resp, err := http.Get(server.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.Equal(t, tt.format, stub.format)
			require.Equal(t, tt.id, stub.id)
			require.Contains(t, resp.Header.Get("Content-Type"), tt.contentType)
			require.Equal(t, `attachment; filename="tupad-export.`+string(tt.format)+`"`, resp.Header.Get("Content-Disposition"))
			body, _ := io.ReadAll(resp.Body)
			require.Equal(t, "payload", string(body))
		})
	}
}

func TestHTTPServer_ExportErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unknown project", project.ErrProjectNotFound, http.StatusNotFound, "PROJECT_NOT_FOUND"},
		{"bad format", export.ErrUnknownFormat, http.StatusBadRequest, "BAD_REQUEST"},
		{"render failure", errors.New("disk full"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, Options{Exports: &exporterStub{err: tt.err}})

			resp, err := http.Get(server.URL + "/exports/projects/missing.csv")
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, tt.status, resp.StatusCode)
			var body ErrorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.Equal(t, tt.code, body.Code)
		})
	}
}
