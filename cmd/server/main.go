package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tupadhub/tupadhub/internal/autosave"
	"github.com/tupadhub/tupadhub/internal/blob"
	blobfs "github.com/tupadhub/tupadhub/internal/blob/fs"
	blobs3 "github.com/tupadhub/tupadhub/internal/blob/s3"
	"github.com/tupadhub/tupadhub/internal/config"
	"github.com/tupadhub/tupadhub/internal/domain/profile"
	"github.com/tupadhub/tupadhub/internal/domain/project"
	"github.com/tupadhub/tupadhub/internal/export"
	"github.com/tupadhub/tupadhub/internal/mcp"
	"github.com/tupadhub/tupadhub/internal/metrics"
	"github.com/tupadhub/tupadhub/internal/sqlite"
	"github.com/tupadhub/tupadhub/internal/store"
	"github.com/tupadhub/tupadhub/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer fileWriter.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	var recorder *metrics.Metrics
	if cfg.Metrics.Enabled {
		recorder = metrics.New()
	}

	st := store.New(sqlite.NewKVRepository(db), storeRecorder(recorder), logger)
	projectSvc := project.NewService(store.NewProjects(st), logger)
	profileSvc := profile.NewService(store.NewProfiles(st), logger)

	var editorOpts []autosave.Option
	if recorder != nil {
		editorOpts = append(editorOpts, autosave.WithRecorder(recorder))
		recorder.ObservePortfolio(projectSvc.Stats(ctx))
		st.Subscribe(recorder.TrackPortfolio(store.KeyProjects, func() project.Stats {
			return projectSvc.Stats(context.Background())
		}))
	}
	editor := autosave.NewReconciler(projectSvc, cfg.Autosave.Debounce, logger, editorOpts...)

	if cfg.Store.WatchInterval > 0 {
		go st.Watch(ctx, cfg.Store.WatchInterval)
	}

	sink, err := newExportSink(ctx, cfg.Export)
	if err != nil {
		logger.Error("failed to open export sink", "driver", cfg.Export.Driver, "error", err)
		os.Exit(1)
	}
	exportSvc := export.NewService(projectSvc, sink, logger)

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects: projectSvc,
			Profiles: profileSvc,
			Editor:   editor,
			Exports:  exportSvc,
		},
		Logger: logger,
	})

	if cfg.Transport.Mode == "stdio" {
		runStdioMode(ctx, logger, mcpServer)
	} else {
		router := transport.NewServer(transport.Options{
			MCP:     newMCPHandler(mcpServer),
			Metrics: metricsHandler(recorder),
			Exports: exportSvc,
			Logger:  logger,
		})
		runHTTPMode(ctx, logger, router, cfg.Server.Host, cfg.Server.Port)
	}

	// Pending auto-save tickets are written before the process exits.
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	editor.CloseAll(flushCtx)
	logger.Info("stopped")
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport")

	// Run blocks until stdin closes or the context is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stdio server error", "error", err)
	}
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, handler http.Handler, host string, port int) {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func newMCPHandler(server *sdkmcp.Server) http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)
}

func newExportSink(ctx context.Context, cfg config.ExportConfig) (blob.Store, error) {
	switch blob.Driver(cfg.Driver) {
	case blob.DriverS3:
		return blobs3.New(ctx, blobs3.Config{
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
	case blob.DriverFilesystem:
		return blobfs.New(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown export driver %q", cfg.Driver)
	}
}

// storeRecorder avoids handing the store a typed nil.
func storeRecorder(m *metrics.Metrics) store.Recorder {
	if m == nil {
		return nil
	}
	return m
}

func metricsHandler(m *metrics.Metrics) http.Handler {
	if m == nil {
		return nil
	}
	return m.Handler()
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
