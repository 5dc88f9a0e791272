package mcp

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tupadhub/tupadhub/internal/autosave"
	"github.com/tupadhub/tupadhub/internal/domain/profile"
	"github.com/tupadhub/tupadhub/internal/domain/project"
	"github.com/tupadhub/tupadhub/internal/export"
)

// Name and Version identify the server during MCP initialization.
const (
	Name    = "tupad"
	Version = "0.1.0"
)

// Services contains all domain services needed by MCP.
type Services struct {
	Projects *project.Service
	Profiles *profile.Service
	Editor   *autosave.Reconciler
	Exports  *export.Service
}

// Config contains server configuration.
type Config struct {
	Services Services
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    Name,
		Version: Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, NewHandler(cfg.Services))

	return server
}
