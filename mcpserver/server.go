package mcpserver

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/honeybadger-mcp/config"
	"github.com/effective-security/honeybadger-mcp/hbclient"
	"github.com/effective-security/honeybadger-mcp/tools"
	"github.com/effective-security/honeybadger-mcp/tools/faults"
	"github.com/effective-security/xlog"
	"github.com/mark3labs/mcp-go/server"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/honeybadger-mcp", "mcpserver")

// ServerName is the MCP server name announced to clients.
const ServerName = "honeybadger-mcp"

// Server hosts the Honeybadger tools over an MCP transport.
type Server struct {
	cfg   *config.Config
	mcp   *server.MCPServer
	tools []tools.ITool
}

// New builds the MCP server: constructs the API client and registers
// the fault tools. The configuration must be validated already.
func New(cfg *config.Config, version string) (*Server, error) {
	var opts []hbclient.Option
	if cfg.BaseURL != "" {
		opts = append(opts, hbclient.WithBaseURL(cfg.BaseURL))
	}
	client, err := hbclient.New(cfg.APIKey, cfg.ProjectID, opts...)
	if err != nil {
		return nil, err
	}

	listTool, err := faults.NewListTool(client)
	if err != nil {
		return nil, err
	}
	detailsTool, err := faults.NewDetailsTool(client)
	if err != nil {
		return nil, err
	}

	srv := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Read-only access to Honeybadger faults and notices for one project."),
	)

	s := &Server{
		cfg: cfg,
		mcp: srv,
	}
	for _, t := range []tools.IMCPTool{listTool, detailsTool} {
		if err := t.RegisterMCP(srv); err != nil {
			return nil, errors.WithMessagef(err, "failed to register tool %q", t.Name())
		}
		s.tools = append(s.tools, t)
	}

	return s, nil
}

// Tools returns the registered tools.
func (s *Server) Tools() []tools.ITool {
	return s.tools
}

// MCP returns the underlying MCP server, for custom transports and tests.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Run serves the configured transport until the context is canceled
// or the transport closes.
func (s *Server) Run(ctx context.Context) error {
	switch s.cfg.Transport {
	case config.TransportSSE:
		return s.runSSE(ctx)
	default:
		return s.runStdio(ctx)
	}
}

func (s *Server) runStdio(ctx context.Context) error {
	logger.KV(xlog.INFO, "transport", "stdio", "server", ServerName)
	stdio := server.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) runSSE(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	logger.KV(xlog.INFO, "transport", "sse", "addr", addr, "server", ServerName)

	sse := server.NewSSEServer(s.mcp,
		server.WithBaseURL("http://"+addr),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(addr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return sse.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
