package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/effective-security/honeybadger-mcp/config"
	"github.com/effective-security/honeybadger-mcp/hbclient"
	"github.com/effective-security/honeybadger-mcp/mcpserver"
	"github.com/effective-security/honeybadger-mcp/tools"
	"github.com/effective-security/honeybadger-mcp/tools/faults"
	"github.com/effective-security/honeybadger-mcp/utils"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/honeybadger-mcp", "cli")

// Set via ldflags at build time.
var version = "dev"

var cfgFile string

func main() {
	// the stdio transport owns stdout, all logs go to stderr
	xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
	xlog.SetGlobalLogLevel(xlog.INFO)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "honeybadger-mcp",
	Short: "MCP server for the Honeybadger error-tracking API",
	Long: "honeybadger-mcp serves the list_faults and get_fault_details tools\n" +
		"over stdio or SSE, backed by the Honeybadger Data API.",
	// SilenceUsage prevents printing usage on every error
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "cfg", "", "optional YAML configuration file")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("honeybadger-mcp version %s\n", version))

	rootCmd.AddCommand(newToolsCmd())
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		logger.KV(xlog.ERROR, "reason", "configuration", "err", err.Error())
		return err
	}

	xlog.SetGlobalLogLevel(logLevel(cfg.LogLevel))

	srv, err := mcpserver.New(cfg, version)
	if err != nil {
		logger.KV(xlog.ERROR, "reason", "startup", "err", err.Error())
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}

func logLevel(name string) xlog.LogLevel {
	switch strings.ToUpper(name) {
	case "DEBUG":
		return xlog.DEBUG
	case "TRACE":
		return xlog.TRACE
	case "WARNING", "WARN":
		return xlog.WARNING
	case "ERROR":
		return xlog.ERROR
	default:
		return xlog.INFO
	}
}

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tools and their parameter schemas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// schemas do not depend on credentials
			client, err := hbclient.New("unused", "unused")
			if err != nil {
				return err
			}
			listTool, err := faults.NewListTool(client)
			if err != nil {
				return err
			}
			detailsTool, err := faults.NewDetailsTool(client)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, tools.GetDescriptions(listTool, detailsTool))
			for _, t := range []tools.ITool{listTool, detailsTool} {
				fmt.Fprintf(out, "\n%s:%s", t.Name(), utils.BackticksJSON(utils.ToJSONIndent(t.Parameters())))
			}
			return nil
		},
	}
}
