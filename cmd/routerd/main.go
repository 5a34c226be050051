// Command routerd serves the router entry points over MCP stdio.
package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolrouter/config"
	"github.com/effective-security/toolrouter/mcp"
	"github.com/effective-security/toolrouter/orchestrator"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolrouter/cmd", "routerd")

// Version is set at build time
var Version = "dev"

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:          "routerd",
		Short:        "Multi-tool request router",
		SilenceUsage: true,
		Version:      Version,
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "configuration file, defaults are used when empty")

	var format string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the entry points over MCP stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if err = cfg.OverrideFormat(format); err != nil {
				return err
			}
			closer, err := setupLogging(cfg.Logging)
			if err != nil {
				return err
			}
			defer closer()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := orchestrator.NewBuilder(cfg).Build(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			logger.KV(xlog.INFO,
				"status", "serving",
				"version", Version,
				"tools", strings.Join(svc.Registry().Names(), ","),
			)

			err = mcp.ServeStdio(ctx, mcp.NewServer(svc, Version), in, out)
			if err != nil && !errors.Is(err, context.Canceled) {
				return errors.WithMessage(err, "server stopped")
			}
			return nil
		},
	}

	serve.Flags().StringVarP(&format, "format", "f", "", "output format of structured payloads: json|yaml|toml|text")

	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the registered tools",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			svc, err := orchestrator.NewBuilder(cfg).Build(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			// the schema carries only JSON tags
			js, err := json.Marshal(svc.Registry().Descriptors())
			if err != nil {
				return errors.WithStack(err)
			}
			var list []any
			if err = yaml.Unmarshal(js, &list); err != nil {
				return errors.WithStack(err)
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(list)
		},
	}

	root.AddCommand(serve, toolsCmd)
	return root
}

// setupLogging writes JSON logs to the configured file or stderr,
// stdout is reserved for the protocol
func setupLogging(cfg config.Logging) (func(), error) {
	var w io.Writer = os.Stderr
	closer := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open log file %s", cfg.File)
		}
		w = f
		closer = func() { _ = f.Close() }
	}
	xlog.SetFormatter(xlog.NewJSONFormatter(w))
	xlog.SetGlobalLogLevel(logLevel(cfg.Level))
	return closer, nil
}

func logLevel(level string) xlog.LogLevel {
	switch strings.ToUpper(level) {
	case "TRACE":
		return xlog.TRACE
	case "DEBUG":
		return xlog.DEBUG
	case "NOTICE":
		return xlog.NOTICE
	case "WARNING":
		return xlog.WARNING
	case "ERROR":
		return xlog.ERROR
	case "CRITICAL":
		return xlog.CRITICAL
	default:
		return xlog.INFO
	}
}
