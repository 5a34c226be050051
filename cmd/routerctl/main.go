// Command routerctl is the interactive client of the router.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/effective-security/toolrouter/callbacks"
	"github.com/effective-security/toolrouter/config"
	"github.com/effective-security/toolrouter/encoding"
	"github.com/effective-security/toolrouter/mcp"
	"github.com/effective-security/toolrouter/orchestrator"
	"github.com/effective-security/toolrouter/router"
	"github.com/effective-security/xlog"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "dev"

type flags struct {
	config  string
	server  string
	session string
	format  string
	local   bool
	trace   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:           "routerctl",
		Short:         "Interactive client of the multi-tool router",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return run(ctx, cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.config, "config", "c", "", "configuration file")
	fl.StringVar(&f.server, "server", "routerd", "server command started over stdio")
	fl.StringVarP(&f.session, "session", "s", "", "session identifier, generated when empty")
	fl.StringVarP(&f.format, "format", "f", "", "output format of the server: json|yaml|toml|text")
	fl.BoolVar(&f.local, "local", false, "run the service in-process")
	fl.BoolVar(&f.trace, "trace", false, "print the workflow steps, with --local")
	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, f *flags) error {
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}
	if err = cfg.OverrideFormat(f.format); err != nil {
		return err
	}
	enc, err := encoding.New(cfg.Output.Format)
	if err != nil {
		return err
	}

	// keep the console for the conversation
	xlog.SetGlobalLogLevel(xlog.ERROR)

	var client *mcp.Client
	if f.local {
		b := orchestrator.NewBuilder(cfg)
		if f.trace {
			b.Callback = callbacks.NewPrinter(cmd.ErrOrStderr(), callbacks.ModeVerbose)
		}
		svc, err := b.Build(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		client, err = mcp.NewInProcess(ctx, mcp.NewServer(svc, Version), Version)
		if err != nil {
			return err
		}
	} else {
		client, err = mcp.Dial(ctx, Version, os.Environ(), f.server, serverArgs(f)...)
		if err != nil {
			color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "CRITICAL CONNECTION ERROR: %v\n", err)
			return err
		}
	}
	defer client.Close()

	repl := &REPL{
		In:         cmd.InOrStdin(),
		Out:        cmd.OutOrStdout(),
		Caller:     client,
		Classifier: router.NewWithConfig(&cfg.Router),
		Encoder:    enc,
		SessionID:  f.session,
	}
	return repl.Run(ctx)
}

// serverArgs returns the arguments of the server command,
// the server encodes payloads in the format the client decodes
func serverArgs(f *flags) []string {
	args := []string{"serve"}
	if f.config != "" {
		args = append(args, "--config", f.config)
	}
	if f.format != "" {
		args = append(args, "--format", f.format)
	}
	return args
}
