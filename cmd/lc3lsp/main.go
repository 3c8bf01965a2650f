package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/corymhall/lc3lsp/config"
	"github.com/corymhall/lc3lsp/dispatch"
	"github.com/corymhall/lc3lsp/file"
	"github.com/corymhall/lc3lsp/logger"
	"github.com/corymhall/lc3lsp/lsp"
	"github.com/corymhall/lc3lsp/metrics"
	"github.com/corymhall/lc3lsp/rpc"
	"github.com/corymhall/lc3lsp/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
	"github.com/spf13/cobra"
)

func main() {
	defer panicHandler()
	exitCode := 0
	cmd := newRootCmd(os.Stdin, os.Stdout, &exitCode)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
	os.Exit(exitCode)
}

type options struct {
	configPath  string
	logFile     string
	logLevel    string
	logClient   bool
	metricsAddr string
}

// newRootCmd returns the lc3lsp command serving LSP over stdin and stdout.
// exitCode receives the status the process should end with.
func newRootCmd(stdin io.Reader, stdout io.Writer, exitCode *int) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "lc3lsp",
		Short:        "Language server for LC-3 assembly",
		Long:         "lc3lsp speaks the Language Server Protocol over stdin and stdout.",
		Version:      server.Version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			code, err := run(cmd.Context(), cfg, stdin, stdout)
			*exitCode = code
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.BoolVar(&opts.logClient, "log-client", false, "mirror logs to the editor with window/logMessage")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this host:port")
	return cmd
}

// load reads the config file and applies the flags the user set.
func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("log-file") {
		cfg.Log.File = o.logFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-client") {
		cfg.Log.Client = o.logClient
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = o.metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run serves one LSP session and returns the process exit code.
func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) (int, error) {
	logOut, closeLog := openLog(cfg.Log.File)
	defer closeLog()
	logger.ProgramLevel.Set(cfg.Log.SlogLevel())
	fileHandler := slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: logger.ProgramLevel})
	log := slog.New(fileHandler)

	// the connection logs to the file only, its own write errors must not
	// loop back through the client
	conn := rpc.NewConn(rpc.NewHeaderStream(in, out), log)
	client := lsp.ClientDispatcher(conn)

	handlerLog := log
	if cfg.Log.Client {
		handlerLog = slog.New(logger.Fanout(fileHandler, logger.NewClientHandler(client, logger.ProgramLevel)))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	if cfg.Metrics.Addr != "" {
		srv, err := metrics.Serve(cfg.Metrics.Addr, reg, log)
		if err != nil {
			return 1, err
		}
		defer srv.Close()
	}

	lspServer := server.New(client, m)
	router := dispatch.NewRouter()
	lspServer.Register(router)
	d := dispatch.New(router, file.NewStore(), handlerLog, m)

	log.Info("starting server", slog.String("version", server.Version), slog.Any("methods", router.Methods()))
	err := conn.Run(ctx, d.Handle)
	log.Info("shutting down server")
	if err != nil {
		return 1, err
	}
	return lspServer.ExitCode(), nil
}

func openLog(filename string) (io.Writer, func()) {
	if filename == "" {
		return os.Stderr, func() {}
	}
	logfile, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o666)
	contract.AssertNoErrorf(err, "failed to open log file: %s", filename)
	return logfile, func() { _ = logfile.Close() }
}

func panicHandler() {
	if panicPayload := recover(); panicPayload != nil {
		stack := string(debug.Stack())
		fmt.Fprintln(os.Stderr, "================================================================================")
		fmt.Fprintln(os.Stderr, "lc3lsp encountered a fatal error. This is a bug!")
		fmt.Fprintln(os.Stderr, "We would appreciate a report: https://github.com/corymhall/lc3lsp/issues/")
		fmt.Fprintln(os.Stderr, "Please provide all of the below text in your report.")
		fmt.Fprintln(os.Stderr, "================================================================================")
		fmt.Fprintf(os.Stderr, "lc3lsp Version:       %s\n", server.Version)
		fmt.Fprintf(os.Stderr, "Go Version:           %s\n", runtime.Version())
		fmt.Fprintf(os.Stderr, "Go Compiler:          %s\n", runtime.Compiler)
		fmt.Fprintf(os.Stderr, "Architecture:         %s\n", runtime.GOARCH)
		fmt.Fprintf(os.Stderr, "Operating System:     %s\n", runtime.GOOS)
		fmt.Fprintf(os.Stderr, "Panic:                %s\n\n", panicPayload)
		fmt.Fprintln(os.Stderr, stack)
		os.Exit(1)
	}
}
