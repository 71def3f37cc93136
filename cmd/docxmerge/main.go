package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benjaminschreck/docxmerge/pkg/docxmerge"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.1.0"

// app carries what the root command's pre-run builds for its subcommands.
type app struct {
	configPath   string
	logLevel     string
	otlpEndpoint string
	timeout      time.Duration

	logger   *zap.Logger
	engine   *docxmerge.Engine
	shutdown func(context.Context) error
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "docxmerge",
		Short: "docxmerge - merge data into DOCX templates",
		Long: `docxmerge renders DOCX templates with data read from YAML or JSON.

Scalar placeholders ${name} are replaced by text. A paragraph holding a
placeholder whose value is a list is repeated once per list element.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (.yaml, .yml or .json); defaults to DOCXMERGE_* environment")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error, off)")
	root.PersistentFlags().StringVar(&a.otlpEndpoint, "otlp-endpoint", os.Getenv("DOCXMERGE_OTLP_ENDPOINT"), "Export traces over OTLP/HTTP to host:port")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "Abort rendering after this long (0 disables)")

	root.AddCommand(newRenderCmd(a), newPlaceholdersCmd(), newVersionCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	config := docxmerge.ConfigFromEnvironment()
	if a.configPath != "" {
		var err error
		config, err = docxmerge.ConfigFromFile(a.configPath)
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("log-level") {
		config.LogLevel = a.logLevel
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := docxmerge.NewLogger(config.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	docxmerge.SetLogger(logger)

	if a.otlpEndpoint != "" {
		shutdown, err := setupTracing(cmd.Context(), a.otlpEndpoint, logger)
		if err != nil {
			return err
		}
		a.shutdown = shutdown
	}

	a.engine = docxmerge.NewWithOptions(docxmerge.WithConfig(config), docxmerge.WithLogger(logger))
	return nil
}

func (a *app) teardown() error {
	var err error
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err = a.shutdown(ctx); err != nil {
			a.logger.Warn("failed to flush traces", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "docxmerge version %s\n", version)
		},
	}
}

// run executes the command line args. Traces are flushed and the logger
// synced whether or not the command succeeds.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if terr := a.teardown(); err == nil {
		err = terr
	}
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
