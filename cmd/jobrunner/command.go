package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/viant/jobrunner"
	"github.com/viant/jobrunner/service/diagnostic"
)

type flags struct {
	tmpDir    string
	config    string
	logLevel  string
	traceFile string
}

var errRunFailed = errors.New("run failed")

func newCommand(capture *diagnostic.Capture, stderr io.Writer) *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:           "jobrunner --tmp-dir <dir>",
		Short:         "Run the task staged in a working directory",
		Version:       jobrunner.Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), capture, f, stderr)
		},
	}
	cmd.SetErr(stderr)
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.Flags().StringVar(&f.tmpDir, "tmp-dir", "", "working directory containing job.pickle")
	cmd.Flags().StringVar(&f.config, "config", "", "YAML configuration file")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to warn")
	cmd.Flags().StringVar(&f.traceFile, "trace-file", "", "write OpenTelemetry spans to this file")
	_ = cmd.MarkFlagRequired("tmp-dir")
	return cmd
}

func execute(ctx context.Context, capture *diagnostic.Capture, f *flags, stderr io.Writer) error {
	cfg := jobrunner.DefaultConfig()
	if f.config != "" {
		loaded, err := jobrunner.LoadConfig(ctx, f.config)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.traceFile != "" {
		cfg.Tracing.File = f.traceFile
	}
	code := jobrunner.Main(ctx, f.tmpDir,
		jobrunner.WithConfig(cfg),
		jobrunner.WithCapture(capture),
		jobrunner.WithErrorWriter(stderr),
	)
	if code != 0 {
		return errRunFailed
	}
	return nil
}

func run(capture *diagnostic.Capture, args []string) int {
	return runWith(capture, args, os.Stderr)
}

// runWith executes the command and maps the outcome to an exit status. Run
// errors are already printed by the runner.
func runWith(capture *diagnostic.Capture, args []string, stderr io.Writer) int {
	cmd := newCommand(capture, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(stderr, err)
		}
		return 1
	}
	return 0
}
