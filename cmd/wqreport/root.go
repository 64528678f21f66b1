package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/CayleighSitchon/water-quality-analysis/internal/config"
	"github.com/CayleighSitchon/water-quality-analysis/internal/files"
	"github.com/CayleighSitchon/water-quality-analysis/internal/infrastructure"
	"github.com/CayleighSitchon/water-quality-analysis/internal/operations"
	"github.com/CayleighSitchon/water-quality-analysis/internal/validation"
	"github.com/CayleighSitchon/water-quality-analysis/pkg/contracts"
)

// shutdownTimeout bounds flushing traces and metrics after a run.
const shutdownTimeout = 5 * time.Second

// cliOptions holds the persistent and per-command flags.
type cliOptions struct {
	configFile      string
	months          []string
	debug           bool
	noExport        bool
	continueOnError bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "wqreport",
		Short:         "Water-quality charts and reports from monthly lab workbooks",
		Long:          `wqreport loads one laboratory workbook per sampling month, removes standards, dilution trials and blanks, averages the element concentrations and renders heatmaps, bar charts, box plots and a PDF report.`,
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(contracts.GetFullVersionString() + "\n")

	f := root.PersistentFlags()
	f.StringVar(&opts.configFile, "config", "", "config file (default wqreport.yaml or configs/wqreport.yaml)")
	f.StringSliceVar(&opts.months, "months", nil, "comma separated month keys to process (default all)")
	f.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the whole pipeline: charts, report and exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := []string{
				operations.StepIDBars,
				operations.StepIDHeatmaps,
				operations.StepIDCombined,
				operations.StepIDReport,
			}
			if !opts.noExport {
				steps = append(steps, operations.StepIDExport)
			}
			return runPipeline(cmd, opts, steps)
		},
	}
	runCmd.Flags().BoolVar(&opts.noExport, "no-export", false, "skip the CSV and SQLite exports")
	runCmd.Flags().BoolVar(&opts.continueOnError, "continue-on-error", false, "keep running independent steps after a failure")

	root.AddCommand(
		runCmd,
		stepCmd(opts, "bars", "Render one grouped bar chart per month", operations.StepIDBars),
		stepCmd(opts, "heatmaps", "Render the top element heatmap of each month", operations.StepIDHeatmaps),
		stepCmd(opts, "combined", "Render the charts over all selected months", operations.StepIDCombined),
		stepCmd(opts, "report", "Render the monthly heatmaps and bundle them into a PDF", operations.StepIDReport),
		stepCmd(opts, "export", "Write cleaned readings and mean tables to CSV and SQLite", operations.StepIDExport),
		stepCmd(opts, "describe", "Print a summary of each cleaned month", operations.StepIDDescribe),
		versionCmd(),
	)
	return root
}

func stepCmd(opts *cliOptions, use, short, stepID string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts, []string{stepID})
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
		},
	}
}

// runPipeline wires configuration, logging and telemetry around one
// execution of the requested steps.
func runPipeline(cmd *cobra.Command, opts *cliOptions, steps []string) error {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	switch {
	case opts.debug:
		cfg.Logging.Level = "debug"
	case len(steps) == 1 && steps[0] == operations.StepIDDescribe:
		// the summary shares stdout with console logs
		cfg.Logging.Level = "warn"
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer infrastructure.CloseLogFile()

	months, err := cfg.SelectMonths(opts.months)
	if err != nil {
		return err
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return err
	}
	paths.LogPathResolution(logger)
	if err := paths.EnsureOutputDirectories(); err != nil {
		return err
	}
	if err := validation.NewFileValidator(logger).Preflight(paths, months); err != nil {
		return fmt.Errorf("preflight failed: %w", err)
	}

	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := tel.Shutdown(ctx); shutdownErr != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", shutdownErr.Error()))
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := operations.NewRegistry()
	if err := registry.Register(operations.DefaultSteps(&operations.StepOptions{
		Analysis: cfg.Analysis,
		Months:   months,
		Paths:    paths,
		Files:    files.NewManager(paths),
		Metrics:  tel.Metrics,
		Logger:   logger,
		Out:      cmd.OutOrStdout(),
	})...); err != nil {
		return err
	}

	opConfig := operations.NewConfig()
	opConfig.ContinueOnError = opts.continueOnError
	manager := operations.NewManager(registry, opConfig, operations.NewOperationTracer(tel.Tracer, tel.Metrics), logger)

	resp, err := manager.Execute(ctx, operations.OperationRequest{Steps: steps})
	if resp != nil {
		for _, path := range resp.Outputs {
			fmt.Fprintln(cmd.ErrOrStderr(), "wrote", path)
		}
	}
	return err
}
