package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/spielplan/internal/config"
	"github.com/pfrederiksen/spielplan/internal/fetch"
	"github.com/pfrederiksen/spielplan/internal/logger"
	"github.com/pfrederiksen/spielplan/internal/pipeline"
	"github.com/pfrederiksen/spielplan/internal/schedule"
	"github.com/pfrederiksen/spielplan/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitChanges = 2
)

// options holds the parsed flags
type options struct {
	configPath  string
	dataDir     string
	format      string
	output      string
	sqlitePath  string
	dropUndated bool
	team        string
	changes     bool
	snapshotDir string
	verbose     bool
	logLevel    string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}
	var exitCode int

	cmd := &cobra.Command{
		Use:   "spielplan",
		Short: "Build the club's match schedule from league exports",
		Long: `A CLI tool that merges the league schedule exports of all club teams.
Rows mentioning the club are kept, team names are replaced by team codes,
and the result is written sorted by kickoff.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := run(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			exitCode = code
			return err
		},
	}
	cmd.PostRun = func(*cobra.Command, []string) {
		if exitCode != ExitSuccess {
			os.Exit(exitCode)
		}
	}

	// Define flags
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Configuration file (YAML or JSON) merged over the defaults")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "Directory holding the league exports")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text, json or csv")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write output to this file instead of stdout")
	cmd.Flags().StringVar(&opts.sqlitePath, "sqlite", "", "Also export the run to this SQLite database")
	cmd.Flags().BoolVar(&opts.dropUndated, "drop-undated", false, "Drop rows whose date cannot be parsed")
	cmd.Flags().StringVar(&opts.team, "team", "", "Only output rows of this team code")
	cmd.Flags().BoolVar(&opts.changes, "changes", false, "Report changes since the previous run")
	cmd.Flags().StringVar(&opts.snapshotDir, "snapshot-dir", storage.DefaultDataDir, "Directory for the snapshot used by --changes")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")

	return cmd
}

// run is the main command logic. It returns the process exit code.
func run(ctx context.Context, opts *options, stdout, stderr io.Writer) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// Validate format
	format := OutputFormat(strings.ToLower(opts.format))
	if format != FormatText && format != FormatJSON && format != FormatCSV {
		return ExitError, fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'csv')", opts.format)
	}

	level, err := logger.ParseLevel(opts.logLevel)
	if err != nil {
		return ExitError, err
	}
	if opts.verbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, stderr))

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return ExitError, fmt.Errorf("loading config: %w", err)
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	if opts.dropUndated {
		cfg.DropUndated = true
	}
	if opts.team != "" {
		if _, ok := cfg.Team(opts.team); !ok {
			return ExitError, fmt.Errorf("unknown team code: %s", opts.team)
		}
	}

	logger.Debug("Configuration loaded", logger.Fields{
		"config":   opts.configPath,
		"data_dir": cfg.DataDir,
		"sources":  len(cfg.Sources),
	})

	runner := &pipeline.Runner{
		Config:  cfg,
		Fetcher: fetch.New(cfg.Fetch),
		Metrics: logger.DefaultMetrics(),
	}
	result, err := runner.Run(ctx)
	if err != nil && !errors.Is(err, pipeline.ErrNoData) {
		return ExitError, err
	}
	if errors.Is(err, pipeline.ErrNoData) {
		logger.Warn("No schedule rows found", logger.Fields{"sources": len(cfg.Sources)})
	}

	out := &OutputResult{
		GeneratedAt: result.Generated.UTC(),
		Rows:        result.Rows,
		Teams:       result.Teams,
		Reports:     result.Reports,
	}
	if opts.team != "" {
		out.Rows = rowsForTeam(out.Rows, opts.team)
	}
	out.RowCount = len(out.Rows)

	if opts.changes && len(result.Rows) == 0 {
		logger.Warn("Snapshot left unchanged, run produced no rows", logger.Fields{"dir": opts.snapshotDir})
	} else if opts.changes {
		store, err := storage.New(opts.snapshotDir)
		if err != nil {
			return ExitError, fmt.Errorf("initializing storage: %w", err)
		}
		previous, err := store.LoadSnapshot()
		if err != nil {
			return ExitError, fmt.Errorf("loading snapshot: %w", err)
		}
		out.Changes = schedule.Diff(previous, result.Rows)
		if err := store.SaveRows(result.Rows); err != nil {
			return ExitError, fmt.Errorf("saving snapshot: %w", err)
		}
		logger.Debug("Snapshot saved", logger.Fields{"dir": store.Dir(), "changes": len(out.Changes)})
	}

	if opts.sqlitePath != "" {
		runID, err := storage.ExportSQLite(opts.sqlitePath, result)
		if err != nil {
			return ExitError, fmt.Errorf("exporting to sqlite: %w", err)
		}
		logger.Info("Run exported", logger.Fields{"database": opts.sqlitePath, "run_id": runID})
	}

	w := stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return ExitError, fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close() // nolint:errcheck
		w = f
	}

	// Write output
	if err := WriteOutput(w, out, format, opts.verbose); err != nil {
		return ExitError, fmt.Errorf("writing output: %w", err)
	}

	snap := runner.Metrics.GetSnapshot()
	logger.Info("Run complete", logger.Fields{
		"rows":            out.RowCount,
		"rows_loaded":     snap.Counters[pipeline.MetricRowsLoaded],
		"rows_skipped":    snap.Counters[pipeline.MetricRowsSkipped],
		"sources_skipped": snap.Counters[pipeline.MetricSourcesSkipped],
	})

	if opts.changes && len(out.Changes) > 0 {
		return ExitChanges, nil
	}
	return ExitSuccess, nil
}

func rowsForTeam(rows []*schedule.Row, team string) []*schedule.Row {
	filtered := make([]*schedule.Row, 0, len(rows))
	for _, row := range rows {
		for _, code := range strings.Split(row.TeamCode, "/") {
			if strings.EqualFold(code, team) {
				filtered = append(filtered, row)
				break
			}
		}
	}
	return filtered
}

// Execute runs the CLI
func Execute(version string) {
	cmd := NewRootCmd()
	cmd.Version = version
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
