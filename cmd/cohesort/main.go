// cohesort orders a file tree so byte-similar files land adjacent in
// the output, for feeding a solid-compression archiver.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/cohesort/cohesort/internal/config"
	"github.com/cohesort/cohesort/internal/diagnostics"
	"github.com/cohesort/cohesort/internal/errs"
	"github.com/cohesort/cohesort/internal/memory"
	"github.com/cohesort/cohesort/internal/orchestrator"
	"github.com/cohesort/cohesort/internal/parallel"
	"github.com/cohesort/cohesort/internal/report"
	"github.com/cohesort/cohesort/internal/ui"
	"github.com/cohesort/cohesort/internal/walk"
	"github.com/cohesort/cohesort/internal/web"
	"github.com/cohesort/cohesort/pkg/types"
)

var (
	version = "0.1.0"

	// CLI flags
	algorithmFlag string
	configFile    string
	reportFile    string
	reportFormat  string
	workers       int
	seed          int64
	readsPerSec   int
	memoryBudget  int64
	verbose       bool
	quiet         bool
	jsonLogs      bool
	tuiMode       bool
	diagnose      bool
	serveAddr     string
	servePort     string
	queryPath     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cohesort <directory>",
		Short: "cohesort - similarity ordering for solid compression",
		Long: `cohesort fingerprints every file under a directory, derives a
pairwise similarity distance, and emits the files reordered so similar
content sits together: one path per line on stdout, ready to feed a
solid-compression archiver.`,
		Args:          cobra.ExactArgs(1),
		RunE:          runOrder,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().StringVarP(&algorithmFlag, "algorithm", "a", "tsp", "Ordering algorithm: tsp, only-extensions, byte-distributions, binsort-original")
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file (YAML)")
	rootCmd.Flags().StringVarP(&reportFile, "report", "o", "", "Write a run report to this path")
	rootCmd.Flags().StringVar(&reportFormat, "report-format", "json", "Report format: json, html, markdown")
	rootCmd.Flags().IntVarP(&workers, "workers", "t", 0, "Sketching worker count (0 = number of CPUs)")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed for binsort-original")
	rootCmd.Flags().IntVarP(&readsPerSec, "rate", "r", 0, "Max file opens per second (0 = unlimited)")
	rootCmd.Flags().Int64Var(&memoryBudget, "memory-budget", 0, "Heap budget in bytes for the distance matrix (0 = unchecked)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Log errors only")
	rootCmd.Flags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON")
	rootCmd.Flags().BoolVar(&tuiMode, "tui", false, "Show a live progress display on stderr")
	rootCmd.Flags().BoolVar(&diagnose, "diagnose", false, "Attach an adjacency cross-check to the report")
	rootCmd.Flags().StringVar(&serveAddr, "serve", "", "Serve live progress and the final report at this address (e.g. :9090) until interrupted")
	// Both would race to drain the same progress queue.
	rootCmd.MarkFlagsMutuallyExclusive("tui", "serve")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cohesort version %s\n", version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a previously written JSON report over HTTP",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVarP(&reportFile, "report", "o", "", "Path to a JSON report written by a previous run")
	serveCmd.Flags().StringVarP(&servePort, "port", "p", ":9090", "Listen address")
	serveCmd.MarkFlagRequired("report")
	rootCmd.AddCommand(serveCmd)

	queryCmd := &cobra.Command{
		Use:   "report <report.json>",
		Short: "Query a JSON report",
		Args:  cobra.ExactArgs(1),
		RunE:  runQuery,
	}
	queryCmd.Flags().StringVar(&queryPath, "query", "", "gjson path, e.g. buckets.#.distribution")
	queryCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(queryCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(errs.ExitCode(err))
	}
}

// loadConfig builds the effective configuration: file values (when
// given) overridden by any flag the user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		cfg, err = config.Load(data)
		if err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("algorithm") {
		cfg.Engine.Algorithm = algorithmFlag
	}
	if flags.Changed("workers") {
		cfg.Engine.Workers = workers
	}
	if flags.Changed("seed") {
		cfg.Engine.Seed = seed
	}
	if flags.Changed("rate") {
		cfg.Engine.MaxReadsPerSecond = readsPerSec
	}
	if flags.Changed("memory-budget") {
		cfg.Engine.MemoryBudget = memoryBudget
	}
	if flags.Changed("report") {
		cfg.Output.ReportFile = reportFile
	}
	if flags.Changed("report-format") {
		cfg.Output.ReportFormat = reportFormat
	}
	if flags.Changed("verbose") {
		cfg.Output.Verbose = verbose
	}
	if flags.Changed("quiet") {
		cfg.Output.QuietMode = quiet
	}
	if flags.Changed("tui") {
		cfg.Output.EnableTUI = tuiMode
	}
	if flags.Changed("diagnose") {
		cfg.Output.Diagnose = diagnose
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, runID string) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	if cfg.Output.QuietMode {
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if jsonLogs {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler).With("run_id", runID)
}

func runOrder(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	algorithm, ok := types.ParseAlgorithm(cfg.Engine.Algorithm)
	if !ok {
		return fmt.Errorf("unknown algorithm %q", cfg.Engine.Algorithm)
	}

	runID := uuid.NewString()
	log := newLogger(cfg, runID)

	root := args[0]
	targets, err := walk.Walk(root)
	if err != nil {
		log.Error("walk failed", "path", root, "err", err)
		return err
	}
	log.Debug("walk complete", "targets", len(targets))

	pool, err := parallel.NewPool(cfg.Engine.Workers)
	if err != nil {
		return err
	}
	defer pool.Release()

	progress := &orchestrator.Progress{
		Events:    parallel.NewLockFreeQueue(),
		Completed: parallel.NewAtomicCounter(0),
		Total:     len(targets),
	}

	opts := orchestrator.Options{
		Algorithm:    algorithm,
		Pool:         pool,
		Progress:     progress,
		Log:          log,
		MemoryBudget: cfg.Engine.MemoryBudget,
		Seed:         cfg.Engine.Seed,
		Buffers:      memory.NewBufferPool(cfg.Engine.ReadBufSize),
	}
	if cfg.Engine.MaxReadsPerSecond > 0 {
		opts.ReadLimiter = rate.NewLimiter(rate.Limit(cfg.Engine.MaxReadsPerSecond), 1)
	}

	var server *web.Server
	var watchDone chan struct{}
	if serveAddr != "" {
		server = web.NewServer()
		watchDone = make(chan struct{})
		go func() {
			if err := server.Start(serveAddr); err != nil {
				log.Error("report server failed", "err", err)
			}
		}()
		go server.Watch(progress, watchDone)
	}

	result, err := runWithOptionalTUI(cfg, root, algorithm, targets, opts, progress)
	if err != nil {
		return err
	}
	if watchDone != nil {
		close(watchDone)
	}

	cwd, err := walk.Cwd()
	if err != nil {
		return err
	}
	paths, err := walk.RelativizeAll(result.Ordered, cwd)
	if err != nil {
		log.Error("cannot relativize output", "err", err)
		return err
	}
	for _, p := range paths {
		fmt.Println(p)
	}

	r := buildReport(cfg, runID, root, algorithm, result, paths)

	if cfg.Output.ReportFile != "" {
		if err := writeReportFile(cfg, r, log); err != nil {
			// The ordering has already been emitted; a report failure
			// should not change the exit code contract.
			log.Error("report generation failed", "err", err)
		}
	}

	if server != nil {
		server.SetReport(r)
		log.Info("serving report until interrupted", "addr", serveAddr)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		return server.Stop()
	}

	return nil
}

// runWithOptionalTUI drives the orchestrator, with a live bubbletea
// display on stderr when enabled. Stdout is reserved for the ordering
// itself in both modes.
func runWithOptionalTUI(cfg *config.Config, root string, algorithm types.Algorithm, targets []types.Target, opts orchestrator.Options, progress *orchestrator.Progress) (*orchestrator.Result, error) {
	if !cfg.Output.EnableTUI {
		return orchestrator.Order(targets, opts)
	}

	monitor := ui.NewMonitor(root, algorithm.String(), progress)
	program := tea.NewProgram(monitor, tea.WithOutput(os.Stderr))

	var result *orchestrator.Result
	var orderErr error
	go func() {
		result, orderErr = orchestrator.Order(targets, opts)
		program.Send(ui.DoneMsg{Err: orderErr})
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		return nil, err
	}
	return result, orderErr
}

func buildReport(cfg *config.Config, runID, root string, algorithm types.Algorithm, result *orchestrator.Result, paths []string) *report.Report {
	r := report.NewReport(runID, root, algorithm.String())
	for _, b := range result.Buckets {
		r.AddBucket(report.BucketSummary{
			Distribution:     b.Distribution,
			Count:            b.Count,
			SubBatches:       b.SubBatches,
			TourLengthBefore: b.TourBefore,
			TourLengthAfter:  b.TourAfter,
		})
	}
	r.TotalTargets += len(result.Unhashed)
	r.Unhashed = len(result.Unhashed)
	r.Timings = report.PhaseTimings{
		Sketch:   result.Timings.Sketch,
		Distance: result.Timings.Distance,
		Optimize: result.Timings.Optimize,
	}

	if cfg.Output.Diagnose {
		r.Adjacency = diagnostics.SampleAdjacent(paths, 64)
	}
	return r
}

func writeReportFile(cfg *config.Config, r *report.Report, log *slog.Logger) error {
	manager := report.NewManager("")
	gen, ok := manager.GetGenerator(cfg.Output.ReportFormat)
	if !ok {
		return fmt.Errorf("unknown report format %q", cfg.Output.ReportFormat)
	}

	f, err := os.Create(cfg.Output.ReportFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gen.Generate(r, f); err != nil {
		return err
	}
	log.Info("report written", "path", cfg.Output.ReportFile, "format", cfg.Output.ReportFormat)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(reportFile)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}
	var r report.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("parse report: %w", err)
	}

	server := web.NewServer()
	server.SetReport(&r)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(servePort)
	}()

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		return server.Stop()
	}
}

func runQuery(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	result := gjson.GetBytes(data, queryPath)
	if !result.Exists() {
		return fmt.Errorf("no value at %q", queryPath)
	}
	fmt.Println(result.String())
	return nil
}
