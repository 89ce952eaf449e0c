package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alvmarrod/triangle-weaver/internal/config"
	"github.com/alvmarrod/triangle-weaver/internal/crawler"
	"github.com/alvmarrod/triangle-weaver/internal/graph"
	"github.com/alvmarrod/triangle-weaver/internal/metrics"
	"github.com/alvmarrod/triangle-weaver/internal/report"
	"github.com/alvmarrod/triangle-weaver/internal/storage"
	"github.com/alvmarrod/triangle-weaver/internal/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// progressInterval is how often crawl metrics are logged
var progressInterval = 10 * time.Second

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "triangle-weaver [seed-url...]",
		Short: "Crawl pages breadth-first and report triangular link patterns",
		Long: `triangle-weaver crawls the given seed pages breadth-first up to a page budget,
builds the directed graph of page-to-page links and reports every 3-cycle
(A → B → C → A) found in it.

Seeds given as arguments replace the seeds from the configuration file.`,
		Version:       version.String(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			return runCrawl(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	cmd.PersistentFlags().StringP("config", "c", "", "path to a JSON or YAML config file")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	flags.Int("max-pages", 0, "page budget (overrides config)")
	flags.Int("workers", 0, "number of concurrent fetch workers (overrides config)")
	flags.Duration("timeout", 0, "per-request timeout, e.g. 5s (overrides config)")
	flags.String("user-agent", "", "User-Agent header (overrides config)")
	flags.StringP("format", "f", "", "report format: text, markdown or json (overrides config)")
	flags.String("metrics", "", "write crawl metrics as JSON to this file (overrides config)")
	flags.String("history-db", "", "record the run in this sqlite database (overrides config)")

	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newVersionCmd())

	cmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	}

	return cmd
}

// loadConfig resolves the config file and applies command-line overrides
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, used, err := config.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if used != "" {
		logrus.Infof("Configuration loaded from %s", used)
	}

	flags := cmd.Flags()
	if len(args) > 0 {
		cfg.Seeds = args
	}
	if flags.Changed("max-pages") {
		cfg.MaxPages, _ = flags.GetInt("max-pages")
	}
	if flags.Changed("workers") {
		cfg.ConcurrentWorkers, _ = flags.GetInt("workers")
	}
	if flags.Changed("timeout") {
		timeout, _ := flags.GetDuration("timeout")
		cfg.RequestTimeoutMs = int(timeout.Milliseconds())
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent, _ = flags.GetString("user-agent")
	}
	if flags.Changed("format") {
		cfg.ReportFormat, _ = flags.GetString("format")
	}
	if flags.Changed("metrics") {
		cfg.MetricsPath, _ = flags.GetString("metrics")
	}
	if flags.Changed("history-db") {
		cfg.HistoryDBPath, _ = flags.GetString("history-db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// runCrawl crawls, finds triangles, prints the report and records the run
func runCrawl(ctx context.Context, cfg *config.Config, out io.Writer) error {
	writer, err := report.New(cfg.ReportFormat, out)
	if err != nil {
		return err
	}

	var store *storage.Storage
	if cfg.HistoryDBPath != "" {
		store, err = storage.NewStorage(cfg.HistoryDBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize history database: %w", err)
		}
		defer store.Close()
		logrus.Infof("History database initialized: %s", cfg.HistoryDBPath)
	}

	logrus.Infof("Triangle Weaver %s starting: seeds=%v, max_pages=%d, workers=%d",
		version.String(), cfg.Seeds, cfg.MaxPages, cfg.ConcurrentWorkers)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker := metrics.NewTracker()
	extractor := crawler.NewExtractor(cfg, tracker)
	c := crawler.NewCrawler(cfg, extractor, tracker)

	stopProgress := make(chan struct{})
	go func() {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logrus.Info(tracker.LogProgress())
			case <-stopProgress:
				return
			}
		}
	}()

	g, crawlErr := c.Crawl(ctx, cfg.Seeds)
	close(stopProgress)
	if crawlErr != nil && !errors.Is(crawlErr, context.Canceled) && !errors.Is(crawlErr, context.DeadlineExceeded) {
		return fmt.Errorf("crawl failed: %w", crawlErr)
	}

	logrus.Info("Searching for triangular references...")
	snap := g.Snapshot()
	triangles := graph.FindTriangles(snap)
	tracker.SetTrianglesFound(len(triangles))

	if err := writer.Write(report.NewSummary(snap, triangles)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	final := tracker.Finish(terminationReason(crawlErr, len(snap), cfg.MaxPages))
	logrus.Info("Final stats: " + tracker.LogProgress())

	if cfg.MetricsPath != "" {
		if err := tracker.WriteToFile(cfg.MetricsPath); err != nil {
			logrus.Errorf("Failed to write metrics: %v", err)
		} else {
			logrus.Infof("Metrics written to %s", cfg.MetricsPath)
		}
	}

	if store != nil {
		runID, err := store.RecordRun(storage.Run{
			Seeds:             cfg.Seeds,
			MaxPages:          cfg.MaxPages,
			StartedAt:         final.StartTime,
			EndedAt:           final.EndTime,
			PagesCrawled:      len(snap),
			LinksRecorded:     final.LinksRecorded,
			PagesFailed:       final.PagesFailed,
			TrianglesFound:    len(triangles),
			TerminationReason: final.TerminationReason,
		})
		if err != nil {
			logrus.Errorf("Failed to record run: %v", err)
		} else {
			logrus.Infof("Run recorded as %s", runID)
		}
	}

	return nil
}

// terminationReason names why the crawl stopped
func terminationReason(crawlErr error, pages, budget int) string {
	switch {
	case crawlErr != nil:
		return "cancelled"
	case pages >= budget:
		return "budget_exhausted"
	default:
		return "frontier_exhausted"
	}
}
