package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/seoscan/seoscan/internal/config"
	"github.com/seoscan/seoscan/internal/crawler"
	"github.com/seoscan/seoscan/internal/database"
	"github.com/seoscan/seoscan/internal/fetcher"
	"github.com/seoscan/seoscan/internal/model"
	"github.com/seoscan/seoscan/internal/pipeline"
	"github.com/seoscan/seoscan/internal/policy"
	"github.com/seoscan/seoscan/internal/report"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url]",
		Short: "Crawl a website and score its on-page SEO",
		Long: `Scan crawls a website starting from the given URL and analyzes every
page for on-page SEO issues:
- Missing or badly sized titles and meta descriptions
- Broken heading hierarchies and missing H1s
- Images without alt text
- Thin content, keyword stuffing, and readability problems
- Slow or failing pages

Each page receives a score from 0 to 100 and the site gets an overall
score. Crawling respects robots.txt rules and Crawl-delay directives
unless --ignore-robots is given.

Examples:
  # Scan a site with default settings
  seoscan scan https://example.com

  # Scan multiple sites
  seoscan scan https://a.example.com https://b.example.com

  # Single-page scan with JSON output
  seoscan scan --depth 0 --json https://example.com

  # Write the scored report to a file
  seoscan scan -o report.json https://example.com

  # Use a custom configuration file
  seoscan scan -c myconfig.yaml https://example.com

Configuration file (.seoscan) example:
  defaults:
    depth: 3
    delay: 1s
  sites:
    example.com:
      depth: 5
      ignorePatterns:
        - "/search*"`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Target flags
	cmd.Flags().StringSliceP("url", "u", nil,
		"Seed URL to scan (may be repeated; positional arguments also work)")

	// Crawl behavior flags
	cmd.Flags().StringP("timeout", "t", "30",
		"Timeout for each HTTP request, in seconds (duration strings like 500ms also work)")
	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth,
		"Maximum crawl depth (0 scans only the seed page)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl per site")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of concurrent page fetches within one scan")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Minimum delay between requests to the same host")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header for HTTP requests")
	cmd.Flags().Bool("ignore-robots", false,
		"Skip robots.txt checks (the politeness delay still applies)")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent site scans")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .seoscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output full scan data as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", config.DefaultReportFile,
		"Report file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not save scan results to the history database")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	rawTimeout, err := cmd.Flags().GetString("timeout")
	if err != nil {
		return nil, err
	}
	cfg.Timeout, err = parseTimeout(rawTimeout)
	if err != nil {
		return nil, err
	}

	cfg.CrawlDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.IgnoreRobots, err = cmd.Flags().GetBool("ignore-robots")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// --json and --markdown print to stdout unless the user asked for a
	// file explicitly; the default report file is for the default format.
	if (cfg.JSONReport || cfg.MarkdownReport) && !cmd.Flags().Changed("output") {
		cfg.ReportFile = ""
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}

	// Save to the XDG data directory unless disabled
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()

	// Seed URLs come from positional arguments and the --url flag
	urls, err := cmd.Flags().GetStringSlice("url")
	if err != nil {
		return nil, err
	}
	cfg.Targets = append(append([]string{}, args...), urls...)

	return cfg, nil
}

// parseTimeout parses the --timeout flag value. A bare integer is a number
// of seconds; anything else is parsed as a Go duration string.
func parseTimeout(raw string) (time.Duration, error) {
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: use seconds (30) or a duration (30s)", raw)
	}
	return d, nil
}

// setupLogger creates a structured logger based on verbosity setting.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(handler)
}

// normalizeSeed validates a seed URL and brings it into canonical form.
// A bare hostname gets an https scheme so "example.com" works as a target.
func normalizeSeed(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	if u.Scheme == "" {
		u, err = url.Parse("https://" + raw)
		if err != nil {
			return "", err
		}
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q (only http and https)", u.Scheme)
	}
	if u.Host == "" {
		return "", errors.New("missing host")
	}

	return model.NormalizeURL(u.String()), nil
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return errors.New("no sites provided (specify one or more URLs as arguments)")
	}

	logger.Info("starting scan",
		"targets", cfg.Targets,
		"depth", cfg.CrawlDepth,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.ScanDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Validate and normalize all seed URLs
	for i, target := range cfg.Targets {
		normalized, err := normalizeSeed(target)
		if err != nil {
			return fmt.Errorf("invalid URL %q: %w", target, err)
		}
		cfg.Targets[i] = normalized
	}

	// Use batch processor for parallel scanning if multiple targets
	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchScan(ctx, cfg, db, logger)
	}

	// Single target or sequential scanning
	return runSequentialScan(ctx, cfg, db, logger)
}

// runSequentialScan scans targets one at a time. A target whose scan fails
// does not stop the remaining targets, but if every scan fails the command
// exits non-zero.
func runSequentialScan(ctx context.Context, cfg *config.Config, db *database.ScanDB, logger *slog.Logger) error {
	var failed int
	for _, target := range cfg.Targets {
		// A cancelled scan is still a successful run: whatever was
		// collected so far has been reported, so exit zero.
		select {
		case <-ctx.Done():
			logger.Warn("cancelled, skipping remaining targets", "reason", ctx.Err())
			return nil
		default:
		}

		// Get site-specific configuration
		siteConfig := getSiteConfig(cfg, target)

		// Create pipeline with site-specific options
		p := createPipelineForTarget(logger, cfg, siteConfig)

		depth := cfg.CrawlDepth
		if siteConfig.Depth > 0 {
			depth = siteConfig.Depth
		}
		scanReport := model.NewScanReport(target, depth)

		fmt.Printf("Scanning %s...\n", target)
		startTime := time.Now()

		// Execute the pipeline
		if err := p.Execute(ctx, scanReport); err != nil {
			logger.Error("scan failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Scan error for %s: %v\n", target, err)
			failed++
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Scan completed in %s\n\n", elapsed.Round(time.Millisecond))

		// Generate and output report
		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}

		// Save to database if enabled
		if err := saveScanReport(ctx, db, scanReport, logger); err != nil {
			logger.Error("failed to save scan report", "target", target, "error", err)
		}
	}

	if failed == len(cfg.Targets) {
		return fmt.Errorf("all %d scans failed", failed)
	}
	return nil
}

// runBatchScan scans multiple targets concurrently using BatchProcessor.
func runBatchScan(ctx context.Context, cfg *config.Config, db *database.ScanDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch scan of %d sites (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)

	startTime := time.Now()

	// Warn user about batch processing limitation
	if cfg.SiteConfigs != nil && len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("batch processing uses default site config only; site-specific configs (depth, delay, patterns) are ignored",
			"siteCount", len(cfg.SiteConfigs.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Site-specific configurations are ignored in batch mode. Use sequential mode (--batch 1) to apply per-site settings.\n\n")
	}

	// Create batch processor with pipeline factory
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			// Note: For batch processing, we use default site config
			// Site-specific configs would require per-target pipeline creation
			var siteConfig config.SiteConfig
			if cfg.SiteConfigs != nil {
				siteConfig = cfg.SiteConfigs.Defaults
			}
			return createPipelineForTarget(logger, cfg, siteConfig)
		},
		pipeline.WithBatchConcurrency(cfg.BatchSize),
		pipeline.WithBatchMaxDepth(cfg.CrawlDepth),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(scanReport *model.ScanReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Scan completed: %s\n", index+1, len(cfg.Targets), scanReport.SeedURL)

		// Generate and output report
		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "target", scanReport.SeedURL, "error", err)
		}

		// Save to database if enabled
		if err := saveScanReport(ctx, db, scanReport, logger); err != nil {
			logger.Error("failed to save scan report", "target", scanReport.SeedURL, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch scan completed in %s\n", elapsed.Round(time.Millisecond))

	// Seeds that never started report context.Canceled; the ones that did
	// finish have already been reported, so the run still counts as success.
	if errors.Is(err, context.Canceled) {
		logger.Warn("batch scan cancelled, remaining seeds skipped")
		return nil
	}
	return err
}

// getSiteConfig returns the site-specific configuration for a target URL.
// Falls back to defaults if no site-specific config exists. Sites are keyed
// by hostname in the config file, so the target URL's host is what we match.
func getSiteConfig(cfg *config.Config, target string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}

	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return cfg.SiteConfigs.Defaults
	}

	if _, ok := cfg.SiteConfigs.Sites[u.Host]; ok {
		return cfg.SiteConfigs.GetSiteConfig(u.Host)
	}

	// www.example.com and example.com share a config entry
	host := model.RegistrableHost(u.Host)
	if _, ok := cfg.SiteConfigs.Sites[host]; ok {
		return cfg.SiteConfigs.GetSiteConfig(host)
	}

	return cfg.SiteConfigs.Defaults
}

// createPipelineForTarget creates a crawl+score pipeline with the given
// configuration. Site-specific settings override the global ones.
func createPipelineForTarget(logger *slog.Logger, cfg *config.Config, siteConfig config.SiteConfig) *pipeline.Pipeline {
	userAgent := cfg.UserAgent
	if siteConfig.UserAgent != "" {
		userAgent = siteConfig.UserAgent
	}

	delay := cfg.CrawlDelay
	if siteConfig.Delay > 0 {
		delay = siteConfig.Delay
	}

	depth := cfg.CrawlDepth
	if siteConfig.Depth > 0 {
		depth = siteConfig.Depth
	}

	f := fetcher.New(userAgent, cfg.Timeout, cfg.MaxBodySize)
	gate := policy.NewGate(nil, userAgent, delay, cfg.IgnoreRobots, logger)

	crawlOpts := []crawler.Option{
		crawler.WithMaxDepth(depth),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithConcurrency(cfg.Concurrency),
		crawler.WithLogger(logger),
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		crawlOpts = append(crawlOpts, crawler.WithIgnorePatterns(siteConfig.IgnorePatterns))
	}
	if len(siteConfig.FollowPatterns) > 0 {
		crawlOpts = append(crawlOpts, crawler.WithFollowPatterns(siteConfig.FollowPatterns))
	}

	c := crawler.New(f, gate, crawlOpts...)

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewCrawlStep(c),
		pipeline.NewScoreStep(),
	)
	return p
}

// openReportFile opens (or creates) the report file, creating parent
// directories as needed.
func openReportFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// outputReport outputs the scan report in the requested format.
//
// Format selection: --json prints the full scan data (pages plus scores)
// and --markdown prints a Markdown report, to stdout or to the --output
// file when one was given. The default format prints the human-readable
// text summary to stdout and writes the scored JSON report to the report
// file, seo_report.json unless --output says otherwise.
func outputReport(cfg *config.Config, scanReport *model.ScanReport) error {
	if cfg.JSONReport || cfg.MarkdownReport {
		output := os.Stdout
		if cfg.ReportFile != "" {
			f, err := openReportFile(cfg.ReportFile)
			if err != nil {
				return err
			}
			defer f.Close()
			output = f
		}

		if cfg.JSONReport {
			writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
			_, err := writer.Write(scanReport)
			return err
		}
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(scanReport)
		return err
	}

	// Human-readable summary on stdout
	if _, err := report.NewSimpleWriter(os.Stdout).Write(scanReport); err != nil {
		return err
	}

	if cfg.ReportFile == "" {
		return nil
	}

	f, err := openReportFile(cfg.ReportFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := report.NewJSONWriter(f, report.WithPrettyPrint()).Write(scanReport); err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", cfg.ReportFile)
	return nil
}

// saveScanReport saves the scan report to the database if enabled.
// If db is nil, this function is a no-op.
func saveScanReport(ctx context.Context, db *database.ScanDB, scanReport *model.ScanReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	// Detached from ctx so a truncated scan still persists after cancellation.
	if err := db.SaveScanReport(context.WithoutCancel(ctx), scanReport); err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	logger.Info("scan report saved to database", "target", scanReport.SeedURL)
	return nil
}
