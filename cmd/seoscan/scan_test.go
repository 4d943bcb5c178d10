package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/seoscan/seoscan/internal/config"
	"github.com/seoscan/seoscan/internal/database"
	"github.com/seoscan/seoscan/internal/model"
)

// TestNewScanCmd tests the scan command creation.
func TestNewScanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScanCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "scan [url]" {
			t.Errorf("expected use 'scan [url]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has url flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("url")
		if flag == nil {
			t.Fatal("expected url flag")
		}
		if flag.Shorthand != "u" {
			t.Errorf("expected shorthand 'u', got %q", flag.Shorthand)
		}
	})

	t.Run("has timeout flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("timeout")
		if flag == nil {
			t.Fatal("expected timeout flag")
		}
		if flag.Shorthand != "t" {
			t.Errorf("expected shorthand 't', got %q", flag.Shorthand)
		}
		if flag.DefValue != "30" {
			t.Errorf("expected default '30', got %q", flag.DefValue)
		}
	})

	t.Run("has depth flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("depth")
		if flag == nil {
			t.Fatal("expected depth flag")
		}
		if flag.Shorthand != "d" {
			t.Errorf("expected shorthand 'd', got %q", flag.Shorthand)
		}
	})

	t.Run("has max-pages flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("max-pages")
		if flag == nil {
			t.Fatal("expected max-pages flag")
		}
		if flag.Shorthand != "p" {
			t.Errorf("expected shorthand 'p', got %q", flag.Shorthand)
		}
	})

	t.Run("has concurrency flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("concurrency")
		if flag == nil {
			t.Fatal("expected concurrency flag")
		}
		if flag.Shorthand != "n" {
			t.Errorf("expected shorthand 'n', got %q", flag.Shorthand)
		}
	})

	t.Run("has delay flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("delay") == nil {
			t.Fatal("expected delay flag")
		}
	})

	t.Run("has user-agent flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("user-agent") == nil {
			t.Fatal("expected user-agent flag")
		}
	})

	t.Run("has ignore-robots flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("ignore-robots")
		if flag == nil {
			t.Fatal("expected ignore-robots flag")
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("has batch flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("batch")
		if flag == nil {
			t.Fatal("expected batch flag")
		}
		if flag.Shorthand != "b" {
			t.Errorf("expected shorthand 'b', got %q", flag.Shorthand)
		}
	})

	t.Run("has config flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("config")
		if flag == nil {
			t.Fatal("expected config flag")
		}
		if flag.Shorthand != "c" {
			t.Errorf("expected shorthand 'c', got %q", flag.Shorthand)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})

	t.Run("has output flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.Shorthand != "o" {
			t.Errorf("expected shorthand 'o', got %q", flag.Shorthand)
		}
		if flag.DefValue != config.DefaultReportFile {
			t.Errorf("expected default %q, got %q", config.DefaultReportFile, flag.DefValue)
		}
	})

	t.Run("has no-save flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("no-save")
		if flag == nil {
			t.Fatal("expected no-save flag")
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("does not have db-dir flag (uses XDG)", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("db-dir")
		if flag != nil {
			t.Error("db-dir flag should not exist (always uses XDG data directory)")
		}
	})
}

// TestSetupLogger tests the logger setup.
func TestSetupLogger(t *testing.T) {
	t.Parallel()

	t.Run("creates logger for verbose mode", func(t *testing.T) {
		t.Parallel()
		logger := setupLogger(true)
		if logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("creates logger for non-verbose mode", func(t *testing.T) {
		t.Parallel()
		logger := setupLogger(false)
		if logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestGetVerboseFlag tests the verbose flag retrieval.
func TestGetVerboseFlag(t *testing.T) {
	t.Run("returns false when flag not set", func(t *testing.T) {
		cmd := NewScanCmd()
		result := getVerboseFlag(cmd)
		if result {
			t.Error("expected false when flag not set")
		}
	})

	t.Run("returns value from parent verbose flag", func(t *testing.T) {
		root := NewRootCmd()
		// Set verbose flag to true
		_ = root.PersistentFlags().Set("verbose", "true")

		// Get scan subcommand
		scanCmd, _, err := root.Find([]string{"scan"})
		if err != nil {
			t.Fatalf("failed to find scan command: %v", err)
		}

		result := getVerboseFlag(scanCmd)
		if !result {
			t.Error("expected true from parent verbose flag")
		}
	})
}

// TestNormalizeSeed tests seed URL validation and normalization.
func TestNormalizeSeed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain https URL", "https://example.com", "https://example.com/", false},
		{"plain http URL", "http://example.com/about/", "http://example.com/about", false},
		{"bare hostname gets https", "example.com", "https://example.com/", false},
		{"hostname with path", "example.com/blog", "https://example.com/blog", false},
		{"uppercase host is lowered", "https://EXAMPLE.com", "https://example.com/", false},
		{"fragment is stripped", "https://example.com/page#section", "https://example.com/page", false},
		{"ftp scheme rejected", "ftp://example.com", "", true},
		{"missing host rejected", "https://", "", true},
		{"control character rejected", "http://\x7f", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := normalizeSeed(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("normalizeSeed(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalizeSeed(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("normalizeSeed(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestBuildConfig tests configuration building from flags.
func TestBuildConfig(t *testing.T) {
	t.Run("builds config with default values", func(t *testing.T) {
		cmd := NewScanCmd()
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg == nil {
			t.Fatal("expected non-nil config")
		}
		if len(cfg.Targets) != 1 || cfg.Targets[0] != "https://example.com" {
			t.Errorf("expected targets [https://example.com], got %v", cfg.Targets)
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true by default")
		}
		if cfg.IgnoreRobots {
			t.Error("expected IgnoreRobots to be false by default")
		}
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected default timeout 30s, got %v", cfg.Timeout)
		}
		if cfg.ReportFile != config.DefaultReportFile {
			t.Errorf("expected default report file %q, got %q", config.DefaultReportFile, cfg.ReportFile)
		}
	})

	t.Run("timeout accepts plain seconds", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("timeout", "45")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Timeout != 45*time.Second {
			t.Errorf("expected timeout 45s, got %v", cfg.Timeout)
		}
	})

	t.Run("timeout accepts duration strings", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("timeout", "500ms")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Timeout != 500*time.Millisecond {
			t.Errorf("expected timeout 500ms, got %v", cfg.Timeout)
		}
	})

	t.Run("rejects malformed timeout", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("timeout", "soon")
		_, err := buildConfig(cmd, []string{"https://example.com"})
		if err == nil {
			t.Fatal("expected error for malformed timeout")
		}
	})

	t.Run("builds config with custom depth", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("depth", "5")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.CrawlDepth != 5 {
			t.Errorf("expected CrawlDepth 5, got %d", cfg.CrawlDepth)
		}
	})

	t.Run("builds config with custom batch size", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("batch", "5")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.BatchSize != 5 {
			t.Errorf("expected BatchSize 5, got %d", cfg.BatchSize)
		}
	})

	t.Run("builds config with JSON flag", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("json", "true")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.JSONReport {
			t.Error("expected JSONReport to be true")
		}
	})

	t.Run("no-save disables database", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("no-save", "true")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.SaveToDB {
			t.Error("expected SaveToDB to be false with --no-save")
		}
	})

	t.Run("merges url flag with positional arguments", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("url", "https://b.example.com")
		cfg, err := buildConfig(cmd, []string{"https://a.example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Targets) != 2 {
			t.Fatalf("expected 2 targets, got %v", cfg.Targets)
		}
		if cfg.Targets[0] != "https://a.example.com" || cfg.Targets[1] != "https://b.example.com" {
			t.Errorf("unexpected targets %v", cfg.Targets)
		}
	})

	t.Run("builds config with multiple targets", func(t *testing.T) {
		cmd := NewScanCmd()
		cfg, err := buildConfig(cmd, []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Targets) != 3 {
			t.Errorf("expected 3 targets, got %d", len(cfg.Targets))
		}
	})

	t.Run("builds config with valid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "seoscan.yaml")

		// Create a valid config file
		content := []byte(`
defaults:
  depth: 2
sites:
  example.com:
    delay: 2s
`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewScanCmd()
		_ = cmd.Flags().Set("config", configPath)
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.SiteConfigs == nil {
			t.Fatal("expected SiteConfigs to be loaded")
		}
		if cfg.SiteConfigs.Defaults.Depth != 2 {
			t.Errorf("expected default depth 2, got %d", cfg.SiteConfigs.Defaults.Depth)
		}
		if cfg.SiteConfigs.Sites["example.com"].Delay != 2*time.Second {
			t.Errorf("expected site delay 2s, got %v", cfg.SiteConfigs.Sites["example.com"].Delay)
		}
	})

	t.Run("returns error for invalid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "invalid.yaml")

		// Create an invalid config file
		content := []byte(`{invalid yaml`)
		if err := os.WriteFile(configPath, content, 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewScanCmd()
		_ = cmd.Flags().Set("config", configPath)
		_, err := buildConfig(cmd, []string{"https://example.com"})
		if err == nil {
			t.Fatal("expected error for invalid config file")
		}
	})

	t.Run("returns error for missing explicit config file", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("config", "/nonexistent/path/seoscan.yaml")
		_, err := buildConfig(cmd, []string{"https://example.com"})
		if err == nil {
			t.Fatal("expected error for missing config file")
		}
	})

	t.Run("builds config with output file", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("output", "/tmp/report.json")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ReportFile != "/tmp/report.json" {
			t.Errorf("expected ReportFile '/tmp/report.json', got %q", cfg.ReportFile)
		}
	})

	t.Run("format flags print to stdout by default", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("json", "true")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ReportFile != "" {
			t.Errorf("expected empty ReportFile with --json alone, got %q", cfg.ReportFile)
		}
	})

	t.Run("format flag with explicit output keeps the file", func(t *testing.T) {
		cmd := NewScanCmd()
		_ = cmd.Flags().Set("markdown", "true")
		_ = cmd.Flags().Set("output", "/tmp/report.md")
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.ReportFile != "/tmp/report.md" {
			t.Errorf("expected ReportFile '/tmp/report.md', got %q", cfg.ReportFile)
		}
	})
}

// TestGetSiteConfig tests site configuration retrieval.
func TestGetSiteConfig(t *testing.T) {
	t.Parallel()

	t.Run("returns empty config for nil SiteConfigs", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			SiteConfigs: nil,
		}
		result := getSiteConfig(cfg, "https://example.com/")
		if result.Depth != 0 {
			t.Error("expected zero depth")
		}
	})

	t.Run("matches the URL host", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			SiteConfigs: &config.File{
				Sites: map[string]config.SiteConfig{
					"example.com": {
						Depth: 5,
						Delay: 2 * time.Second,
					},
				},
			},
		}
		result := getSiteConfig(cfg, "https://example.com/")
		if result.Depth != 5 {
			t.Errorf("expected depth 5, got %d", result.Depth)
		}
		if result.Delay != 2*time.Second {
			t.Errorf("expected delay 2s, got %v", result.Delay)
		}
	})

	t.Run("matches without www prefix", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			SiteConfigs: &config.File{
				Sites: map[string]config.SiteConfig{
					"example.com": {
						Depth: 5,
					},
				},
			},
		}
		result := getSiteConfig(cfg, "https://www.example.com/")
		if result.Depth != 5 {
			t.Errorf("expected depth 5, got %d", result.Depth)
		}
	})

	t.Run("returns defaults when no site match", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{
			SiteConfigs: &config.File{
				Defaults: config.SiteConfig{
					Depth: 2,
				},
				Sites: map[string]config.SiteConfig{},
			},
		}
		result := getSiteConfig(cfg, "https://other.example.com/")
		if result.Depth != 2 {
			t.Errorf("expected depth 2, got %d", result.Depth)
		}
	})
}

// TestOutputReport tests the report output functionality.
func TestOutputReport(t *testing.T) {
	t.Run("outputs full JSON report to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "report.json")

		cfg := &config.Config{
			JSONReport: true,
			ReportFile: outputPath,
		}

		scanReport := model.NewScanReport("https://example.com", 3)

		err := outputReport(cfg, scanReport)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}

		var result map[string]interface{}
		if err := json.Unmarshal(content, &result); err != nil {
			t.Fatalf("failed to parse JSON: %v", err)
		}

		// Full JSON wraps the report with the tool version
		if _, ok := result["version"]; !ok {
			t.Error("expected 'version' key in full JSON output")
		}
		wrapped, ok := result["report"].(map[string]interface{})
		if !ok {
			t.Fatal("expected 'report' object in full JSON output")
		}
		if wrapped["seedUrl"] != "https://example.com/" {
			t.Errorf("expected seedUrl 'https://example.com/', got %v", wrapped["seedUrl"])
		}
	})

	t.Run("default format writes summary and scored JSON file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "report.json")

		cfg := &config.Config{
			ReportFile: outputPath,
		}

		scanReport := model.NewScanReport("https://example.com", 3)

		// Capture stdout
		oldStdout := os.Stdout
		r, w, _ := os.Pipe()
		os.Stdout = w

		err := outputReport(cfg, scanReport)

		w.Close()
		os.Stdout = oldStdout

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		r.Close()

		if !strings.Contains(buf.String(), "Site: https://example.com") {
			t.Error("expected human-readable summary on stdout")
		}
		if !strings.Contains(buf.String(), "Report written to "+outputPath) {
			t.Error("expected report file notice on stdout")
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}

		if !bytes.Contains(content, []byte("overallScore")) {
			t.Error("expected scored report JSON with 'overallScore'")
		}
	})

	t.Run("outputs Markdown report to file", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "report.md")

		cfg := &config.Config{
			MarkdownReport: true,
			ReportFile:     outputPath,
		}

		scanReport := model.NewScanReport("https://example.com", 3)

		err := outputReport(cfg, scanReport)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("failed to read file: %v", err)
		}

		if !bytes.Contains(content, []byte("SEO Scan Report")) {
			t.Error("expected Markdown report header")
		}
	})

	t.Run("creates parent directories", func(t *testing.T) {
		tmpDir := t.TempDir()
		outputPath := filepath.Join(tmpDir, "subdir", "nested", "report.json")

		cfg := &config.Config{
			JSONReport: true,
			ReportFile: outputPath,
		}

		scanReport := model.NewScanReport("https://example.com", 3)

		err := outputReport(cfg, scanReport)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := os.Stat(outputPath); os.IsNotExist(err) {
			t.Error("expected output file to be created in nested directory")
		}
	})

	t.Run("outputs to stdout when no file specified", func(t *testing.T) {
		cfg := &config.Config{}

		scanReport := model.NewScanReport("https://example.com", 3)

		// Capture stdout
		oldStdout := os.Stdout
		r, w, _ := os.Pipe()
		os.Stdout = w

		err := outputReport(cfg, scanReport)

		w.Close()
		os.Stdout = oldStdout

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		r.Close()

		if !strings.Contains(buf.String(), "https://example.com") {
			t.Error("expected report to contain the site URL")
		}
	})
}

// TestSaveScanReport tests the saveScanReport function.
func TestSaveScanReport(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx := context.Background()

	t.Run("returns nil when db is nil", func(t *testing.T) {
		t.Parallel()

		scanReport := model.NewScanReport("https://example.com", 3)
		err := saveScanReport(ctx, nil, scanReport, logger)
		if err != nil {
			t.Errorf("expected nil error when db is nil, got %v", err)
		}
	})

	t.Run("saves report to database", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		db, err := database.Open(tmpDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		scanReport := model.NewScanReport("https://save-test.example.com", 3)

		err = saveScanReport(ctx, db, scanReport, logger)
		if err != nil {
			t.Fatalf("saveScanReport() error = %v", err)
		}

		// Verify report was saved
		saved, err := db.GetLatestScanReport(ctx, "https://save-test.example.com/")
		if err != nil {
			t.Fatalf("failed to get saved report: %v", err)
		}
		if saved == nil {
			t.Fatal("expected report to be saved")
		}
		if saved.SeedURL != "https://save-test.example.com/" {
			t.Errorf("expected seed URL 'https://save-test.example.com/', got %q", saved.SeedURL)
		}
	})
}

// TestRunScanNoTargets tests that runScan returns error when no targets provided.
func TestRunScanNoTargets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := config.NewConfig()
	cfg.Targets = []string{} // No targets
	cfg.SaveToDB = false
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	err := runScan(ctx, cfg, logger)
	if err == nil {
		t.Error("expected error for no targets")
	}
	if err.Error() != "no sites provided (specify one or more URLs as arguments)" {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestRunScanInvalidTarget tests that runScan returns error for an invalid URL.
func TestRunScanInvalidTarget(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Run("unsupported scheme", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.Targets = []string{"ftp://example.com"}
		cfg.SaveToDB = false

		err := runScan(ctx, cfg, logger)
		if err == nil {
			t.Error("expected error for ftp scheme")
		}
	})

	t.Run("missing host", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.Targets = []string{"https://"}
		cfg.SaveToDB = false

		err := runScan(ctx, cfg, logger)
		if err == nil {
			t.Error("expected error for missing host")
		}
	})
}

// TestRunScanCmdNoArgs tests runScanCmd with no arguments.
func TestRunScanCmdNoArgs(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"scan"})

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error for no arguments")
	}
	if !strings.Contains(err.Error(), "no site") {
		t.Errorf("expected 'no site' error, got: %v", err)
	}
}

// TestRunScanCmdConflictingFormats tests runScanCmd with both --json and --markdown.
func TestRunScanCmdConflictingFormats(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"scan", "--json", "--markdown", "https://example.com"})

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error for conflicting report formats")
	}
	if !strings.Contains(err.Error(), "conflicting report formats") {
		t.Errorf("expected 'conflicting report formats' error, got: %v", err)
	}
}

// TestRunScanEndToEnd scans a local test site through the full pipeline and
// verifies the report file and the saved history.
func TestRunScanEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Home Page Title For Testing The Scanner Here</title>
<meta name="description" content="A perfectly fine home page for scanner testing purposes.">
<meta name="viewport" content="width=device-width"></head>
<body><h1>Home</h1><p>Welcome to the test site.</p><a href="/about">About</a></body></html>`))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>About Page Title For Testing The Scanner Here</title>
<meta name="description" content="A perfectly fine about page for scanner testing purposes.">
<meta name="viewport" content="width=device-width"></head>
<body><h1>About</h1><p>All about the test site.</p></body></html>`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	tmpDir := t.TempDir()
	reportPath := filepath.Join(tmpDir, "report.json")

	cfg := config.NewConfig()
	cfg.Targets = []string{ts.URL}
	cfg.CrawlDepth = 1
	cfg.CrawlDelay = 0
	cfg.BatchSize = 1
	cfg.SaveToDB = true
	cfg.DBDir = filepath.Join(tmpDir, "db")
	cfg.ReportFile = reportPath
	cfg.SiteConfigs = &config.File{}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	if err := runScan(context.Background(), cfg, logger); err != nil {
		t.Fatalf("runScan() error = %v", err)
	}

	// The output file holds the scored report
	content, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("failed to read report file: %v", err)
	}

	var seo model.SEOReport
	if err := json.Unmarshal(content, &seo); err != nil {
		t.Fatalf("failed to parse report JSON: %v", err)
	}
	if len(seo.PageReports) != 2 {
		t.Errorf("expected 2 page reports, got %d", len(seo.PageReports))
	}
	if seo.OverallScore <= 0 {
		t.Errorf("expected positive overall score, got %d", seo.OverallScore)
	}

	// The scan was saved to the history database
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer db.Close()

	saved, err := db.GetLatestScanReport(context.Background(), model.NormalizeURL(ts.URL))
	if err != nil {
		t.Fatalf("failed to get saved report: %v", err)
	}
	if saved == nil {
		t.Fatal("expected scan report in the database")
	}
	if saved.PagesCrawled != 2 {
		t.Errorf("expected 2 pages crawled, got %d", saved.PagesCrawled)
	}
}
