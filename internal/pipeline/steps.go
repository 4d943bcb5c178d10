package pipeline

import (
	"context"
	"fmt"

	"github.com/seoscan/seoscan/internal/crawler"
	"github.com/seoscan/seoscan/internal/model"
	"github.com/seoscan/seoscan/internal/scorer"
)

// CrawlStep walks the site from the report's seed URL and fills in the raw
// page results. It is the first step of every scan.
type CrawlStep struct {
	crawler *crawler.Crawler
}

// NewCrawlStep creates the crawl step around a configured crawler.
func NewCrawlStep(c *crawler.Crawler) *CrawlStep {
	return &CrawlStep{crawler: c}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do runs the crawl. Only an unusable seed URL is a step failure; per-page
// problems are part of the result. A canceled crawl is not an error either,
// the truncated pages are still worth scoring.
func (s *CrawlStep) Do(ctx context.Context, report *model.ScanReport) error {
	res, err := s.crawler.Crawl(ctx, report.SeedURL)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	for _, page := range res.Pages {
		report.AddPage(page)
	}
	if res.Truncated {
		report.TimedOut = true
	}
	return nil
}

// ScoreStep grades the crawled pages and attaches the aggregated SEO
// report. It runs after the crawl step.
type ScoreStep struct{}

// NewScoreStep creates the scoring step.
func NewScoreStep() *ScoreStep {
	return &ScoreStep{}
}

// Name returns the step name.
func (s *ScoreStep) Name() string {
	return "score"
}

// Do scores the report's pages. Scoring is pure and cannot fail; an empty
// crawl yields an empty report with a zero score.
func (s *ScoreStep) Do(_ context.Context, report *model.ScanReport) error {
	report.SEO = scorer.Score(report.SeedURL, report.Pages)
	return nil
}
