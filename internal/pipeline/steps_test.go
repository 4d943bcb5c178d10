package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seoscan/seoscan/internal/crawler"
	"github.com/seoscan/seoscan/internal/fetcher"
	"github.com/seoscan/seoscan/internal/model"
	"github.com/seoscan/seoscan/internal/policy"
)

func TestCrawlAndScoreSteps(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", http.NotFound)
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Home</title></head><body><h1>Hi</h1><a href="/about">about</a></body></html>`)
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>About</title></head><body><h1>About</h1></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := fetcher.NewWithClient(srv.Client(), "seoscan", 5*time.Second, 0)
	gate := policy.NewGate(srv.Client(), "seoscan", 0, false, nil)
	c := crawler.New(f, gate, crawler.WithMaxDepth(2))

	p := New()
	p.AddSteps(NewCrawlStep(c), NewScoreStep())

	report := model.NewScanReport(srv.URL, 2)
	if err := p.Execute(context.Background(), report); err != nil {
		t.Fatalf("Execute() = %v", err)
	}

	if report.PagesCrawled != 2 {
		t.Errorf("PagesCrawled = %d, want 2", report.PagesCrawled)
	}
	if report.SEO == nil {
		t.Fatal("SEO report missing after score step")
	}
	if len(report.SEO.PageReports) != 2 {
		t.Errorf("PageReports = %d, want 2", len(report.SEO.PageReports))
	}
	if report.SEO.OverallScore <= 0 {
		t.Errorf("OverallScore = %d, want positive", report.SEO.OverallScore)
	}
}

func TestCrawlStepInvalidSeed(t *testing.T) {
	t.Parallel()

	f := fetcher.New("seoscan", time.Second, 0)
	gate := policy.NewGate(nil, "seoscan", 0, true, nil)
	c := crawler.New(f, gate)

	step := NewCrawlStep(c)
	report := model.NewScanReport("ftp://example.com/", 1)
	if err := step.Do(context.Background(), report); err == nil {
		t.Error("Do() = nil for non-http seed, want error")
	}
}
