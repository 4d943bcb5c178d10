package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/seoscan/seoscan/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, report *model.ScanReport) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, report *model.ScanReport) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, report)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))

		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds single step", func(t *testing.T) {
		t.Parallel()

		p := New()
		step := &mockStep{name: "test-step"}

		p.AddStep(step)

		if p.StepCount() != 1 {
			t.Errorf("expected 1 step, got %d", p.StepCount())
		}
	})

	t.Run("adds multiple steps with AddSteps", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(
			&mockStep{name: "step-1"},
			&mockStep{name: "step-2"},
			&mockStep{name: "step-3"},
		)

		if p.StepCount() != 3 {
			t.Errorf("expected 3 steps, got %d", p.StepCount())
		}
	})

	t.Run("maintains step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "first"})
		p.AddStep(&mockStep{name: "second"})
		p.AddStep(&mockStep{name: "third"})

		names := p.StepNames()

		expected := []string{"first", "second", "third"}
		for i, name := range names {
			if name != expected[i] {
				t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
			}
		}
	})
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		executionOrder := make([]string, 0)

		p := New()
		p.AddStep(&mockStep{
			name: "step-1",
			doFunc: func(_ context.Context, _ *model.ScanReport) error {
				executionOrder = append(executionOrder, "step-1")
				return nil
			},
		})
		p.AddStep(&mockStep{
			name: "step-2",
			doFunc: func(_ context.Context, _ *model.ScanReport) error {
				executionOrder = append(executionOrder, "step-2")
				return nil
			},
		})

		report := model.NewScanReport("https://example.com/", 3)
		err := p.Execute(context.Background(), report)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(executionOrder) != 2 {
			t.Fatalf("expected 2 executions, got %d", len(executionOrder))
		}
		if executionOrder[0] != "step-1" || executionOrder[1] != "step-2" {
			t.Errorf("wrong execution order: %v", executionOrder)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("step failed")
		step2Called := false

		p := New()
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.ScanReport) error {
				return expectedErr
			},
		})
		p.AddStep(&mockStep{
			name: "should-not-run",
			doFunc: func(_ context.Context, _ *model.ScanReport) error {
				step2Called = true
				return nil
			},
		})

		report := model.NewScanReport("https://example.com/", 3)
		err := p.Execute(context.Background(), report)

		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if step2Called {
			t.Error("second step should not have been called")
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		step2Called := false

		p := New(WithContinueOnError(true))
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.ScanReport) error {
				return errors.New("step failed")
			},
		})
		p.AddStep(&mockStep{
			name: "should-run",
			doFunc: func(_ context.Context, _ *model.ScanReport) error {
				step2Called = true
				return nil
			},
		})

		report := model.NewScanReport("https://example.com/", 3)
		err := p.Execute(context.Background(), report)

		if err != nil {
			t.Errorf("expected nil error with continueOnError, got %v", err)
		}
		if !step2Called {
			t.Error("second step should have been called")
		}
	})

	t.Run("cancellation marks the report truncated but still runs steps", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		stepCalled := false
		p := New()
		p.AddStep(&mockStep{
			name: "still-runs",
			doFunc: func(stepCtx context.Context, _ *model.ScanReport) error {
				stepCalled = true
				if stepCtx.Err() != nil {
					t.Error("step context should be detached from the cancel")
				}
				return nil
			},
		})

		report := model.NewScanReport("https://example.com/", 3)
		err := p.Execute(ctx, report)

		if err != nil {
			t.Errorf("expected nil error for a cancelled scan, got %v", err)
		}
		if !stepCalled {
			t.Error("step should have been called")
		}
		if !report.TimedOut {
			t.Error("report.TimedOut should be true")
		}
	})

	t.Run("pages collected before a cancel still get scored", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		scoreRan := false
		p := New()
		p.AddStep(&mockStep{
			name: "crawl-like",
			doFunc: func(_ context.Context, r *model.ScanReport) error {
				// Simulates a crawl interrupted mid-flight: one page was
				// collected, then the session got cancelled.
				r.AddPage(&model.PageResult{URL: "https://example.com/", StatusCode: 200})
				cancel()
				return nil
			},
		})
		p.AddStep(&mockStep{
			name: "score-like",
			doFunc: func(_ context.Context, r *model.ScanReport) error {
				scoreRan = true
				r.SEO = &model.SEOReport{OverallScore: 70}
				return nil
			},
		})

		report := model.NewScanReport("https://example.com/", 3)
		err := p.Execute(ctx, report)

		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if !scoreRan {
			t.Fatal("scoring step did not run after cancellation")
		}
		if report.SEO == nil {
			t.Error("cancelled scan lost its aggregated report")
		}
		if !report.TimedOut {
			t.Error("report.TimedOut should be true")
		}
		if report.PagesCrawled != 1 {
			t.Errorf("PagesCrawled = %d, want 1", report.PagesCrawled)
		}
	})

	t.Run("records error in report", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("test error")

		p := New()
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.ScanReport) error {
				return expectedErr
			},
		})

		report := model.NewScanReport("https://example.com/", 3)
		_ = p.Execute(context.Background(), report) //nolint:errcheck // We check error via report.Error

		if report.Error != expectedErr.Error() {
			t.Errorf("expected error %q recorded in report, got %q", expectedErr.Error(), report.Error)
		}
	})
}

// TestPipelineStepNames tests the StepNames method.
func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	t.Run("returns empty slice for empty pipeline", func(t *testing.T) {
		t.Parallel()

		p := New()
		names := p.StepNames()

		if len(names) != 0 {
			t.Errorf("expected empty slice, got %v", names)
		}
	})

	t.Run("returns names in order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(
			&mockStep{name: "alpha"},
			&mockStep{name: "beta"},
			&mockStep{name: "gamma"},
		)

		names := p.StepNames()

		if len(names) != 3 {
			t.Fatalf("expected 3 names, got %d", len(names))
		}
		if names[0] != "alpha" || names[1] != "beta" || names[2] != "gamma" {
			t.Errorf("unexpected names: %v", names)
		}
	})
}

// TestBatchProcessor tests concurrent multi-seed scanning.
func TestBatchProcessor(t *testing.T) {
	t.Parallel()

	t.Run("scans every seed and preserves order", func(t *testing.T) {
		t.Parallel()

		factory := func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{name: "noop"})
			return p
		}
		bp := NewBatchProcessor(factory, WithBatchMaxDepth(2), WithBatchConcurrency(2))

		seeds := []string{"https://a.example.com/", "https://b.example.com/", "https://c.example.com/"}
		reports := make([]*model.ScanReport, len(seeds))
		var mu sync.Mutex
		err := bp.ProcessBatchWithCallback(context.Background(), seeds,
			func(r *model.ScanReport, index int) {
				mu.Lock()
				reports[index] = r
				mu.Unlock()
			})
		if err != nil {
			t.Fatalf("ProcessBatchWithCallback() = %v", err)
		}
		for i, r := range reports {
			if r == nil {
				t.Fatalf("reports[%d] missing, want a report for every seed", i)
			}
			if r.SeedURL != seeds[i] {
				t.Errorf("reports[%d].SeedURL = %q, want %q", i, r.SeedURL, seeds[i])
			}
			if r.MaxDepth != 2 {
				t.Errorf("reports[%d].MaxDepth = %d, want 2", i, r.MaxDepth)
			}
		}
	})

	t.Run("failed scans do not abort the batch", func(t *testing.T) {
		t.Parallel()

		calls := 0
		factory := func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{
				name: "flaky",
				doFunc: func(_ context.Context, r *model.ScanReport) error {
					calls++
					if r.SeedURL == "https://bad.example.com/" {
						return errors.New("boom")
					}
					return nil
				},
			})
			return p
		}
		bp := NewBatchProcessor(factory, WithBatchConcurrency(1))

		seeds := []string{"https://good.example.com/", "https://bad.example.com/"}
		reports := make([]*model.ScanReport, len(seeds))
		err := bp.ProcessBatchWithCallback(context.Background(), seeds,
			func(r *model.ScanReport, index int) {
				reports[index] = r
			})
		if err != nil {
			t.Fatalf("ProcessBatchWithCallback() = %v", err)
		}
		if calls != 2 {
			t.Errorf("expected both seeds scanned, got %d calls", calls)
		}
		if reports[1] == nil || reports[1].Error == "" {
			t.Error("failed seed's report should carry the error")
		}
	})

	t.Run("callback variant streams results", func(t *testing.T) {
		t.Parallel()

		factory := func() *Pipeline { return New() }
		bp := NewBatchProcessor(factory, WithBatchConcurrency(1))

		var got []int
		err := bp.ProcessBatchWithCallback(context.Background(),
			[]string{"https://a.example.com/", "https://b.example.com/"},
			func(_ *model.ScanReport, index int) {
				got = append(got, index)
			})
		if err != nil {
			t.Fatalf("ProcessBatchWithCallback() = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("callback called %d times, want 2", len(got))
		}
	})

	t.Run("WithBatchConcurrency ignores invalid values", func(t *testing.T) {
		t.Parallel()

		factory := func() *Pipeline { return New() }
		bp := NewBatchProcessor(factory, WithBatchConcurrency(0))

		if bp.concurrency != 2 {
			t.Errorf("expected default concurrency 2, got %d", bp.concurrency)
		}
	})
}
