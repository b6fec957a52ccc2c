package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/petrotools/deckqc/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, report *model.QCReport) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, report *model.QCReport) error {
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

	t.Run("adds multiple steps with AddSteps", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&mockStep{name: "a"}, &mockStep{name: "b"})

		if p.StepCount() != 2 {
			t.Errorf("expected 2 steps, got %d", p.StepCount())
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
		for _, name := range []string{"first", "second", "third"} {
			name := name
			p.AddStep(&mockStep{
				name: name,
				doFunc: func(_ context.Context, _ *model.QCReport) error {
					executionOrder = append(executionOrder, name)
					return nil
				},
			})
		}

		report := model.NewQCReport("testdata/field.DATA")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := []string{"first", "second", "third"}
		if len(executionOrder) != len(expected) {
			t.Fatalf("expected %d steps executed, got %d", len(expected), len(executionOrder))
		}
		for i, name := range executionOrder {
			if name != expected[i] {
				t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
			}
		}
	})

	t.Run("records performed steps on the report", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(&mockStep{name: "extract"}, &mockStep{name: "qc"})

		report := model.NewQCReport("testdata/field.DATA")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(report.PerformedSteps) != 2 {
			t.Fatalf("expected 2 performed steps, got %d", len(report.PerformedSteps))
		}
		if report.PerformedSteps[0] != "extract" || report.PerformedSteps[1] != "qc" {
			t.Errorf("unexpected performed steps: %v", report.PerformedSteps)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		stepErr := errors.New("extract failed")
		second := &mockStep{name: "second"}

		p := New()
		p.AddStep(&mockStep{
			name: "first",
			doFunc: func(_ context.Context, _ *model.QCReport) error {
				return stepErr
			},
		})
		p.AddStep(second)

		report := model.NewQCReport("testdata/field.DATA")
		err := p.Execute(context.Background(), report)

		if !errors.Is(err, stepErr) {
			t.Errorf("expected step error, got %v", err)
		}
		if second.callCount != 0 {
			t.Error("expected second step to be skipped after failure")
		}
		if report.Error == nil {
			t.Error("expected error recorded on report")
		}
	})

	t.Run("continues after error when configured", func(t *testing.T) {
		t.Parallel()

		second := &mockStep{name: "second"}

		p := New(WithContinueOnError(true))
		p.AddStep(&mockStep{
			name: "first",
			doFunc: func(_ context.Context, _ *model.QCReport) error {
				return errors.New("first failed")
			},
		})
		p.AddStep(second)

		report := model.NewQCReport("testdata/field.DATA")
		if err := p.Execute(context.Background(), report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if second.callCount != 1 {
			t.Error("expected second step to run despite earlier failure")
		}
		if report.ErrorMessage == "" {
			t.Error("expected error message recorded on report")
		}
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		t.Parallel()

		step := &mockStep{name: "never-runs"}

		p := New()
		p.AddStep(step)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		report := model.NewQCReport("testdata/field.DATA")
		err := p.Execute(ctx, report)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("expected step to be skipped after cancellation")
		}
		if !report.TimedOut {
			t.Error("expected TimedOut to be set")
		}
	})
}
