package scheduler

import (
	"context"
	"errors"
	"testing"

	"filmdecks_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

var errGone = errors.New("lead not found")

type stubRunner struct {
	err  error
	runs []uuid.UUID
}

func (r *stubRunner) Run(_ context.Context, leadID uuid.UUID) error {
	r.runs = append(r.runs, leadID)
	return r.err
}

func (r *stubRunner) IsNotFound(err error) bool { return errors.Is(err, errGone) }

func TestLeadEnrichTaskRoundTrip(t *testing.T) {
	leadID := uuid.New()
	task, err := NewLeadEnrichTask(leadID)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TaskLeadEnrich {
		t.Fatalf("unexpected type %s", task.Type())
	}
	got, err := ParseLeadEnrichPayload(task)
	if err != nil || got != leadID {
		t.Fatalf("parse: %v %v", got, err)
	}
}

func TestHandleLeadEnrich(t *testing.T) {
	leadID := uuid.New()
	task, _ := NewLeadEnrichTask(leadID)

	cases := []struct {
		name      string
		runErr    error
		wantErr   bool
		skipRetry bool
	}{
		{"success", nil, false, false},
		{"missing lead completes", errGone, false, false},
		{"engine failure is not retried", errors.New("engine status 502"), true, true},
		{"shutdown is retried", context.Canceled, true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runner := &stubRunner{err: tc.runErr}
			w := newWorker(runner, logger.New("development"))

			err := w.mux.ProcessTask(context.Background(), task)
			if (err != nil) != tc.wantErr {
				t.Fatalf("unexpected error %v", err)
			}
			if errors.Is(err, asynq.SkipRetry) != tc.skipRetry {
				t.Fatalf("skipRetry mismatch: %v", err)
			}
			if len(runner.runs) != 1 || runner.runs[0] != leadID {
				t.Fatalf("runner not called with the lead: %v", runner.runs)
			}
		})
	}
}

func TestHandleLeadEnrichBadPayload(t *testing.T) {
	runner := &stubRunner{}
	w := newWorker(runner, logger.New("development"))

	err := w.mux.ProcessTask(context.Background(), asynq.NewTask(TaskLeadEnrich, []byte(`{"leadId":"nope"}`)))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
	if len(runner.runs) != 0 {
		t.Fatalf("runner must not be called")
	}
}
