package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"filmdecks_backend/internal/events"
	"filmdecks_backend/internal/leadenrichment/client"
	"filmdecks_backend/internal/leads/domain"
	"filmdecks_backend/internal/leads/repository"
	"filmdecks_backend/internal/notification"
	"filmdecks_backend/platform/logger"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type stubAnalyzer struct {
	calls   atomic.Int32
	release chan struct{}
	result  *client.AnalysisResult
	err     error
}

func (a *stubAnalyzer) Analyze(ctx context.Context, _ client.AnalysisRequest) (*client.AnalysisResult, error) {
	a.calls.Add(1)
	if a.release != nil {
		select {
		case <-a.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return a.result, a.err
}

type recordingReports struct {
	mu      sync.Mutex
	reports []notification.Report
}

func (r *recordingReports) NotifyUserReport(_ context.Context, report notification.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
}

func (r *recordingReports) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

type recordingArchive struct {
	keys []string
	err  error
}

func (a *recordingArchive) PutJSON(_ context.Context, bucket, key string, _ any) error {
	a.keys = append(a.keys, bucket+"/"+key)
	return a.err
}

type stubQueue struct {
	leads []uuid.UUID
	err   error
}

func (q *stubQueue) EnqueueLeadEnrichment(_ context.Context, leadID uuid.UUID) error {
	q.leads = append(q.leads, leadID)
	return q.err
}

// vanishingRepo loses the row between the read and the enrichment write.
type vanishingRepo struct {
	*repository.MemoryRepository
}

func (vanishingRepo) ApplyEnrichment(context.Context, uuid.UUID, domain.Enrichment) error {
	return repository.ErrNotFound
}

func goodResult() *client.AnalysisResult {
	return &client.AnalysisResult{
		OverallScore: 82,
		Breakdown: client.Breakdown{
			Originality:         8,
			EmotionalImpact:     9,
			CommercialPotential: 7,
			FormatReadiness:     8,
			ClarityOfVision:     6,
		},
		DetailedAnalysis: "Strong hook.",
		Recommendations:  []string{"Tighten act two"},
	}
}

type fixture struct {
	repo     *repository.MemoryRepository
	bus      *events.InMemoryBus
	reports  *recordingReports
	analyzer *stubAnalyzer
	log      *logger.Logger
}

func newFixture() fixture {
	log := logger.New("development")
	return fixture{
		repo:     repository.NewMemory(),
		bus:      events.NewInMemoryBus(log),
		reports:  &recordingReports{},
		analyzer: &stubAnalyzer{result: goodResult()},
		log:      log,
	}
}

func (f fixture) service(opts ...Option) *Service {
	return New(f.repo, f.analyzer, f.reports, f.bus, f.log, opts...)
}

func (f fixture) seed(t *testing.T) domain.Lead {
	t.Helper()
	lead, err := f.repo.Create(context.Background(), repository.CreateLeadParams{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Logline: "A lighthouse keeper finds a map to her past",
		Status:  domain.StatusQualified,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return lead
}

func (f fixture) collect(name string) <-chan events.Event {
	ch := make(chan events.Event, 4)
	f.bus.Subscribe(name, events.HandlerFunc(func(_ context.Context, e events.Event) error {
		ch <- e
		return nil
	}))
	return ch
}

func TestRunStoresAllScoresAndSendsReport(t *testing.T) {
	f := newFixture()
	lead := f.seed(t)
	enriched := f.collect(events.LeadEnriched{}.EventName())
	archive := &recordingArchive{}

	if err := f.service(WithArchive(archive, "analyses")).Run(context.Background(), lead.ID); err != nil {
		t.Fatalf("run: %v", err)
	}

	stored, _ := f.repo.GetByID(context.Background(), lead.ID)
	got := stored.Enrichment()
	want := domain.Enrichment{Overall: 82, Originality: 8, Emotional: 9, Commercial: 7, Format: 8, Clarity: 6}
	if got == nil || *got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if stored.EnrichmentState() != domain.EnrichmentEnriched {
		t.Fatalf("expected enriched state, got %s", stored.EnrichmentState())
	}
	if f.reports.count() != 1 || f.reports.reports[0].Email != "jane@example.com" {
		t.Fatalf("report not sent: %+v", f.reports.reports)
	}
	if len(archive.keys) != 1 || archive.keys[0] != "analyses/analyses/"+lead.ID.String()+".json" {
		t.Fatalf("unexpected archive keys %v", archive.keys)
	}
	select {
	case <-enriched:
	case <-time.After(time.Second):
		t.Fatalf("LeadEnriched not published")
	}
}

func TestRunEngineFailureIsTerminal(t *testing.T) {
	f := newFixture()
	f.analyzer.result = nil
	f.analyzer.err = errors.New("engine status 502")
	lead := f.seed(t)
	failed := f.collect(events.LeadEnrichmentFailed{}.EventName())

	if err := f.service().Run(context.Background(), lead.ID); err == nil {
		t.Fatalf("expected the failure to be returned to the caller")
	}

	stored, _ := f.repo.GetByID(context.Background(), lead.ID)
	if stored.Enrichment() != nil || stored.OverallScore != nil {
		t.Fatalf("failed analysis must leave scores absent")
	}
	if stored.EnrichmentState() != domain.EnrichmentFailed {
		t.Fatalf("expected failed state, got %s", stored.EnrichmentState())
	}
	if f.reports.count() != 0 {
		t.Fatalf("no report on failure")
	}
	select {
	case <-failed:
	case <-time.After(time.Second):
		t.Fatalf("LeadEnrichmentFailed not published")
	}

	// Terminal: a second run does not call the engine again.
	_ = f.service().Run(context.Background(), lead.ID)
	if f.analyzer.calls.Load() != 1 {
		t.Fatalf("failed lead was retried")
	}
}

func TestRunMissingLead(t *testing.T) {
	f := newFixture()

	err := f.service().Run(context.Background(), uuid.New())
	if !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
	if f.analyzer.calls.Load() != 0 {
		t.Fatalf("engine called for a missing lead")
	}
}

func TestRunLeadRemovedDuringAnalysis(t *testing.T) {
	f := newFixture()
	lead := f.seed(t)

	svc := New(vanishingRepo{f.repo}, f.analyzer, f.reports, f.bus, f.log)
	if err := svc.Run(context.Background(), lead.ID); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
	if f.reports.count() != 0 {
		t.Fatalf("no report for a lead that is gone")
	}
}

func TestDispatchDoesNotWaitForEngine(t *testing.T) {
	f := newFixture()
	f.analyzer.release = make(chan struct{})
	lead := f.seed(t)
	svc := f.service()

	ctx, cancel := context.WithCancel(context.Background())
	svc.Dispatch(ctx, lead.ID)
	// The request context ending must not cancel the run.
	cancel()

	stored, _ := f.repo.GetByID(context.Background(), lead.ID)
	if stored.EnrichmentState() != domain.EnrichmentPending {
		t.Fatalf("dispatch must return while the lead is still pending")
	}

	close(f.analyzer.release)
	svc.Wait()

	stored, _ = f.repo.GetByID(context.Background(), lead.ID)
	if stored.EnrichmentState() != domain.EnrichmentEnriched {
		t.Fatalf("background run did not complete: %s", stored.EnrichmentState())
	}
}

func TestConcurrentRunsCallEngineOnce(t *testing.T) {
	f := newFixture()
	f.analyzer.release = make(chan struct{})
	lead := f.seed(t)
	svc := f.service()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = svc.Run(context.Background(), lead.ID)
	}()

	deadline := time.Now().Add(time.Second)
	for f.analyzer.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if err := svc.Run(context.Background(), lead.ID); err != nil {
		t.Fatalf("overlapping run should be skipped quietly: %v", err)
	}
	close(f.analyzer.release)
	wg.Wait()

	if f.analyzer.calls.Load() != 1 {
		t.Fatalf("engine called %d times", f.analyzer.calls.Load())
	}
}

func TestDispatchUsesQueue(t *testing.T) {
	f := newFixture()
	lead := f.seed(t)
	queue := &stubQueue{}

	svc := f.service(WithQueue(queue))
	svc.Dispatch(context.Background(), lead.ID)
	svc.Wait()

	if len(queue.leads) != 1 || queue.leads[0] != lead.ID {
		t.Fatalf("lead not enqueued: %v", queue.leads)
	}
	if f.analyzer.calls.Load() != 0 {
		t.Fatalf("queued dispatch must not run in-process")
	}
}

func TestDispatchFallsBackWhenQueueFails(t *testing.T) {
	f := newFixture()
	lead := f.seed(t)

	svc := f.service(WithQueue(&stubQueue{err: errors.New("redis: connection refused")}))
	svc.Dispatch(context.Background(), lead.ID)
	svc.Wait()

	if f.analyzer.calls.Load() != 1 {
		t.Fatalf("expected an in-process run after the enqueue failure")
	}
}

func TestRedisGuard(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	guard := NewRedisGuard(rdb, time.Minute)
	ctx := context.Background()
	leadID := uuid.New()

	if ok, err := guard.Acquire(ctx, leadID); err != nil || !ok {
		t.Fatalf("first acquire: %v %v", ok, err)
	}
	if ok, _ := guard.Acquire(ctx, leadID); ok {
		t.Fatalf("second acquire must fail while held")
	}

	mr.FastForward(2 * time.Minute)
	if ok, _ := guard.Acquire(ctx, leadID); !ok {
		t.Fatalf("expired guard should be reacquirable")
	}

	if err := guard.Release(ctx, leadID); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := guard.Acquire(ctx, leadID); !ok {
		t.Fatalf("released guard should be reacquirable")
	}
}

func TestRunReportsGuardErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	f := newFixture()
	lead := f.seed(t)
	if err := f.service(WithGuard(NewRedisGuard(rdb, time.Minute))).Run(context.Background(), lead.ID); err == nil {
		t.Fatalf("expected guard error")
	}
	if f.analyzer.calls.Load() != 0 {
		t.Fatalf("engine must not be called without the guard")
	}
}
