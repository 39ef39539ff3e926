package workflow

import (
	"context"
	"testing"

	"filmdecks_backend/internal/events"
	"filmdecks_backend/internal/leads/domain"
	"filmdecks_backend/internal/leads/repository"
	"filmdecks_backend/platform/apperr"
	"filmdecks_backend/platform/logger"

	"github.com/google/uuid"
)

type countingRepo struct {
	*repository.MemoryRepository
	reads  int
	writes int
}

func (r *countingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	r.reads++
	return r.MemoryRepository.GetByID(ctx, id)
}

func (r *countingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) (domain.Lead, error) {
	r.writes++
	return r.MemoryRepository.UpdateStatus(ctx, id, from, to)
}

// staleRepo answers reads with an outdated status, as a concurrent
// operator's write would leave it.
type staleRepo struct {
	*repository.MemoryRepository
	seen domain.Status
}

func (r *staleRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := r.MemoryRepository.GetByID(ctx, id)
	lead.Status = r.seen
	return lead, err
}

type fixture struct {
	svc     *Service
	repo    *countingRepo
	bus     *events.InMemoryBus
	changes chan events.LeadStatusChanged
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	repo := &countingRepo{MemoryRepository: repository.NewMemory()}
	changes := make(chan events.LeadStatusChanged, 8)
	bus.Subscribe(events.LeadStatusChanged{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		changes <- e.(events.LeadStatusChanged)
		return nil
	}))
	return fixture{svc: New(repo, bus, log), repo: repo, bus: bus, changes: changes}
}

func (f fixture) seed(t *testing.T, status domain.Status) domain.Lead {
	t.Helper()
	lead, err := f.repo.Create(context.Background(), repository.CreateLeadParams{Name: "Jane", Email: "jane@example.com", Status: status})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return lead
}

func TestSetStatusIsIdempotent(t *testing.T) {
	f := newFixture(t)
	lead := f.seed(t, domain.StatusContacted)

	got, err := f.svc.SetStatus(context.Background(), lead.ID, "contacted")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.StatusContacted {
		t.Fatalf("status changed to %s", got.Status)
	}
	if f.repo.writes != 0 {
		t.Fatalf("re-applying a status must not write")
	}
	f.bus.Wait()
	if len(f.changes) != 0 {
		t.Fatalf("no event expected for a no-op")
	}
}

func TestSetStatusRejectsUnknownBeforeStorage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SetStatus(context.Background(), uuid.New(), "archived")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if f.repo.reads != 0 || f.repo.writes != 0 {
		t.Fatalf("storage touched for an invalid status")
	}
}

func TestSetStatusMissingLead(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SetStatus(context.Background(), uuid.New(), "qualified")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetStatusAcceptsAnyRecognizedTarget(t *testing.T) {
	cases := []struct {
		from domain.Status
		to   string
	}{
		{domain.StatusNew, "contacted"},
		{domain.StatusNew, "qualified"},
		{domain.StatusNew, "converted"},
		{domain.StatusQualified, "contacted"},
		{domain.StatusQualified, "new"},
		{domain.StatusContacted, "lost"},
		{domain.StatusLost, "qualified"},
		{domain.StatusConverted, "lost"},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+tc.to, func(t *testing.T) {
			f := newFixture(t)
			lead := f.seed(t, tc.from)

			got, err := f.svc.SetStatus(context.Background(), lead.ID, tc.to)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got.Status) != tc.to {
				t.Fatalf("expected %s, got %s", tc.to, got.Status)
			}
			if f.repo.writes != 1 {
				t.Fatalf("expected one write, got %d", f.repo.writes)
			}
			e := <-f.changes
			if e.FromStatus != string(tc.from) || e.ToStatus != tc.to {
				t.Fatalf("unexpected event %+v", e)
			}
		})
	}
}

func TestSetStatusConflictOnStaleRead(t *testing.T) {
	log := logger.New("development")
	mem := repository.NewMemory()
	lead, err := mem.Create(context.Background(), repository.CreateLeadParams{Name: "Jane", Email: "jane@example.com", Status: domain.StatusQualified})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := New(&staleRepo{MemoryRepository: mem, seen: domain.StatusNew}, events.NewInMemoryBus(log), log)
	_, err = svc.SetStatus(context.Background(), lead.ID, "lost")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	stored, _ := mem.GetByID(context.Background(), lead.ID)
	if stored.Status != domain.StatusQualified {
		t.Fatalf("stale write changed status to %s", stored.Status)
	}
}
