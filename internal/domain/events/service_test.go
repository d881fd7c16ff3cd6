package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]CareEvent
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]CareEvent{}}
}

func (r *testRepo) Create(_ context.Context, e CareEvent) error {
	if _, ok := r.byID[e.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[e.ID] = e
	return nil
}

func (r *testRepo) Update(_ context.Context, e CareEvent) error {
	if _, ok := r.byID[e.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[e.ID] = e
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (CareEvent, error) {
	e, ok := r.byID[id]
	if !ok {
		return CareEvent{}, errRepoNotFound
	}
	return e, nil
}

func (r *testRepo) ListByPet(_ context.Context, petID string) ([]CareEvent, error) {
	out := make([]CareEvent, 0)
	for _, e := range r.byID {
		if e.Subject.PetID == petID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *testRepo) ListByOwner(_ context.Context, ownerUserID string) ([]CareEvent, error) {
	out := make([]CareEvent, 0)
	for _, e := range r.byID {
		if e.OwnerUserID == ownerUserID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *testRepo) List(_ context.Context) ([]CareEvent, error) {
	out := make([]CareEvent, 0, len(r.byID))
	for _, e := range r.byID {
		out = append(out, e)
	}
	return out, nil
}

// -------------------------
// Helpers
// -------------------------

var testNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo)
	svc.now = func() time.Time { return testNow }
	return svc, repo
}

func validInput() CreateInput {
	return CreateInput{
		Subject:     Subject{PetID: "pet-1"},
		Type:        TypeVaccination,
		Title:       "Antirrábica",
		ScheduledAt: testNow.AddDate(0, 0, 7),
	}
}

// -------------------------
// Create
// -------------------------

func TestCreate_OK(t *testing.T) {
	svc, repo := newTestService()

	e, err := svc.Create(context.Background(), "vet-1", validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.ID == "" {
		t.Fatalf("missing id")
	}
	if e.Status != StatusPlanned {
		t.Fatalf("default status should be planned, got %s", e.Status)
	}
	if !e.CreatedAt.Equal(testNow) || !e.UpdatedAt.Equal(testNow) {
		t.Fatalf("timestamps not set from clock")
	}
	if _, ok := repo.byID[e.ID]; !ok {
		t.Fatalf("event not persisted")
	}
}

func TestCreate_GuestSubject(t *testing.T) {
	svc, _ := newTestService()

	in := validInput()
	in.Subject = Subject{GuestName: "Firulais (consulta externa)"}

	e, err := svc.Create(context.Background(), "vet-1", in)
	if err != nil {
		t.Fatalf("guest create: %v", err)
	}
	if e.Subject.PetID != "" || e.Subject.GuestName == "" {
		t.Fatalf("wrong subject: %+v", e.Subject)
	}
}

func TestCreate_SubjectExactlyOne(t *testing.T) {
	svc, _ := newTestService()

	// Ninguno de los dos.
	in := validInput()
	in.Subject = Subject{}
	if _, err := svc.Create(context.Background(), "vet-1", in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty subject: expected ErrInvalidInput, got %v", err)
	}

	// Los dos a la vez.
	in.Subject = Subject{PetID: "pet-1", GuestName: "walk-in"}
	if _, err := svc.Create(context.Background(), "vet-1", in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("both subjects: expected ErrInvalidInput, got %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService()

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"empty title", func(in *CreateInput) { in.Title = "   " }},
		{"zero scheduled_at", func(in *CreateInput) { in.ScheduledAt = time.Time{} }},
		{"unknown type", func(in *CreateInput) { in.Type = "surgery" }},
		{"unknown status", func(in *CreateInput) { in.Status = "done" }},
	}

	for _, tc := range cases {
		in := validInput()
		tc.mutate(&in)
		if _, err := svc.Create(context.Background(), "vet-1", in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}

	if _, err := svc.Create(context.Background(), "", validInput()); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty owner: expected ErrInvalidInput, got %v", err)
	}
}

// -------------------------
// Patch
// -------------------------

func TestApplyPatch_PartialMerge(t *testing.T) {
	svc, _ := newTestService()
	e, _ := svc.Create(context.Background(), "vet-1", validInput())

	later := testNow.AddDate(0, 0, 14)
	st := StatusMissed
	got, err := svc.ApplyPatch(context.Background(), e.ID, Patch{
		ScheduledAt: &later,
		Status:      &st,
	})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}

	if !got.ScheduledAt.Equal(later) || got.Status != StatusMissed {
		t.Fatalf("patched fields not applied: %+v", got)
	}
	// Los campos sin patch no se tocan.
	if got.Title != e.Title || got.Type != e.Type {
		t.Fatalf("untouched fields changed: %+v", got)
	}
}

func TestApplyPatch_Validation(t *testing.T) {
	svc, _ := newTestService()
	e, _ := svc.Create(context.Background(), "vet-1", validInput())

	empty := "  "
	if _, err := svc.ApplyPatch(context.Background(), e.ID, Patch{Title: &empty}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank title: expected ErrInvalidInput, got %v", err)
	}

	var zero time.Time
	if _, err := svc.ApplyPatch(context.Background(), e.ID, Patch{ScheduledAt: &zero}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero date: expected ErrInvalidInput, got %v", err)
	}

	if _, err := svc.ApplyPatch(context.Background(), e.ID, Patch{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty patch: expected ErrInvalidInput, got %v", err)
	}
}

func TestApplyPatch_NotFound(t *testing.T) {
	svc, _ := newTestService()

	st := StatusCompleted
	if _, err := svc.ApplyPatch(context.Background(), "nope", Patch{Status: &st}); !errors.Is(err, errRepoNotFound) {
		t.Fatalf("expected repo not found, got %v", err)
	}
}

// -------------------------
// Attachments
// -------------------------

func TestAddAttachment(t *testing.T) {
	svc, _ := newTestService()
	e, _ := svc.Create(context.Background(), "vet-1", validInput())

	got, att, err := svc.AddAttachment(context.Background(), e.ID, "radiografia.png", 2048)
	if err != nil {
		t.Fatalf("add attachment: %v", err)
	}
	if att.ID == "" || att.FileName != "radiografia.png" || att.Size != 2048 {
		t.Fatalf("wrong attachment: %+v", att)
	}
	if len(got.Attachments) != 1 {
		t.Fatalf("attachment not appended")
	}

	if _, _, err := svc.AddAttachment(context.Background(), e.ID, "", 10); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty filename: expected ErrInvalidInput, got %v", err)
	}
	if _, _, err := svc.AddAttachment(context.Background(), e.ID, "x.png", -1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative size: expected ErrInvalidInput, got %v", err)
	}
}
