package eventstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pet-planboard/internal/domain/events"
	"pet-planboard/internal/platform/httpclient"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	hc, err := httpclient.NewWithBaseURL(ts.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("httpclient: %v", err)
	}
	return NewWithHTTP(hc)
}

func TestListEvents_AllVsPerPet(t *testing.T) {
	var gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{
				"id":           "e1",
				"pet_id":       "p1",
				"type":         "vaccination",
				"title":        "Antirrábica",
				"scheduled_at": "2026-03-15T10:00:00Z",
				"status":       "planned",
			},
		})
	}))

	evs, err := c.ListEvents(context.Background(), "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if gotPath != "/events" {
		t.Fatalf("list all path: %s", gotPath)
	}
	if len(evs) != 1 || evs[0].ID != "e1" || evs[0].Type != events.TypeVaccination {
		t.Fatalf("wrong events: %+v", evs)
	}
	if evs[0].Subject.PetID != "p1" {
		t.Fatalf("subject not mapped: %+v", evs[0].Subject)
	}

	if _, err := c.ListEvents(context.Background(), "p1"); err != nil {
		t.Fatalf("list per pet: %v", err)
	}
	if gotPath != "/pets/p1/events" {
		t.Fatalf("per-pet path: %s", gotPath)
	}
}

func TestPatchEvent_SendsOnlyPresentFields(t *testing.T) {
	var gotBody map[string]any
	var gotMethod, gotPath string

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":           "e1",
			"pet_id":       "p1",
			"type":         "vaccination",
			"title":        "Antirrábica",
			"scheduled_at": "2026-03-20T09:00:00Z",
			"status":       "completed",
		})
	}))

	st := events.StatusCompleted
	got, err := c.PatchEvent(context.Background(), "e1", events.Patch{Status: &st})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}

	if gotMethod != http.MethodPatch || gotPath != "/events/e1" {
		t.Fatalf("wrong request: %s %s", gotMethod, gotPath)
	}
	if gotBody["status"] != "completed" {
		t.Fatalf("status missing in body: %v", gotBody)
	}
	// Campos no parcheados no viajan.
	for _, k := range []string{"title", "description", "scheduled_at", "next_reminder_at", "type"} {
		if _, ok := gotBody[k]; ok {
			t.Errorf("field %s should be omitted, body=%v", k, gotBody)
		}
	}
	if got.Status != events.StatusCompleted {
		t.Fatalf("response not mapped: %+v", got)
	}
}

func TestPatchEvent_FormatsDatesRFC3339(t *testing.T) {
	var gotBody map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "e1"})
	}))

	at := time.Date(2026, 3, 20, 9, 30, 0, 0, time.UTC)
	if _, err := c.PatchEvent(context.Background(), "e1", events.Patch{ScheduledAt: &at}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if gotBody["scheduled_at"] != "2026-03-20T09:30:00Z" {
		t.Fatalf("wrong date encoding: %v", gotBody["scheduled_at"])
	}
}

func TestPatchEvent_NonOKStatusIsHTTPError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))

	st := events.StatusCompleted
	_, err := c.PatchEvent(context.Background(), "e1", events.Patch{Status: &st})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !httpclient.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
}

func TestPatchEvent_EmptyID(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Errorf("must not reach the server")
	}))

	if _, err := c.PatchEvent(context.Background(), "  ", events.Patch{}); err == nil {
		t.Fatalf("expected error for empty id")
	}
}

func TestNew_SendsAuthHeaders(t *testing.T) {
	var gotDebug, gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDebug = r.Header.Get("X-Debug-User-ID")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("[]"))
	}))
	defer ts.Close()

	// Modo dev: user id viaja en el header de debug.
	dev, err := New(Options{BaseURL: ts.URL, UserID: "vet-1"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := dev.ListPatients(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotDebug != "vet-1" || gotAuth != "" {
		t.Fatalf("dev headers: debug=%q auth=%q", gotDebug, gotAuth)
	}

	// Con token manda bearer, aunque haya user id.
	prod, err := New(Options{BaseURL: ts.URL, UserID: "vet-1", Token: "tok-123"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := prod.ListPatients(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("expected error without base url")
	}
}
