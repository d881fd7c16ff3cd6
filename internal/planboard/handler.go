package planboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-planboard/internal/domain/events"
	"pet-planboard/internal/domain/pets"
	"pet-planboard/internal/planboard/gesture"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta la superficie HTTP del board para la capa de
// presentación. src es el reconocedor de gestos de la sesión; el board queda
// suscripto a sus drags al montar.
func RegisterRoutes(r chi.Router, b *Board, src gesture.Source) {
	src.OnDragEnd(func(res gesture.Result) {
		b.BeginTransition(DragResult{SourceKey: res.SourceKey, TargetKey: res.TargetKey})
	})

	r.Route("/board", func(br chi.Router) {
		br.Get("/patients", listPatientsHandler(b))
		br.Put("/filters", setFiltersHandler(b))

		br.Get("/pets/{petID}", bucketsHandler(b))
		br.Get("/pets/{petID}/history", fullHistoryHandler(b))

		br.Post("/input", inputHandler(src))
		br.Get("/capture", pendingCaptureHandler(b))
		br.Post("/capture/confirm", confirmCaptureHandler(b))
		br.Post("/capture/cancel", cancelCaptureHandler(b))

		br.Post("/events/{eventID}/toggle", toggleStatusHandler(b))
		br.Post("/refresh", refreshHandler(b))
	})
}

type cardResponse struct {
	ID          string    `json:"id"`
	PetID       string    `json:"pet_id,omitempty"`
	GuestName   string    `json:"guest_name,omitempty"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	Overdue     bool      `json:"overdue,omitempty"`
}

type bucketsResponse struct {
	Urgent       []cardResponse `json:"urgent"`
	Plans        []cardResponse `json:"plans"`
	History      []cardResponse `json:"history"`
	HistoryTotal int            `json:"history_total"`
}

type captureResponse struct {
	EventID string    `json:"event_id"`
	PetID   string    `json:"pet_id"`
	Target  Bucket    `json:"target"`
	Default time.Time `json:"default"`
	Presets []struct {
		Label string    `json:"label"`
		At    time.Time `json:"at"`
	} `json:"presets"`
}

func bucketsHandler(b *Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bk := b.Buckets(chi.URLParam(r, "petID"), time.Now())
		writeJSON(w, http.StatusOK, bucketsResponse{
			Urgent:       toCardResponses(bk.Urgent),
			Plans:        toCardResponses(bk.Plans),
			History:      toCardResponses(bk.History),
			HistoryTotal: bk.HistoryTotal,
		})
	}
}

func fullHistoryHandler(b *Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cards := b.FullHistory(chi.URLParam(r, "petID"), time.Now())
		writeJSON(w, http.StatusOK, toCardResponses(cards))
	}
}

func listPatientsHandler(b *Board) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		type patientResponse struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			OwnerName string `json:"owner_name"`
			Species   string `json:"species"`
			Sex       string `json:"sex"`
		}

		visible := b.VisiblePatients()
		out := make([]patientResponse, 0, len(visible))
		for _, p := range visible {
			out = append(out, patientResponse{
				ID:        p.ID,
				Name:      p.Name,
				OwnerName: p.OwnerName,
				Species:   string(p.Species),
				Sex:       string(p.Sex),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type filtersRequest struct {
	Query     string   `json:"query"`
	Sex       string   `json:"sex"`
	Species   []string `json:"species"`
	EventType string   `json:"event_type"`
	Mode      string   `json:"mode"`
}

func setFiltersHandler(b *Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req filtersRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		f := Filters{
			Query:     req.Query,
			Sex:       pets.Sex(req.Sex),
			EventType: events.TypeID(req.EventType),
			Mode:      ViewMode(req.Mode),
		}
		for _, s := range req.Species {
			f.Species = append(f.Species, pets.Species(s))
		}

		b.SetFilters(f)
		w.WriteHeader(http.StatusNoContent)
	}
}

type inputRequest struct {
	Phase     string  `json:"phase"`
	At        string  `json:"at"` // RFC3339Nano
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	SourceKey string  `json:"source_key,omitempty"`
	TargetKey string  `json:"target_key,omitempty"`
}

// inputHandler recibe muestras crudas de input y las pasa al reconocedor.
// El drag terminado entra al board por el callback registrado arriba.
func inputHandler(src gesture.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req inputRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		at := time.Now()
		if strings.TrimSpace(req.At) != "" {
			t, err := time.Parse(time.RFC3339Nano, req.At)
			if err != nil {
				http.Error(w, "at must be RFC3339", http.StatusBadRequest)
				return
			}
			at = t
		}

		src.Feed(gesture.Sample{
			Phase:     gesture.Phase(req.Phase),
			At:        at,
			X:         req.X,
			Y:         req.Y,
			SourceKey: req.SourceKey,
			TargetKey: req.TargetKey,
		})
		w.WriteHeader(http.StatusAccepted)
	}
}

func pendingCaptureHandler(b *Board) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s := b.PendingCapture()
		if s == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		out := captureResponse{
			EventID: s.EventID,
			PetID:   s.SourcePetID,
			Target:  s.Target,
			Default: s.Default,
		}
		for _, p := range s.Presets {
			out.Presets = append(out.Presets, struct {
				Label string    `json:"label"`
				At    time.Time `json:"at"`
			}{p.Label, p.At})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func confirmCaptureHandler(b *Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			At string `json:"at"` // RFC3339
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var chosen time.Time
		if strings.TrimSpace(req.At) != "" {
			t, err := time.Parse(time.RFC3339, req.At)
			if err != nil {
				http.Error(w, "at must be RFC3339", http.StatusBadRequest)
				return
			}
			chosen = t
		}

		if err := b.ConfirmCapture(chosen); err != nil {
			switch {
			case errors.Is(err, ErrNoSession):
				http.Error(w, "no capture session", http.StatusConflict)
			case errors.Is(err, ErrNoDate):
				// La captura se niega a confirmar sin fecha; la sesión sigue abierta.
				http.Error(w, "date required", http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func cancelCaptureHandler(b *Board) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		b.CancelCapture()
		w.WriteHeader(http.StatusNoContent)
	}
}

func toggleStatusHandler(b *Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Completed bool `json:"completed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		b.ToggleStatus(chi.URLParam(r, "eventID"), req.Completed)
		w.WriteHeader(http.StatusNoContent)
	}
}

func refreshHandler(b *Board) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := b.Refresh(r.Context()); err != nil {
			http.Error(w, "refresh failed", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toCardResponses(cards []Card) []cardResponse {
	out := make([]cardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardResponse{
			ID:          c.ID,
			PetID:       c.Subject.PetID,
			GuestName:   c.Subject.GuestName,
			Type:        string(c.Type),
			Title:       c.Title,
			ScheduledAt: c.ScheduledAt,
			Status:      string(c.Status),
			Overdue:     c.Overdue,
		})
	}
	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
