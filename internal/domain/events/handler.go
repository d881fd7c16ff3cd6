package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pet-planboard/internal/domain/pets"
	"pet-planboard/internal/middleware"
	"pet-planboard/internal/ports/blob"

	"github.com/go-chi/chi/v5"
)

const maxAttachmentSize = 10 << 20 // 10MB

func RegisterRoutes(r chi.Router, svc *Service, petsSvc *pets.Service, blobs blob.Store) {
	r.Get("/event-types", listEventTypesHandler())

	r.Route("/pets/{petID}/events", func(er chi.Router) {
		er.Post("/", createPetEventHandler(svc, petsSvc))
		er.Get("/", listPetEventsHandler(svc, petsSvc))
	})

	r.Route("/events", func(er chi.Router) {
		er.Get("/", listEventsHandler(svc))
		er.Post("/", createGuestEventHandler(svc))
		er.Patch("/{eventID}", patchEventHandler(svc))

		er.Post("/{eventID}/attachments", addAttachmentHandler(svc, blobs))
		er.Get("/{eventID}/attachments/{attachmentID}", getAttachmentHandler(svc, blobs))
	})
}

// createEventRequest es el cuerpo para registrar un evento de cuidado.
type createEventRequest struct {
	Type        TypeID `json:"type" enums:"appointment,vaccination,deworming,medication,grooming,reminder,other"`
	Title       string `json:"title"`
	Description string `json:"description"`

	ScheduledAt    string `json:"scheduled_at"` // RFC3339
	NextReminderAt string `json:"next_reminder_at,omitempty"`

	Status Status `json:"status,omitempty"` // opcional, default planned

	// Solo para POST /events (sujeto invitado, sin perfil de mascota).
	GuestName string `json:"guest_name,omitempty"`
}

type attachmentResponse struct {
	ID       string    `json:"id"`
	FileName string    `json:"file_name"`
	Size     int64     `json:"size"`
	AddedAt  time.Time `json:"added_at"`
}

// eventResponse representa un evento de cuidado devuelto por la API.
type eventResponse struct {
	ID          string `json:"id"`
	OwnerUserID string `json:"owner_user_id"`

	PetID     string `json:"pet_id,omitempty"`
	GuestName string `json:"guest_name,omitempty"`

	Type        TypeID `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`

	ScheduledAt    time.Time  `json:"scheduled_at"`
	NextReminderAt *time.Time `json:"next_reminder_at,omitempty"`

	Status Status `json:"status"`

	Attachments []attachmentResponse `json:"attachments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// patchEventRequest es una actualización parcial: los campos ausentes no se tocan.
type patchEventRequest struct {
	Title          *string `json:"title,omitempty"`
	Description    *string `json:"description,omitempty"`
	ScheduledAt    *string `json:"scheduled_at,omitempty"` // RFC3339
	NextReminderAt *string `json:"next_reminder_at,omitempty"`
	Status         *Status `json:"status,omitempty"`
	Type           *TypeID `json:"type,omitempty"`
}

// listEventTypesHandler godoc
// @Summary Diccionario de tipos de evento
// @Description Devuelve el diccionario estático de tipos (id, label, icon) que usan los filtros del planboard.
// @Tags events
// @Produce json
// @Success 200 {array} TypeDescriptor
// @Router /event-types [get]
func listEventTypesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Types())
	}
}

// createPetEventHandler godoc
// @Summary Crear evento para una mascota
// @Description Crea un evento de cuidado para la mascota indicada. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>`.
// @Tags events
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body createEventRequest true "Datos del evento; scheduled_at en RFC3339"
// @Success 201 {object} eventResponse
// @Failure 400 {string} string "invalid json / scheduled_at inválido / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/events [post]
func createPetEventHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		p, err := petsSvc.GetByID(r.Context(), petID)
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		var req createEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in, err := toCreateInput(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		in.Subject = Subject{PetID: petID}

		// El evento queda a nombre del dueño de la mascota, no de quien lo registró.
		e, err := svc.Create(r.Context(), p.OwnerUserID, in)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toEventResponse(e))
	}
}

// createGuestEventHandler godoc
// @Summary Crear evento para un invitado
// @Description Crea un evento de cuidado con sujeto invitado (guest_name), sin perfil de mascota. El evento queda a nombre del usuario autenticado.
// @Tags events
// @Accept json
// @Produce json
// @Param payload body createEventRequest true "Datos del evento; guest_name obligatorio"
// @Success 201 {object} eventResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Router /events [post]
func createGuestEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.GuestName) == "" {
			http.Error(w, "guest_name required", http.StatusBadRequest)
			return
		}

		in, err := toCreateInput(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		in.Subject = Subject{GuestName: req.GuestName}

		e, err := svc.Create(r.Context(), claims.UserID, in)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toEventResponse(e))
	}
}

// listPetEventsHandler godoc
// @Summary Listar eventos de una mascota
// @Tags events
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {array} eventResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/events [get]
func listPetEventsHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		if _, err := petsSvc.GetByID(r.Context(), petID); err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}

		items, err := svc.ListByPet(r.Context(), petID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toEventResponses(items))
	}
}

// listEventsHandler godoc
// @Summary Listar todos los eventos
// @Description Feed completo de eventos para el planboard. El particionado mine/other se hace del lado del board.
// @Tags events
// @Produce json
// @Success 200 {array} eventResponse
// @Failure 401 {string} string "unauthorized"
// @Router /events [get]
func listEventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// owner=me restringe al usuario autenticado; por defecto devuelve todo.
		if r.URL.Query().Get("owner") == "me" {
			items, err := svc.ListByOwner(r.Context(), claims.UserID)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, toEventResponses(items))
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponses(items))
	}
}

// patchEventHandler godoc
// @Summary Actualización parcial de un evento
// @Description Aplica un patch (title, description, scheduled_at, next_reminder_at, status, type). Es el endpoint que usa el coordinador de mutaciones optimistas del planboard; un fallo aquí dispara resync del lado cliente.
// @Tags events
// @Accept json
// @Produce json
// @Param eventID path string true "ID del evento"
// @Param payload body patchEventRequest true "Campos a actualizar"
// @Success 200 {object} eventResponse
// @Failure 400 {string} string "invalid json / patch inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "event not found"
// @Router /events/{eventID} [patch]
func patchEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		eventID := chi.URLParam(r, "eventID")

		var req patchEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		patch, err := toPatch(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		updated, err := svc.ApplyPatch(r.Context(), eventID, patch)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, "invalid patch", http.StatusBadRequest)
				return
			}
			if strings.Contains(strings.ToLower(err.Error()), "not found") {
				http.Error(w, "event not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toEventResponse(updated))
	}
}

// addAttachmentHandler godoc
// @Summary Adjuntar un archivo a un evento
// @Description Sube el cuerpo crudo del request como adjunto. El nombre va en el query param `filename`.
// @Tags events
// @Accept octet-stream
// @Produce json
// @Param eventID path string true "ID del evento"
// @Param filename query string true "Nombre del archivo"
// @Success 201 {object} attachmentResponse
// @Failure 400 {string} string "filename required / body vacío"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "event not found"
// @Router /events/{eventID}/attachments [post]
func addAttachmentHandler(svc *Service, blobs blob.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		eventID := chi.URLParam(r, "eventID")
		fileName := strings.TrimSpace(r.URL.Query().Get("filename"))
		if fileName == "" {
			http.Error(w, "filename required", http.StatusBadRequest)
			return
		}

		data, err := io.ReadAll(io.LimitReader(r.Body, maxAttachmentSize))
		if err != nil || len(data) == 0 {
			http.Error(w, "empty body", http.StatusBadRequest)
			return
		}

		if _, err := svc.GetByID(r.Context(), eventID); err != nil {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}

		_, att, err := svc.AddAttachment(r.Context(), eventID, fileName, int64(len(data)))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if err := blobs.Put(r.Context(), attachmentKey(eventID, att.ID), data); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, attachmentResponse{
			ID:       att.ID,
			FileName: att.FileName,
			Size:     att.Size,
			AddedAt:  att.AddedAt,
		})
	}
}

// getAttachmentHandler godoc
// @Summary Descargar un adjunto
// @Tags events
// @Produce octet-stream
// @Param eventID path string true "ID del evento"
// @Param attachmentID path string true "ID del adjunto"
// @Success 200 {string} binary
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "attachment not found"
// @Router /events/{eventID}/attachments/{attachmentID} [get]
func getAttachmentHandler(svc *Service, blobs blob.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		eventID := chi.URLParam(r, "eventID")
		attID := chi.URLParam(r, "attachmentID")

		e, err := svc.GetByID(r.Context(), eventID)
		if err != nil {
			http.Error(w, "event not found", http.StatusNotFound)
			return
		}

		var found *Attachment
		for i := range e.Attachments {
			if e.Attachments[i].ID == attID {
				found = &e.Attachments[i]
				break
			}
		}
		if found == nil {
			http.Error(w, "attachment not found", http.StatusNotFound)
			return
		}

		data, err := blobs.Get(r.Context(), attachmentKey(eventID, attID))
		if err != nil {
			http.Error(w, "attachment not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", found.FileName))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func attachmentKey(eventID, attID string) string {
	return eventID + "/" + attID
}

func toCreateInput(req createEventRequest) (CreateInput, error) {
	t, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return CreateInput{}, errors.New("scheduled_at must be RFC3339")
	}

	in := CreateInput{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		ScheduledAt: t,
		Status:      req.Status,
	}

	if strings.TrimSpace(req.NextReminderAt) != "" {
		nr, err := time.Parse(time.RFC3339, req.NextReminderAt)
		if err != nil {
			return CreateInput{}, errors.New("next_reminder_at must be RFC3339")
		}
		in.NextReminderAt = &nr
	}

	return in, nil
}

func toPatch(req patchEventRequest) (Patch, error) {
	p := Patch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Type:        req.Type,
	}

	if req.ScheduledAt != nil {
		t, err := time.Parse(time.RFC3339, *req.ScheduledAt)
		if err != nil {
			return Patch{}, errors.New("scheduled_at must be RFC3339")
		}
		p.ScheduledAt = &t
	}
	if req.NextReminderAt != nil {
		t, err := time.Parse(time.RFC3339, *req.NextReminderAt)
		if err != nil {
			return Patch{}, errors.New("next_reminder_at must be RFC3339")
		}
		p.NextReminderAt = &t
	}

	return p, nil
}

func toEventResponse(e CareEvent) eventResponse {
	out := eventResponse{
		ID:             e.ID,
		OwnerUserID:    e.OwnerUserID,
		PetID:          e.Subject.PetID,
		GuestName:      e.Subject.GuestName,
		Type:           e.Type,
		Title:          e.Title,
		Description:    e.Description,
		ScheduledAt:    e.ScheduledAt,
		NextReminderAt: e.NextReminderAt,
		Status:         e.Status,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
	for _, a := range e.Attachments {
		out.Attachments = append(out.Attachments, attachmentResponse{
			ID:       a.ID,
			FileName: a.FileName,
			Size:     a.Size,
			AddedAt:  a.AddedAt,
		})
	}
	return out
}

func toEventResponses(items []CareEvent) []eventResponse {
	out := make([]eventResponse, 0, len(items))
	for _, e := range items {
		out = append(out, toEventResponse(e))
	}
	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
