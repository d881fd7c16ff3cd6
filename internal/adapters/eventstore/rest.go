// Package eventstore implementa el Store del planboard contra la API REST de
// persistencia. I/O puro: los errores suben tal cual y el board decide
// (resync, no-op). Sin política acá.
package eventstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"pet-planboard/internal/domain/events"
	"pet-planboard/internal/domain/pets"
	"pet-planboard/internal/platform/httpclient"
)

type Client struct {
	http *httpclient.Client

	// userID viaja en X-Debug-User-ID (modo dev) o el token en Authorization.
	userID string
	token  string
}

type Options struct {
	BaseURL string
	Timeout time.Duration

	UserID string // modo dev
	Token  string // bearer, producción
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("eventstore: base url required")
	}

	hc, err := httpclient.NewWithBaseURL(opts.BaseURL, opts.Timeout)
	if err != nil {
		return nil, fmt.Errorf("eventstore: %w", err)
	}

	hc.Headers = map[string]string{}
	if t := strings.TrimSpace(opts.Token); t != "" {
		hc.Headers["Authorization"] = "Bearer " + t
	} else if u := strings.TrimSpace(opts.UserID); u != "" {
		hc.Headers["X-Debug-User-ID"] = u
	}

	return &Client{
		http:   hc,
		userID: opts.UserID,
		token:  opts.Token,
	}, nil
}

// NewWithHTTP inyecta el httpclient directamente (tests).
func NewWithHTTP(hc *httpclient.Client) *Client {
	return &Client{http: hc}
}

// eventDTO refleja eventResponse de la API.
type eventDTO struct {
	ID          string `json:"id"`
	OwnerUserID string `json:"owner_user_id"`

	PetID     string `json:"pet_id,omitempty"`
	GuestName string `json:"guest_name,omitempty"`

	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`

	ScheduledAt    time.Time  `json:"scheduled_at"`
	NextReminderAt *time.Time `json:"next_reminder_at,omitempty"`

	Status string `json:"status"`

	Attachments []attachmentDTO `json:"attachments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type attachmentDTO struct {
	ID       string    `json:"id"`
	FileName string    `json:"file_name"`
	Size     int64     `json:"size"`
	AddedAt  time.Time `json:"added_at"`
}

type petDTO struct {
	ID          string `json:"id"`
	OwnerUserID string `json:"owner_user_id"`
	OwnerName   string `json:"owner_name"`

	Name    string `json:"name"`
	Species string `json:"species"`
	Breed   string `json:"breed"`
	Sex     string `json:"sex"`

	BirthDate *time.Time `json:"birth_date,omitempty"`
	Microchip string     `json:"microchip,omitempty"`

	Images []string `json:"images,omitempty"`
	Notes  string   `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// patchDTO refleja patchEventRequest: solo los campos presentes se tocan.
type patchDTO struct {
	Title          *string `json:"title,omitempty"`
	Description    *string `json:"description,omitempty"`
	ScheduledAt    *string `json:"scheduled_at,omitempty"`
	NextReminderAt *string `json:"next_reminder_at,omitempty"`
	Status         *string `json:"status,omitempty"`
	Type           *string `json:"type,omitempty"`
}

func (c *Client) ListEvents(ctx context.Context, petID string) ([]events.CareEvent, error) {
	path := "/events"
	if petID = strings.TrimSpace(petID); petID != "" {
		path = "/pets/" + url.PathEscape(petID) + "/events"
	}

	var dtos []eventDTO
	if err := c.http.Get(ctx, path, &dtos); err != nil {
		return nil, fmt.Errorf("eventstore: list events: %w", err)
	}

	out := make([]events.CareEvent, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, toEvent(d))
	}
	return out, nil
}

func (c *Client) ListPatients(ctx context.Context) ([]pets.Pet, error) {
	var dtos []petDTO
	if err := c.http.Get(ctx, "/pets", &dtos); err != nil {
		return nil, fmt.Errorf("eventstore: list patients: %w", err)
	}

	out := make([]pets.Pet, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, toPet(d))
	}
	return out, nil
}

func (c *Client) PatchEvent(ctx context.Context, id string, p events.Patch) (events.CareEvent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return events.CareEvent{}, errors.New("eventstore: event id required")
	}

	var dto eventDTO
	if err := c.http.Patch(ctx, "/events/"+url.PathEscape(id), toPatchDTO(p), &dto); err != nil {
		return events.CareEvent{}, fmt.Errorf("eventstore: patch event: %w", err)
	}
	return toEvent(dto), nil
}

func toPatchDTO(p events.Patch) patchDTO {
	out := patchDTO{
		Title:       p.Title,
		Description: p.Description,
	}
	if p.ScheduledAt != nil {
		s := p.ScheduledAt.Format(time.RFC3339)
		out.ScheduledAt = &s
	}
	if p.NextReminderAt != nil {
		s := p.NextReminderAt.Format(time.RFC3339)
		out.NextReminderAt = &s
	}
	if p.Status != nil {
		s := string(*p.Status)
		out.Status = &s
	}
	if p.Type != nil {
		s := string(*p.Type)
		out.Type = &s
	}
	return out
}

func toEvent(d eventDTO) events.CareEvent {
	e := events.CareEvent{
		ID:             d.ID,
		OwnerUserID:    d.OwnerUserID,
		Subject:        events.Subject{PetID: d.PetID, GuestName: d.GuestName},
		Type:           events.TypeID(d.Type),
		Title:          d.Title,
		Description:    d.Description,
		ScheduledAt:    d.ScheduledAt,
		NextReminderAt: d.NextReminderAt,
		Status:         events.Status(d.Status),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	for _, a := range d.Attachments {
		e.Attachments = append(e.Attachments, events.Attachment{
			ID:       a.ID,
			FileName: a.FileName,
			Size:     a.Size,
			AddedAt:  a.AddedAt,
		})
	}
	return e
}

func toPet(d petDTO) pets.Pet {
	return pets.Pet{
		ID:          d.ID,
		OwnerUserID: d.OwnerUserID,
		OwnerName:   d.OwnerName,
		Name:        d.Name,
		Species:     pets.Species(d.Species),
		Breed:       d.Breed,
		Sex:         pets.Sex(d.Sex),
		BirthDate:   d.BirthDate,
		Microchip:   d.Microchip,
		Images:      d.Images,
		Notes:       d.Notes,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
