package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Subject     Subject
	Type        TypeID
	Title       string
	Description string

	ScheduledAt    time.Time
	NextReminderAt *time.Time

	Status Status // opcional; default planned
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (CareEvent, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return CareEvent{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Title) == "" {
		return CareEvent{}, ErrInvalidInput
	}
	if in.ScheduledAt.IsZero() {
		return CareEvent{}, ErrInvalidInput
	}
	if !in.Type.Valid() {
		return CareEvent{}, ErrInvalidInput
	}

	// Subject: exactamente uno de PetID / GuestName
	petID := strings.TrimSpace(in.Subject.PetID)
	guest := strings.TrimSpace(in.Subject.GuestName)
	if (petID == "") == (guest == "") {
		return CareEvent{}, ErrInvalidInput
	}

	st := in.Status
	if st == "" {
		st = StatusPlanned
	}
	if !st.Valid() {
		return CareEvent{}, ErrInvalidInput
	}

	now := s.now()
	e := CareEvent{
		ID:             uuid.NewString(),
		OwnerUserID:    ownerUserID,
		Subject:        Subject{PetID: petID, GuestName: guest},
		Type:           in.Type,
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		ScheduledAt:    in.ScheduledAt,
		NextReminderAt: in.NextReminderAt,
		Status:         st,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return CareEvent{}, err
	}
	return e, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (CareEvent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return CareEvent{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPet(ctx context.Context, petID string) ([]CareEvent, error) {
	return s.repo.ListByPet(ctx, petID)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]CareEvent, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// List devuelve todos los eventos de la clínica (feed del planboard).
func (s *Service) List(ctx context.Context) ([]CareEvent, error) {
	return s.repo.List(ctx)
}

// Patch es una actualización parcial: solo los campos no-nil se aplican.
// Es el contrato que usa el planboard para mutaciones optimistas.
type Patch struct {
	Title          *string
	Description    *string
	ScheduledAt    *time.Time
	NextReminderAt *time.Time
	Status         *Status
	Type           *TypeID
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.ScheduledAt == nil &&
		p.NextReminderAt == nil && p.Status == nil && p.Type == nil
}

// ApplyTo mezcla el patch sobre un evento. Comparte la semántica de merge con
// el lado cliente (coordinador optimista) para que ambos converjan.
func (p Patch) ApplyTo(e *CareEvent) {
	if p.Title != nil {
		e.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		e.Description = strings.TrimSpace(*p.Description)
	}
	if p.ScheduledAt != nil {
		e.ScheduledAt = *p.ScheduledAt
	}
	if p.NextReminderAt != nil {
		e.NextReminderAt = p.NextReminderAt
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
}

func (p Patch) validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrInvalidInput
	}
	if p.ScheduledAt != nil && p.ScheduledAt.IsZero() {
		return ErrInvalidInput
	}
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidInput
	}
	if p.Type != nil && !p.Type.Valid() {
		return ErrInvalidInput
	}
	return nil
}

// ApplyPatch carga el evento, mezcla el patch y persiste.
// Last-write-wins: no hay número de versión por evento (limitación aceptada).
func (s *Service) ApplyPatch(ctx context.Context, id string, p Patch) (CareEvent, error) {
	id = strings.TrimSpace(id)
	if id == "" || p.Empty() {
		return CareEvent{}, ErrInvalidInput
	}
	if err := p.validate(); err != nil {
		return CareEvent{}, err
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return CareEvent{}, err
	}

	p.ApplyTo(&e)
	e.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, e); err != nil {
		return CareEvent{}, err
	}
	return e, nil
}

// AddAttachment registra la referencia de un adjunto ya subido al blob store.
func (s *Service) AddAttachment(ctx context.Context, eventID, fileName string, size int64) (CareEvent, Attachment, error) {
	eventID = strings.TrimSpace(eventID)
	fileName = strings.TrimSpace(fileName)
	if eventID == "" || fileName == "" || size < 0 {
		return CareEvent{}, Attachment{}, ErrInvalidInput
	}

	e, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return CareEvent{}, Attachment{}, err
	}

	att := Attachment{
		ID:       uuid.NewString(),
		FileName: fileName,
		Size:     size,
		AddedAt:  s.now(),
	}
	e.Attachments = append(e.Attachments, att)
	e.UpdatedAt = att.AddedAt

	if err := s.repo.Update(ctx, e); err != nil {
		return CareEvent{}, Attachment{}, err
	}
	return e, att, nil
}
