package pets

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
	Name      string
	OwnerName string
	Species   string
	Breed     string
	Sex       string
	BirthDate *time.Time
	Images    []string
	Notes     string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Species) == "" {
		return Pet{}, ErrInvalidInput
	}

	sex := strings.TrimSpace(in.Sex)
	if sex == "" {
		sex = string(SexUnknown)
	}

	now := s.now()
	p := Pet{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		OwnerName:   strings.TrimSpace(in.OwnerName),
		Name:        strings.TrimSpace(in.Name),
		Species:     Species(strings.TrimSpace(in.Species)),
		Breed:       strings.TrimSpace(in.Breed),
		Sex:         Sex(sex),
		BirthDate:   in.BirthDate,
		Images:      in.Images,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// List devuelve todas las mascotas de la clínica (lo usa el planboard del staff).
func (s *Service) List(ctx context.Context) ([]Pet, error) {
	return s.repo.List(ctx)
}

// OwnerOf expone el ownerUserID de una mascota.
// Evita ciclos de imports entre módulos (pets <-> events).
func (s *Service) OwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.OwnerUserID, nil
}
