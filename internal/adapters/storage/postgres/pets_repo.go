package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"pet-planboard/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, owner_user_id, owner_name,
	name, species, breed, sex,
	birth_date, microchip,
	images, notes,
	created_at, updated_at
`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		p.ID,
		p.OwnerUserID,
		p.OwnerName,
		p.Name,
		string(p.Species),
		p.Breed,
		string(p.Sex),
		p.BirthDate,
		p.Microchip,
		images,
		p.Notes,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE id = $1
	`, id)

	p, err := scanPet(row)
	if err == sql.ErrNoRows {
		return pets.Pet{}, ErrNotFound
	}
	return p, err
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	return r.listWhere(ctx, "WHERE owner_user_id = $1", ownerUserID)
}

func (r *PetsRepo) List(ctx context.Context) ([]pets.Pet, error) {
	return r.listWhere(ctx, "")
}

func (r *PetsRepo) listWhere(ctx context.Context, where string, args ...any) ([]pets.Pet, error) {
	q := `SELECT ` + petColumns + ` FROM pets ` + where + ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPet(row scannable) (pets.Pet, error) {
	var (
		p       pets.Pet
		species string
		sex     string
		images  []byte
	)

	if err := row.Scan(
		&p.ID,
		&p.OwnerUserID,
		&p.OwnerName,
		&p.Name,
		&species,
		&p.Breed,
		&sex,
		&p.BirthDate,
		&p.Microchip,
		&images,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}

	p.Species = pets.Species(species)
	p.Sex = pets.Sex(sex)

	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return pets.Pet{}, err
		}
	}

	return p, nil
}
