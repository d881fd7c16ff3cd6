package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"pet-planboard/internal/domain/events"
)

type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

const eventColumns = `
	id, owner_user_id,
	pet_id, guest_name,
	type, title, description,
	scheduled_at, next_reminder_at,
	status, attachments,
	created_at, updated_at
`

func (r *EventsRepo) Create(ctx context.Context, e events.CareEvent) error {
	atts, err := json.Marshal(e.Attachments)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO care_events (`+eventColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		e.ID,
		e.OwnerUserID,
		nullIfEmpty(e.Subject.PetID),
		nullIfEmpty(e.Subject.GuestName),
		string(e.Type),
		e.Title,
		e.Description,
		e.ScheduledAt,
		e.NextReminderAt,
		string(e.Status),
		atts,
		e.CreatedAt,
		e.UpdatedAt,
	)
	return err
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (events.CareEvent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return events.CareEvent{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM care_events
		WHERE id = $1
	`, id)

	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return events.CareEvent{}, ErrNotFound
	}
	return e, err
}

func (r *EventsRepo) Update(ctx context.Context, e events.CareEvent) error {
	atts, err := json.Marshal(e.Attachments)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE care_events
		SET title = $2,
		    description = $3,
		    type = $4,
		    scheduled_at = $5,
		    next_reminder_at = $6,
		    status = $7,
		    attachments = $8,
		    updated_at = $9
		WHERE id = $1
	`,
		e.ID,
		e.Title,
		e.Description,
		string(e.Type),
		e.ScheduledAt,
		e.NextReminderAt,
		string(e.Status),
		atts,
		e.UpdatedAt,
	)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *EventsRepo) ListByPet(ctx context.Context, petID string) ([]events.CareEvent, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, nil
	}
	return r.listWhere(ctx, "WHERE pet_id = $1", petID)
}

func (r *EventsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]events.CareEvent, error) {
	return r.listWhere(ctx, "WHERE owner_user_id = $1", ownerUserID)
}

func (r *EventsRepo) List(ctx context.Context) ([]events.CareEvent, error) {
	return r.listWhere(ctx, "")
}

func (r *EventsRepo) listWhere(ctx context.Context, where string, args ...any) ([]events.CareEvent, error) {
	q := `SELECT ` + eventColumns + ` FROM care_events ` + where + ` ORDER BY scheduled_at ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]events.CareEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanEvent(row scannable) (events.CareEvent, error) {
	var (
		e         events.CareEvent
		petID     sql.NullString
		guestName sql.NullString
		typ       string
		status    string
		atts      []byte
	)

	if err := row.Scan(
		&e.ID,
		&e.OwnerUserID,
		&petID,
		&guestName,
		&typ,
		&e.Title,
		&e.Description,
		&e.ScheduledAt,
		&e.NextReminderAt,
		&status,
		&atts,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return events.CareEvent{}, err
	}

	e.Subject = events.Subject{PetID: petID.String, GuestName: guestName.String}
	e.Type = events.TypeID(typ)
	e.Status = events.Status(status)

	if len(atts) > 0 {
		if err := json.Unmarshal(atts, &e.Attachments); err != nil {
			return events.CareEvent{}, err
		}
	}

	return e, nil
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
