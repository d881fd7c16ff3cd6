package events

import "time"

// Subject identifica al sujeto del evento: una mascota registrada (PetID)
// o un invitado sin perfil (GuestName). Exactamente uno debe estar seteado.
type Subject struct {
	PetID     string
	GuestName string
}

func (s Subject) IsGuest() bool {
	return s.PetID == "" && s.GuestName != ""
}

// Attachment es una referencia a un archivo adjunto. Inmutable para el core:
// se agrega en el backend y el planboard solo la muestra.
type Attachment struct {
	ID       string
	FileName string
	Size     int64
	AddedAt  time.Time
}

// CareEvent es un evento de cuidado (cita, vacuna, recordatorio) de una mascota.
// La pertenencia a un bucket del planboard se calcula siempre de Status +
// ScheduledAt; nunca se persiste.
type CareEvent struct {
	ID          string
	OwnerUserID string

	Subject Subject

	Type TypeID

	Title       string
	Description string

	// ScheduledAt es la clave de orden y de bucketing.
	ScheduledAt time.Time
	// NextReminderAt es informativo; el scanner de recordatorios no lo usa.
	NextReminderAt *time.Time

	Status Status

	Attachments []Attachment

	CreatedAt time.Time
	UpdatedAt time.Time
}
