package events

// Status define el estado de un evento de cuidado.
// Planned es "activo"; Completed y Missed son terminales ("cerrado") para el planboard.
// @Enum planned, completed, missed
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusCompleted Status = "completed"
	StatusMissed    Status = "missed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusCompleted, StatusMissed:
		return true
	}
	return false
}

// Closed indica si el estado es terminal a efectos de clasificación.
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusMissed
}

// TypeID referencia una entrada del diccionario de tipos de evento.
type TypeID string

const (
	TypeAppointment TypeID = "appointment"
	TypeVaccination TypeID = "vaccination"
	TypeDeworming   TypeID = "deworming"
	TypeMedication  TypeID = "medication"
	TypeGrooming    TypeID = "grooming"
	TypeReminder    TypeID = "reminder"
	TypeOther       TypeID = "other"
)

// TypeDescriptor es la entrada del diccionario: label e icono para filtrar/etiquetar.
// El core solo usa el ID; label/icon son para presentación.
type TypeDescriptor struct {
	ID    TypeID `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

var typeDictionary = []TypeDescriptor{
	{ID: TypeAppointment, Label: "Appointment", Icon: "calendar"},
	{ID: TypeVaccination, Label: "Vaccination", Icon: "syringe"},
	{ID: TypeDeworming, Label: "Deworming", Icon: "pill"},
	{ID: TypeMedication, Label: "Medication", Icon: "capsule"},
	{ID: TypeGrooming, Label: "Grooming", Icon: "scissors"},
	{ID: TypeReminder, Label: "Reminder", Icon: "bell"},
	{ID: TypeOther, Label: "Other", Icon: "paw"},
}

// Types devuelve el diccionario completo (copia, para que nadie lo mute).
func Types() []TypeDescriptor {
	out := make([]TypeDescriptor, len(typeDictionary))
	copy(out, typeDictionary)
	return out
}

func TypeByID(id TypeID) (TypeDescriptor, bool) {
	for _, d := range typeDictionary {
		if d.ID == id {
			return d, true
		}
	}
	return TypeDescriptor{}, false
}

func (t TypeID) Valid() bool {
	_, ok := TypeByID(t)
	return ok
}
