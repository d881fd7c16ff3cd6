package planboard

import (
	"strings"

	"pet-planboard/internal/domain/events"
	"pet-planboard/internal/domain/pets"
)

// ViewMode selecciona la partición visible del listado de mascotas.
type ViewMode string

const (
	ViewMine   ViewMode = "mine"
	ViewOthers ViewMode = "others"
)

// Filters son los parámetros del pipeline de filtrado de mascotas.
// Valores vacíos significan "sin filtro" en cada etapa.
type Filters struct {
	Query   string
	Sex     pets.Sex
	Species []pets.Species

	// EventType activa la tercera etapa: solo mascotas con al menos
	// un evento de ese tipo. Vacío = etapa identidad.
	EventType events.TypeID

	Mode ViewMode
}

// FilterByAttributes es la etapa 1: texto libre contra nombre de la mascota y
// del dueño (substring case-insensitive), sexo exacto y pertenencia de especie.
func FilterByAttributes(patients []pets.Pet, f Filters) []pets.Pet {
	q := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]pets.Pet, 0, len(patients))
	for _, p := range patients {
		if q != "" {
			hay := strings.ToLower(p.Name + " " + p.OwnerName)
			if !strings.Contains(hay, q) {
				continue
			}
		}
		if f.Sex != "" && p.Sex != f.Sex {
			continue
		}
		if len(f.Species) > 0 && !speciesMatch(p.Species, f.Species) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func speciesMatch(s pets.Species, allowed []pets.Species) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

// PartitionByRole es la etapa 2: separa "mine" (dueño = usuario actual) de
// "others" y devuelve solo la partición pedida.
func PartitionByRole(patients []pets.Pet, currentUserID string, mode ViewMode) []pets.Pet {
	out := make([]pets.Pet, 0, len(patients))
	for _, p := range patients {
		mine := p.OwnerUserID == currentUserID
		if (mode == ViewMine) == mine {
			out = append(out, p)
		}
	}
	return out
}

// FilterByEventType es la etapa 3: con filtro activo, retiene solo mascotas con
// al menos un evento del tipo; sin filtro es identidad. Mascotas sin eventos
// quedan afuera solo cuando el filtro está activo (ningún evento puede matchear).
func FilterByEventType(patients []pets.Pet, evs []events.CareEvent, t events.TypeID) []pets.Pet {
	if t == "" {
		return patients
	}

	withType := make(map[string]bool)
	for _, e := range evs {
		if e.Type == t && e.Subject.PetID != "" {
			withType[e.Subject.PetID] = true
		}
	}

	out := make([]pets.Pet, 0, len(patients))
	for _, p := range patients {
		if withType[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// VisiblePatients compone las tres etapas en orden. Es pura: el auto-switch
// de partición (one-shot) vive en el Board, no acá.
func VisiblePatients(patients []pets.Pet, evs []events.CareEvent, f Filters, currentUserID string) []pets.Pet {
	mode := f.Mode
	if mode == "" {
		mode = ViewMine
	}

	out := FilterByAttributes(patients, f)
	out = PartitionByRole(out, currentUserID, mode)
	out = FilterByEventType(out, evs, f.EventType)
	return out
}
