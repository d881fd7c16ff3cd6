package pets

import "time"

// Species define las especies soportadas.
// @Enum dog, cat, bird, rodent, reptile
type Species string

const (
	SpeciesDog     Species = "dog"
	SpeciesCat     Species = "cat"
	SpeciesBird    Species = "bird"
	SpeciesRodent  Species = "rodent"
	SpeciesReptile Species = "reptile"
)

// Sex define el sexo de la mascota.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Pet representa el perfil básico de una mascota registrada en la clínica.
// OwnerName va desnormalizado para que el filtro por texto del planboard
// pueda matchear contra el nombre del dueño sin otra consulta.
type Pet struct {
	ID          string
	OwnerUserID string
	OwnerName   string

	Name    string
	Species Species
	Breed   string
	Sex     Sex

	BirthDate *time.Time
	Microchip string

	Images []string

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}
