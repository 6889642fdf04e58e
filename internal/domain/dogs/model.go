package dogs

import "time"

// Gender del perro. "" = no informado.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

func (g Gender) Valid() bool {
	switch g {
	case "", GenderMale, GenderFemale, GenderUnknown:
		return true
	}
	return false
}

// Label es la etiqueta legible usada en tags.
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "boy"
	case GenderFemale:
		return "girl"
	case GenderUnknown:
		return "unknown"
	}
	return ""
}

// Dog es el perfil de un perro; solo su dueño lo modifica.
type Dog struct {
	ID          string
	OwnerUserID string

	Name              string
	Breed             string
	Gender            Gender
	Birthday          *time.Time // date-only
	Sterilized        *bool
	WeightKg          *float64
	Personality       string // texto libre, tokens separados por comas/espacios
	VaccinationStatus string
	Avatar            string
	Notes             string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary es la vista compacta del perro principal (nearby, respuestas).
type Summary struct {
	ID     string
	Name   string
	Breed  string
	Avatar string
	Tags   []string
}

// OwnerDogs agrega el perro principal y el total de perros de un usuario.
type OwnerDogs struct {
	Primary *Summary
	Count   int
}
