package reminders

import "time"

// Type de cuidado recurrente.
// @Enum deworming, vaccination, bath
type Type string

const (
	TypeDeworming   Type = "deworming"
	TypeVaccination Type = "vaccination"
	TypeBath        Type = "bath"
)

func (t Type) Valid() bool {
	switch t {
	case TypeDeworming, TypeVaccination, TypeBath:
		return true
	}
	return false
}

// Reminder: a lo sumo uno por (DogID, Type).
type Reminder struct {
	ID    string
	DogID string
	Type  Type

	// Fechas date-only en UTC.
	LastDate  *time.Time
	NextDate  *time.Time
	CycleDays int

	Notes   string
	Enabled bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
