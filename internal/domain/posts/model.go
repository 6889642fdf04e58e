package posts

import "time"

// PostType del post.
// @Enum share, wander, meetup
type PostType string

const (
	TypeShare  PostType = "share"
	TypeWander PostType = "wander"
	TypeMeetup PostType = "meetup"
)

func (t PostType) Valid() bool {
	switch t {
	case TypeShare, TypeWander, TypeMeetup:
		return true
	}
	return false
}

// MeetupStatus: open -> matched -> completed|cancelled.
// @Enum open, matched, completed, cancelled
type MeetupStatus string

const (
	MeetupOpen      MeetupStatus = "open"
	MeetupMatched   MeetupStatus = "matched"
	MeetupCompleted MeetupStatus = "completed"
	MeetupCancelled MeetupStatus = "cancelled"
)

func (s MeetupStatus) Valid() bool {
	switch s {
	case MeetupOpen, MeetupMatched, MeetupCompleted, MeetupCancelled:
		return true
	}
	return false
}

// AllowedDurations en minutos.
var AllowedDurations = []int{30, 60, 90, 120, 240}

func ValidDuration(minutes int) bool {
	for _, d := range AllowedDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

type Post struct {
	ID       string
	AuthorID string

	Content  string
	Location string // etiqueta libre

	Latitude  *float64
	Longitude *float64
	Images    []string

	Type   PostType
	Meetup *Meetup // solo Type == meetup

	CreatedAt time.Time
}

// Meetup son los campos propios de un post de tipo meetup.
type Meetup struct {
	TargetLocation  string
	DurationMinutes int
	StartTime       time.Time
	Status          MeetupStatus
}

func (p Post) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

func (p Post) IsMeetup() bool {
	return p.Type == TypeMeetup && p.Meetup != nil
}

// IsOpenMeetup indica si todavía acepta respuestas.
func (p Post) IsOpenMeetup() bool {
	return p.IsMeetup() && p.Meetup.Status == MeetupOpen
}
