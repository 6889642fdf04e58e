package greetings

import "time"

// Type de saludo.
// @Enum hi, respond, accept
type Type string

const (
	TypeHi      Type = "hi"
	TypeRespond Type = "respond"
	TypeAccept  Type = "accept"
)

func (t Type) Valid() bool {
	switch t {
	case TypeHi, TypeRespond, TypeAccept:
		return true
	}
	return false
}

// Status: pending -> accepted|rejected (terminales).
// @Enum pending, accepted, rejected
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

const (
	DefaultHiMessage      = "Hi! Nice to meet you, want to walk our dogs together?"
	DefaultRespondMessage = "I'd love to walk our dogs together!"
	AcceptMessage         = "I accepted your invitation, let's walk our dogs together!"
)

// Greeting es una arista dirigida sender -> receiver.
// PostID es obligatorio para respond/accept.
type Greeting struct {
	ID         string
	SenderID   string
	ReceiverID string
	Message    string
	Type       Type
	PostID     *string
	Status     Status
	CreatedAt  time.Time
}

func (g Greeting) OnPost(postID string) bool {
	return g.PostID != nil && *g.PostID == postID
}
