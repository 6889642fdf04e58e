package greetings

import (
	"context"
	"fmt"
	"time"
)

// CooldownError lo devuelve Create cuando otro saludo del par ganó la carrera.
type CooldownError struct {
	LastSentAt time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("greeting cooldown active since %s", e.LastSentAt.Format(time.RFC3339))
}

type Repository interface {
	LastSentAt(ctx context.Context, senderID, receiverID string) (time.Time, bool, error)
	HasResponded(ctx context.Context, senderID, postID string) (bool, error)

	// Create revalida al escribir: *CooldownError si existe un saludo sender->receiver
	// posterior a notBefore; ErrAlreadyResponded si es un respond duplicado.
	Create(ctx context.Context, g Greeting, notBefore time.Time) error

	GetByID(ctx context.Context, id string) (Greeting, error)

	// ListResponses: respond del post, más nuevos primero.
	ListResponses(ctx context.Context, postID string) ([]Greeting, error)
	ListReceived(ctx context.Context, receiverID string, limit int) ([]Greeting, error)
	HasSentHi(ctx context.Context, senderID string, receiverIDs []string) (map[string]bool, error)

	// Accept, atómico: post open->matched, respuesta pending->accepted,
	// inserta confirm y rechaza los demás respond pendientes del post.
	// ErrPostNotOpen / ErrResponseNotPending si falla una guarda; nada queda aplicado.
	Accept(ctx context.Context, postID, responseID string, confirm Greeting) error
}
