package greetings

import (
	"context"
	"math"
	"time"
)

// DefaultCooldown entre dos saludos del mismo sender al mismo receiver.
const DefaultCooldown = 3 * time.Minute

type Decision struct {
	Allowed           bool
	RetryAfterSeconds int
}

// Evaluate decide con el último saludo enviado en last.
// El cooldown vence exactamente a last+window.
func Evaluate(last, now time.Time, window time.Duration) Decision {
	remaining := window - now.Sub(last)
	if remaining <= 0 {
		return Decision{Allowed: true}
	}
	return Decision{RetryAfterSeconds: int(math.Ceil(remaining.Seconds()))}
}

type LastSentLookup interface {
	LastSentAt(ctx context.Context, senderID, receiverID string) (time.Time, bool, error)
}

// Limiter aplica el cooldown por par (sender, receiver), independiente del post.
type Limiter struct {
	lookup LastSentLookup
	window time.Duration
}

func NewLimiter(lookup LastSentLookup, window time.Duration) *Limiter {
	if window <= 0 {
		window = DefaultCooldown
	}
	return &Limiter{lookup: lookup, window: window}
}

func (l *Limiter) Window() time.Duration { return l.window }

func (l *Limiter) CanGreet(ctx context.Context, senderID, receiverID string, now time.Time) (Decision, error) {
	last, ok, err := l.lookup.LastSentAt(ctx, senderID, receiverID)
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		return Decision{Allowed: true}, nil
	}
	return Evaluate(last, now, l.window), nil
}
