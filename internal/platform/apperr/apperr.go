package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind clasifica errores de dominio para mapearlos a HTTP.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error es el error tipado que devuelven los services.
// Los sentinels de cada módulo son *Error y se comparan por identidad con errors.Is.
type Error struct {
	Kind    Kind
	Message string

	// RetryAfter > 0 solo en conflictos por cooldown (segundos).
	RetryAfter int
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Validation(msg string) *Error { return New(KindValidation, msg) }
func Auth(msg string) *Error       { return New(KindAuth, msg) }
func Forbidden(msg string) *Error  { return New(KindForbidden, msg) }
func NotFound(msg string) *Error   { return New(KindNotFound, msg) }
func Conflict(msg string) *Error   { return New(KindConflict, msg) }

// RateLimited es un conflicto con tiempo de espera.
func RateLimited(retryAfter int) *Error {
	return &Error{
		Kind:       KindConflict,
		Message:    fmt.Sprintf("please wait %d seconds before greeting this user again", retryAfter),
		RetryAfter: retryAfter,
	}
}

// Unauthorized es el 401 estándar de handlers que exigen sesión.
var Unauthorized = Auth("unauthorized")

// As extrae *Error de la cadena.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus mapea el error a status code. Conflict se expone como 400.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
