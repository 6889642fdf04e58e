package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"pawpals/internal/platform/apperr"
	"pawpals/internal/platform/logger"
)

// ErrorResponse es el envelope de error de toda la API.
type ErrorResponse struct {
	Detail            string `json:"detail"`
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteDetail escribe {detail} con el status indicado.
func WriteDetail(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, ErrorResponse{Detail: detail})
}

// WriteError traduce err a status + envelope. Los 5xx se loguean y no exponen detalle.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", map[string]any{
			"error":  err,
			"method": r.Method,
			"path":   r.URL.Path,
		})
		WriteDetail(w, status, "internal error")
		return
	}

	resp := ErrorResponse{Detail: err.Error()}
	if e, ok := apperr.As(err); ok {
		resp.Detail = e.Message
		if e.RetryAfter > 0 {
			resp.RetryAfterSeconds = e.RetryAfter
			w.Header().Set("Retry-After", strconv.Itoa(e.RetryAfter))
		}
	}
	WriteJSON(w, status, resp)
}

// DecodeJSON decodifica el body en dst. Body vacío => dst queda en zero value.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Validation("invalid json")
	}
	return nil
}

// DecodeAndValidate decodifica y valida con tags `validate`.
func DecodeAndValidate(r *http.Request, dst any) error {
	if err := DecodeJSON(r, dst); err != nil {
		return err
	}
	return ValidateStruct(dst)
}

// DecodePatch devuelve los campos presentes del body, para distinguir
// "no enviado" de null en PATCH.
func DecodePatch(r *http.Request) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := DecodeJSON(r, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]json.RawMessage{}
	}
	return raw, nil
}

// IsNull indica si un campo presente vino como null.
func IsNull(v json.RawMessage) bool {
	return string(v) == "null"
}
