package reminders

import (
	"net/http"
	"strings"
	"time"

	"pawpals/internal/middleware"
	"pawpals/internal/platform/apperr"
	"pawpals/internal/platform/httpx"
	"pawpals/internal/platform/optional"

	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/dogs/{dogID}/reminders", func(rr chi.Router) {
		rr.Get("/", listRemindersHandler(svc))
		rr.Post("/", upsertReminderHandler(svc))

		rr.Get("/{reminderID}", getReminderHandler(svc))
		rr.Patch("/{reminderID}", patchReminderHandler(svc))
		rr.Delete("/{reminderID}", deleteReminderHandler(svc))
	})
}

// upsertReminderRequest crea o sobrescribe el recordatorio de un tipo.
type upsertReminderRequest struct {
	Type      Type   `json:"reminder_type" enums:"deworming,vaccination,bath"`
	LastDate  string `json:"last_date"` // YYYY-MM-DD
	CycleDays int    `json:"cycle_days"`
	Notes     string `json:"notes"`
}

type reminderResponse struct {
	ID        string    `json:"id"`
	DogID     string    `json:"dog_id"`
	Type      Type      `json:"reminder_type"`
	LastDate  *string   `json:"last_date"`
	NextDate  *string   `json:"next_date"`
	CycleDays int       `json:"cycle_days"`
	Notes     string    `json:"notes"`
	Enabled   bool      `json:"is_enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// listRemindersHandler godoc
// @Summary Listar recordatorios de un perro
// @Tags reminders
// @Produce json
// @Param dogID path string true "ID del perro"
// @Success 200 {array} reminderResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse "dog not found"
// @Router /dogs/{dogID}/reminders [get]
func listRemindersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		items, err := svc.List(r.Context(), claims.UserID, chi.URLParam(r, "dogID"))
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		out := make([]reminderResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toReminderResponse(it))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// upsertReminderHandler godoc
// @Summary Crear o sobrescribir recordatorio
// @Description Un recordatorio por tipo y perro. next_date = last_date + cycle_days. 201 si se creó, 200 si se sobrescribió.
// @Tags reminders
// @Accept json
// @Produce json
// @Param dogID path string true "ID del perro"
// @Param payload body upsertReminderRequest true "Tipo, última fecha (YYYY-MM-DD) y ciclo en días"
// @Success 200 {object} reminderResponse
// @Success 201 {object} reminderResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /dogs/{dogID}/reminders [post]
func upsertReminderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		var req upsertReminderRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		var last *time.Time
		if s := strings.TrimSpace(req.LastDate); s != "" {
			t, err := time.Parse(dateLayout, s)
			if err != nil {
				httpx.WriteError(w, r, apperr.Validation("last_date must be YYYY-MM-DD"))
				return
			}
			last = &t
		}

		rem, created, err := svc.Upsert(r.Context(), claims.UserID, chi.URLParam(r, "dogID"), UpsertInput{
			Type:      req.Type,
			LastDate:  last,
			CycleDays: req.CycleDays,
			Notes:     req.Notes,
		})
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		httpx.WriteJSON(w, status, toReminderResponse(rem))
	}
}

func getReminderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		rem, err := svc.Get(r.Context(), claims.UserID, chi.URLParam(r, "dogID"), chi.URLParam(r, "reminderID"))
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toReminderResponse(rem))
	}
}

// patchReminderHandler godoc
// @Summary Actualizar recordatorio (PATCH)
// @Description Mezcla los campos enviados. "last_date": null limpia la fecha y también next_date.
// @Tags reminders
// @Accept json
// @Produce json
// @Param dogID path string true "ID del perro"
// @Param reminderID path string true "ID del recordatorio"
// @Success 200 {object} reminderResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /dogs/{dogID}/reminders/{reminderID} [patch]
func patchReminderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		raw, err := httpx.DecodePatch(r)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		var in PatchInput
		last, err := optional.Decode[string](raw, "last_date")
		if err != nil {
			httpx.WriteError(w, r, apperr.Validation(err.Error()))
			return
		}
		if last.Set {
			in.LastDate = optional.Null[time.Time]()
			if last.Value != nil && strings.TrimSpace(*last.Value) != "" {
				t, err := time.Parse(dateLayout, strings.TrimSpace(*last.Value))
				if err != nil {
					httpx.WriteError(w, r, apperr.Validation("last_date must be YYYY-MM-DD or null"))
					return
				}
				in.LastDate = optional.Of(t)
			}
		}

		cycle, err := optional.Decode[int](raw, "cycle_days")
		if err != nil {
			httpx.WriteError(w, r, apperr.Validation(err.Error()))
			return
		}
		in.CycleDays = cycle.Value

		if in.Notes, err = optional.Decode[string](raw, "notes"); err != nil {
			httpx.WriteError(w, r, apperr.Validation(err.Error()))
			return
		}

		enabled, err := optional.Decode[bool](raw, "is_enabled")
		if err != nil {
			httpx.WriteError(w, r, apperr.Validation(err.Error()))
			return
		}
		in.Enabled = enabled.Value

		rem, err := svc.Patch(r.Context(), claims.UserID, chi.URLParam(r, "dogID"), chi.URLParam(r, "reminderID"), in)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toReminderResponse(rem))
	}
}

func deleteReminderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		if err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "dogID"), chi.URLParam(r, "reminderID")); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.NoContent(w)
	}
}

func toReminderResponse(r Reminder) reminderResponse {
	return reminderResponse{
		ID:        r.ID,
		DogID:     r.DogID,
		Type:      r.Type,
		LastDate:  formatDate(r.LastDate),
		NextDate:  formatDate(r.NextDate),
		CycleDays: r.CycleDays,
		Notes:     r.Notes,
		Enabled:   r.Enabled,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
