package dogs

import (
	"encoding/json"
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

// RegisterRoutes monta /dogs. Las rutas de recordatorios se montan desde reminders.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/dogs", func(dr chi.Router) {
		dr.Get("/", listDogsHandler(svc))
		dr.Post("/", createDogHandler(svc))

		dr.Get("/{dogID}", getDogHandler(svc))
		dr.Patch("/{dogID}", updateDogHandler(svc))
		dr.Delete("/{dogID}", deleteDogHandler(svc))
	})
}

type createDogRequest struct {
	Name              string   `json:"name"`
	Breed             string   `json:"breed"`
	Gender            Gender   `json:"gender" enums:"male,female,unknown"`
	Birthday          string   `json:"birthday"` // YYYY-MM-DD opcional
	Sterilized        *bool    `json:"sterilized"`
	WeightKg          *float64 `json:"weight_kg"`
	Personality       string   `json:"personality"`
	VaccinationStatus string   `json:"vaccination_status"`
	Avatar            string   `json:"avatar"`
	Notes             string   `json:"notes"`
}

type dogResponse struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Name              string    `json:"name"`
	Breed             string    `json:"breed"`
	Gender            Gender    `json:"gender"`
	Birthday          *string   `json:"birthday"`
	Sterilized        *bool     `json:"sterilized"`
	WeightKg          *float64  `json:"weight_kg"`
	Personality       string    `json:"personality"`
	VaccinationStatus string    `json:"vaccination_status"`
	Avatar            string    `json:"avatar"`
	Notes             string    `json:"notes"`
	Tags              []string  `json:"tags"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// listDogsHandler godoc
// @Summary Listar mis perros
// @Tags dogs
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Success 200 {array} dogResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /dogs [get]
func listDogsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		out := make([]dogResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toDogResponse(d))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// createDogHandler godoc
// @Summary Crear perro
// @Description Crea el perfil de un perro. Nombre, raza y personalidad pasan por moderación.
// @Tags dogs
// @Accept json
// @Produce json
// @Param payload body createDogRequest true "Perfil; birthday en formato YYYY-MM-DD"
// @Success 201 {object} dogResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /dogs [post]
func createDogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		var req createDogRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.Birthday) != "" {
			t, err := time.Parse(dateLayout, strings.TrimSpace(req.Birthday))
			if err != nil {
				httpx.WriteError(w, r, apperr.Validation("birthday must be YYYY-MM-DD"))
				return
			}
			bd = &t
		}

		d, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:              req.Name,
			Breed:             req.Breed,
			Gender:            req.Gender,
			Birthday:          bd,
			Sterilized:        req.Sterilized,
			WeightKg:          req.WeightKg,
			Personality:       req.Personality,
			VaccinationStatus: req.VaccinationStatus,
			Avatar:            req.Avatar,
			Notes:             req.Notes,
		})
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toDogResponse(d))
	}
}

func getDogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		d, err := svc.Get(r.Context(), claims.UserID, chi.URLParam(r, "dogID"))
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toDogResponse(d))
	}
}

// updateDogHandler godoc
// @Summary Actualizar perro (PATCH)
// @Description Solo los campos enviados se modifican; null limpia el campo.
// @Tags dogs
// @Accept json
// @Produce json
// @Param dogID path string true "ID del perro"
// @Success 200 {object} dogResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /dogs/{dogID} [patch]
func updateDogHandler(svc *Service) http.HandlerFunc {
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

		in, err := decodeUpdate(raw)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		d, err := svc.Update(r.Context(), claims.UserID, chi.URLParam(r, "dogID"), in)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toDogResponse(d))
	}
}

func deleteDogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		if err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "dogID")); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.NoContent(w)
	}
}

func decodeUpdate(raw map[string]json.RawMessage) (UpdateInput, error) {
	var (
		in  UpdateInput
		err error
	)
	texts := map[string]*optional.Field[string]{
		"name":               &in.Name,
		"breed":              &in.Breed,
		"personality":        &in.Personality,
		"vaccination_status": &in.VaccinationStatus,
		"avatar":             &in.Avatar,
		"notes":              &in.Notes,
	}
	for key, dst := range texts {
		if *dst, err = optional.Decode[string](raw, key); err != nil {
			return UpdateInput{}, apperr.Validation(err.Error())
		}
	}
	if in.Gender, err = optional.Decode[Gender](raw, "gender"); err != nil {
		return UpdateInput{}, apperr.Validation(err.Error())
	}
	if in.Sterilized, err = optional.Decode[bool](raw, "sterilized"); err != nil {
		return UpdateInput{}, apperr.Validation(err.Error())
	}
	if in.WeightKg, err = optional.Decode[float64](raw, "weight_kg"); err != nil {
		return UpdateInput{}, apperr.Validation(err.Error())
	}

	bd, err := optional.Decode[string](raw, "birthday")
	if err != nil {
		return UpdateInput{}, apperr.Validation(err.Error())
	}
	if bd.Set {
		in.Birthday = optional.Null[time.Time]()
		if bd.Value != nil && strings.TrimSpace(*bd.Value) != "" {
			t, err := time.Parse(dateLayout, strings.TrimSpace(*bd.Value))
			if err != nil {
				return UpdateInput{}, apperr.Validation("birthday must be YYYY-MM-DD or null")
			}
			in.Birthday = optional.Of(t)
		}
	}
	return in, nil
}

func toDogResponse(d Dog) dogResponse {
	var bd *string
	if d.Birthday != nil {
		s := d.Birthday.Format(dateLayout)
		bd = &s
	}
	return dogResponse{
		ID:                d.ID,
		UserID:            d.OwnerUserID,
		Name:              d.Name,
		Breed:             d.Breed,
		Gender:            d.Gender,
		Birthday:          bd,
		Sterilized:        d.Sterilized,
		WeightKg:          d.WeightKg,
		Personality:       d.Personality,
		VaccinationStatus: d.VaccinationStatus,
		Avatar:            d.Avatar,
		Notes:             d.Notes,
		Tags:              Tags(d),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}
