package nearby

import (
	"net/http"
	"strconv"
	"strings"

	"pawpals/internal/domain/geo"
	"pawpals/internal/middleware"
	"pawpals/internal/platform/apperr"
	"pawpals/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

const fallbackName = "PawPal"

func RegisterRoutes(r chi.Router, f *Finder) {
	r.Get("/nearby/friends", listNearbyHandler(f))
}

type dogResponse struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Breed  string   `json:"breed"`
	Avatar string   `json:"avatar"`
	Tags   []string `json:"tags"`
}

type friendResponse struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Avatar         string       `json:"avatar"`
	Latitude       float64      `json:"latitude"`
	Longitude      float64      `json:"longitude"`
	DistanceMeters float64      `json:"distance_meters"`
	DistanceText   string       `json:"distance_text"`
	LatestLocation string       `json:"latest_location"`
	Dog            *dogResponse `json:"dog"`
	DogCount       int          `json:"dog_count"`
	HiSent         bool         `json:"hi_sent"`
}

// listNearbyHandler godoc
// @Summary Usuarios cercanos
// @Description Revisa los posts con ubicación más recientes, un resultado por usuario, ordenado por distancia. Autenticación opcional: con sesión se informa hi_sent.
// @Tags nearby
// @Produce json
// @Param lat query number true "latitud actual"
// @Param lng query number true "longitud actual"
// @Param radius query number false "radio en metros"
// @Param limit query int false "1-50, default 20"
// @Success 200 {array} friendResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /nearby/friends [get]
func listNearbyHandler(f *Finder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		lat, errLat := strconv.ParseFloat(strings.TrimSpace(q.Get("lat")), 64)
		lng, errLng := strconv.ParseFloat(strings.TrimSpace(q.Get("lng")), 64)
		if errLat != nil || errLng != nil {
			httpx.WriteError(w, r, ErrInvalidLocation)
			return
		}

		query := Query{
			Lat:         lat,
			Lng:         lng,
			RequesterID: middleware.UserID(r.Context()),
		}
		if s := strings.TrimSpace(q.Get("radius")); s != "" {
			radius, err := strconv.ParseFloat(s, 64)
			if err != nil || radius < 0 {
				httpx.WriteError(w, r, apperr.Validation("radius must be a non-negative number"))
				return
			}
			query.Radius = &radius
		}
		if s := strings.TrimSpace(q.Get("limit")); s != "" {
			// limit inválido => default
			query.Limit, _ = strconv.Atoi(s)
		}

		found, err := f.Find(r.Context(), query)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		out := make([]friendResponse, 0, len(found))
		for _, fr := range found {
			name := fr.User.Nickname
			if strings.TrimSpace(name) == "" {
				name = fallbackName
			}
			item := friendResponse{
				ID:             fr.User.ID,
				Name:           name,
				Avatar:         fr.User.Avatar,
				Latitude:       fr.Latitude,
				Longitude:      fr.Longitude,
				DistanceMeters: fr.DistanceMeters,
				DistanceText:   geo.FormatDistance(fr.DistanceMeters),
				LatestLocation: fr.LatestLocation,
				DogCount:       fr.DogCount,
				HiSent:         fr.HiSent,
			}
			if d := fr.Dog; d != nil {
				item.Dog = &dogResponse{
					ID:     d.ID,
					Name:   d.Name,
					Breed:  d.Breed,
					Avatar: d.Avatar,
					Tags:   d.Tags,
				}
			}
			out = append(out, item)
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}
