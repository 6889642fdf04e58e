package health

import (
	"net/http"
	"time"

	"pawpals/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, c *Checker) {
	r.Get("/health", healthHandler(c))
}

type healthResponse struct {
	Status    Status            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// healthHandler godoc
// @Summary Estado del servicio
// @Description database, storage y cache: ok | unavailable | not_configured.
// @Tags health
// @Produce json
// @Success 200 {object} healthResponse
// @Router /health [get]
func healthHandler(c *Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep := c.Check(r.Context())
		httpx.WriteJSON(w, http.StatusOK, healthResponse{
			Status:    rep.Status,
			Timestamp: rep.Timestamp,
			Services:  rep.Services,
		})
	}
}
