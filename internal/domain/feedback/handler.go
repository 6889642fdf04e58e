package feedback

import (
	"net/http"

	"pawpals/internal/middleware"
	"pawpals/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/feedback", submitFeedbackHandler(svc))
}

type submitRequest struct {
	Content string `json:"content"`
	Contact string `json:"contact"`
}

type submitResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// submitFeedbackHandler godoc
// @Summary Enviar feedback
// @Description Autenticación opcional. content entre 5 y 1000 caracteres.
// @Tags feedback
// @Accept json
// @Produce json
// @Param payload body submitRequest true "Feedback"
// @Success 201 {object} submitResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /feedback [post]
func submitFeedbackHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		e, err := svc.Submit(r.Context(), middleware.UserID(r.Context()), req.Content, req.Contact)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, submitResponse{Success: true, ID: e.ID})
	}
}
