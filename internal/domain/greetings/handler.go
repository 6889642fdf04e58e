package greetings

import (
	"net/http"
	"time"

	"pawpals/internal/domain/dogs"
	"pawpals/internal/middleware"
	"pawpals/internal/platform/apperr"
	"pawpals/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/nearby/friends/{targetUserID}/hi", sendHiHandler(svc))

	r.Route("/posts/{postID}/respond", func(pr chi.Router) {
		pr.Post("/", respondHandler(svc))
		pr.Get("/", listResponsesHandler(svc))
	})
	r.Post("/posts/{postID}/accept", acceptHandler(svc))

	r.Get("/messages", inboxHandler(svc))
}

type messageRequest struct {
	Message string `json:"message"`
}

type acceptRequest struct {
	ResponseID string `json:"response_id" validate:"required"`
}

type greetingResponse struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Message    string    `json:"message"`
	Type       Type      `json:"greeting_type"`
	PostID     *string   `json:"post_id"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type respondResponse struct {
	Message  string           `json:"message"`
	Greeting greetingResponse `json:"greeting"`
}

type senderResponse struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

type dogSummaryResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Breed  string `json:"breed"`
	Avatar string `json:"avatar"`
}

type responseItem struct {
	ID        string              `json:"id"`
	SenderID  string              `json:"sender_id"`
	Message   string              `json:"message"`
	Status    Status              `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	Sender    senderResponse      `json:"sender"`
	Dog       *dogSummaryResponse `json:"dog"`
}

type matchedUserResponse struct {
	ID        string   `json:"id"`
	Nickname  string   `json:"nickname"`
	Avatar    string   `json:"avatar"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Location  *string  `json:"location"`
}

type coordinatesResponse struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type acceptResponse struct {
	Message        string              `json:"message"`
	MatchedUser    matchedUserResponse `json:"matched_user"`
	MeetupLocation coordinatesResponse `json:"meetup_location"`
}

type inboxItemResponse struct {
	ID             string    `json:"id"`
	Message        string    `json:"message"`
	Type           Type      `json:"greeting_type"`
	PostID         *string   `json:"post_id"`
	CreatedAt      time.Time `json:"created_at"`
	SenderID       string    `json:"sender_id"`
	SenderNickname string    `json:"sender_nickname"`
	SenderAvatar   string    `json:"sender_avatar"`
	DogName        *string   `json:"dog_name"`
	DogBreed       *string   `json:"dog_breed"`
}

// sendHiHandler godoc
// @Summary Saludar a un usuario cercano
// @Description Un saludo por par (sender, receiver) cada 3 minutos. Si está en cooldown responde 400 con retry_after_seconds.
// @Tags greetings
// @Accept json
// @Produce json
// @Param targetUserID path string true "ID del usuario a saludar"
// @Param payload body messageRequest false "Mensaje opcional"
// @Success 201 {object} greetingResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /nearby/friends/{targetUserID}/hi [post]
func sendHiHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		var req messageRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		g, err := svc.SendHi(r.Context(), claims.UserID, chi.URLParam(r, "targetUserID"), req.Message)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toGreetingResponse(g))
	}
}

// respondHandler godoc
// @Summary Responder a un meetup
// @Tags greetings
// @Accept json
// @Produce json
// @Param postID path string true "ID del post meetup"
// @Param payload body messageRequest false "Mensaje opcional"
// @Success 201 {object} respondResponse
// @Failure 400 {object} httpx.ErrorResponse "no es meetup, no está abierto, propio, ya respondido o cooldown"
// @Failure 404 {object} httpx.ErrorResponse
// @Router /posts/{postID}/respond [post]
func respondHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		var req messageRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		g, err := svc.Respond(r.Context(), claims.UserID, chi.URLParam(r, "postID"), req.Message)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, respondResponse{
			Message:  "response sent, waiting for confirmation",
			Greeting: toGreetingResponse(g),
		})
	}
}

// listResponsesHandler godoc
// @Summary Respuestas de un meetup (solo autor)
// @Tags greetings
// @Produce json
// @Param postID path string true "ID del post"
// @Success 200 {array} responseItem
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /posts/{postID}/respond [get]
func listResponsesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		items, err := svc.ListResponses(r.Context(), claims.UserID, chi.URLParam(r, "postID"))
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		out := make([]responseItem, 0, len(items))
		for _, it := range items {
			out = append(out, responseItem{
				ID:        it.Greeting.ID,
				SenderID:  it.Greeting.SenderID,
				Message:   it.Greeting.Message,
				Status:    it.Greeting.Status,
				CreatedAt: it.Greeting.CreatedAt,
				Sender: senderResponse{
					ID:       it.Sender.ID,
					Nickname: it.Sender.Nickname,
					Avatar:   it.Sender.Avatar,
				},
				Dog: toDogSummaryResponse(it.Dog),
			})
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// acceptHandler godoc
// @Summary Aceptar una respuesta
// @Description Marca el meetup como matched, acepta la respuesta y rechaza las demás pendientes en una sola operación.
// @Tags greetings
// @Accept json
// @Produce json
// @Param postID path string true "ID del post"
// @Param payload body acceptRequest true "Respuesta a aceptar"
// @Success 200 {object} acceptResponse
// @Failure 400 {object} httpx.ErrorResponse "meetup cerrado o respuesta ya procesada"
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /posts/{postID}/accept [post]
func acceptHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		var req acceptRequest
		if err := httpx.DecodeAndValidate(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		res, err := svc.AcceptResponse(r.Context(), claims.UserID, chi.URLParam(r, "postID"), req.ResponseID)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		matched := matchedUserResponse{
			ID:       res.Responder.ID,
			Nickname: res.Responder.Nickname,
			Avatar:   res.Responder.Avatar,
		}
		if p := res.ResponderPost; p != nil {
			matched.Latitude = p.Latitude
			matched.Longitude = p.Longitude
			loc := p.Location
			matched.Location = &loc
		}
		httpx.WriteJSON(w, http.StatusOK, acceptResponse{
			Message:     "response accepted",
			MatchedUser: matched,
			MeetupLocation: coordinatesResponse{
				Latitude:  res.MeetupLat,
				Longitude: res.MeetupLng,
			},
		})
	}
}

// inboxHandler godoc
// @Summary Saludos recibidos
// @Tags greetings
// @Produce json
// @Success 200 {array} inboxItemResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /messages [get]
func inboxHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		items, err := svc.Inbox(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		out := make([]inboxItemResponse, 0, len(items))
		for _, it := range items {
			row := inboxItemResponse{
				ID:             it.Greeting.ID,
				Message:        it.Greeting.Message,
				Type:           it.Greeting.Type,
				PostID:         it.Greeting.PostID,
				CreatedAt:      it.Greeting.CreatedAt,
				SenderID:       it.Greeting.SenderID,
				SenderNickname: it.Sender.Nickname,
				SenderAvatar:   it.Sender.Avatar,
			}
			if it.Dog != nil {
				name, breed := it.Dog.Name, it.Dog.Breed
				row.DogName = &name
				row.DogBreed = &breed
			}
			out = append(out, row)
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func toGreetingResponse(g Greeting) greetingResponse {
	return greetingResponse{
		ID:         g.ID,
		SenderID:   g.SenderID,
		ReceiverID: g.ReceiverID,
		Message:    g.Message,
		Type:       g.Type,
		PostID:     g.PostID,
		Status:     g.Status,
		CreatedAt:  g.CreatedAt,
	}
}

func toDogSummaryResponse(s *dogs.Summary) *dogSummaryResponse {
	if s == nil {
		return nil
	}
	return &dogSummaryResponse{
		ID:     s.ID,
		Name:   s.Name,
		Breed:  s.Breed,
		Avatar: s.Avatar,
	}
}
