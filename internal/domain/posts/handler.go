package posts

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"pawpals/internal/domain/users"
	"pawpals/internal/middleware"
	"pawpals/internal/platform/apperr"
	"pawpals/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta /posts. respond/accept se montan desde greetings.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/posts", func(pr chi.Router) {
		pr.Get("/", listPostsHandler(svc))
		pr.Post("/", createPostHandler(svc))
		pr.Delete("/{postID}", deletePostHandler(svc))
	})
}

type createPostRequest struct {
	Content   string   `json:"content" validate:"required"`
	Location  string   `json:"location" validate:"required"`
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	Images    []string `json:"images"`
	Type      PostType `json:"post_type" enums:"share,wander,meetup"`

	// Solo meetup
	TargetLocation  string `json:"target_location"`
	DurationMinutes int    `json:"duration"`   // 30, 60, 90, 120 o 240
	StartTime       string `json:"start_time"` // RFC3339
}

type authorResponse struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	Avatar    string    `json:"avatar"`
	Phone     string    `json:"phone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type meetupResponse struct {
	TargetLocation  string       `json:"target_location"`
	DurationMinutes int          `json:"duration"`
	StartTime       time.Time    `json:"start_time"`
	Status          MeetupStatus `json:"meetup_status"`
}

type postResponse struct {
	ID             string          `json:"id"`
	Content        string          `json:"content"`
	Location       string          `json:"location"`
	Latitude       *float64        `json:"latitude"`
	Longitude      *float64        `json:"longitude"`
	Images         []string        `json:"images"`
	Type           PostType        `json:"post_type"`
	Meetup         *meetupResponse `json:"meetup,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	DistanceMeters *float64        `json:"distance_meters"`
	Author         authorResponse  `json:"author"`
}

// listPostsHandler godoc
// @Summary Feed de posts
// @Description Más recientes primero. Con lat/lng devuelve distance_meters por post.
// @Tags posts
// @Produce json
// @Param limit query int false "1-100, default 20"
// @Param skip query int false "offset"
// @Param lat query number false "latitud del que consulta"
// @Param lng query number false "longitud del que consulta"
// @Param user_id query string false "solo posts de este autor"
// @Success 200 {array} postResponse
// @Router /posts [get]
func listPostsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		skip, _ := strconv.Atoi(q.Get("skip"))

		in := ListInput{
			Limit:    limit,
			Skip:     skip,
			AuthorID: q.Get("user_id"),
		}
		if lat, ok := parseFloat(q.Get("lat")); ok {
			in.Lat = &lat
		}
		if lng, ok := parseFloat(q.Get("lng")); ok {
			in.Lng = &lng
		}

		items, err := svc.List(r.Context(), in)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		out := make([]postResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toPostResponse(it.Post, it.Author, it.DistanceMeters))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// createPostHandler godoc
// @Summary Publicar post
// @Description Requiere un perro con avatar. Para post_type=meetup: target_location, duration y start_time.
// @Tags posts
// @Accept json
// @Produce json
// @Param payload body createPostRequest true "Post"
// @Success 201 {object} postResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /posts [post]
func createPostHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		var req createPostRequest
		if err := httpx.DecodeAndValidate(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		in := CreateInput{
			Content:         req.Content,
			Location:        req.Location,
			Latitude:        req.Latitude,
			Longitude:       req.Longitude,
			Images:          req.Images,
			Type:            req.Type,
			TargetLocation:  req.TargetLocation,
			DurationMinutes: req.DurationMinutes,
		}
		if s := strings.TrimSpace(req.StartTime); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				httpx.WriteError(w, r, apperr.Validation("start_time must be RFC3339"))
				return
			}
			in.StartTime = &t
		}

		p, err := svc.Create(r.Context(), claims.UserID, in)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		author, err := svc.authors.GetMany(r.Context(), []string{claims.UserID})
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toPostResponse(p, author[claims.UserID], nil))
	}
}

func deletePostHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		if err := svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "postID")); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.NoContent(w)
	}
}

func toPostResponse(p Post, author users.User, distance *float64) postResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	out := postResponse{
		ID:             p.ID,
		Content:        p.Content,
		Location:       p.Location,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		Images:         images,
		Type:           p.Type,
		CreatedAt:      p.CreatedAt,
		DistanceMeters: distance,
		Author: authorResponse{
			ID:        author.ID,
			Nickname:  author.Nickname,
			Avatar:    author.Avatar,
			Phone:     author.Phone,
			IsActive:  author.Active,
			CreatedAt: author.CreatedAt,
			UpdatedAt: author.UpdatedAt,
		},
	}
	if p.Meetup != nil {
		out.Meetup = &meetupResponse{
			TargetLocation:  p.Meetup.TargetLocation,
			DurationMinutes: p.Meetup.DurationMinutes,
			StartTime:       p.Meetup.StartTime,
			Status:          p.Meetup.Status,
		}
	}
	return out
}

func parseFloat(s string) (float64, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
