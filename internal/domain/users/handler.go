package users

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"pawpals/internal/middleware"
	"pawpals/internal/platform/apperr"
	"pawpals/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/login", loginHandler(svc))
		ar.Post("/logout", logoutHandler(svc))
	})

	r.Route("/users", func(ur chi.Router) {
		ur.Get("/", listUsersHandler(svc))
		ur.Post("/", createUserHandler(svc))

		ur.Get("/me", getMeHandler(svc))
		ur.Patch("/me", updateMeHandler(svc))
	})
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Code     string `json:"code"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

type createUserRequest struct {
	Nickname string `json:"nickname" validate:"required"`
	Avatar   string `json:"avatar"`
	Phone    string `json:"phone"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	Avatar    string    `json:"avatar"`
	Phone     string    `json:"phone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// loginHandler godoc
// @Summary Login con teléfono y código
// @Description Verifica el código, crea el usuario en el primer login y devuelve un bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Teléfono y código"
// @Success 200 {object} loginResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse "cuenta deshabilitada"
// @Router /auth/login [post]
func loginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		res, err := svc.Login(r.Context(), LoginInput{
			Phone:    req.Phone,
			Code:     req.Code,
			Nickname: req.Nickname,
			Avatar:   req.Avatar,
		})
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, loginResponse{
			Token:     res.Token.Value,
			ExpiresAt: res.Token.ExpiresAt,
			User:      toUserResponse(res.User),
		})
	}
}

// logoutHandler godoc
// @Summary Cerrar sesión
// @Tags auth
// @Param Authorization header string true "Bearer token"
// @Success 204
// @Failure 401 {object} httpx.ErrorResponse
// @Router /auth/logout [post]
func logoutHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}
		if err := svc.Logout(r.Context(), claims.SessionID); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.NoContent(w)
	}
}

// listUsersHandler godoc
// @Summary Listar usuarios
// @Tags users
// @Produce json
// @Param limit query int false "1-200, default 200"
// @Param skip query int false "offset"
// @Success 200 {array} userResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /users [get]
func listUsersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetClaims(r.Context()); !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))

		items, err := svc.List(r.Context(), limit, skip)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		out := make([]userResponse, 0, len(items))
		for _, u := range items {
			out = append(out, toUserResponse(u))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func createUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetClaims(r.Context()); !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		var req createUserRequest
		if err := httpx.DecodeAndValidate(r, &req); err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		u, err := svc.Create(r.Context(), CreateInput{
			Nickname: req.Nickname,
			Avatar:   req.Avatar,
			Phone:    req.Phone,
		})
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, toUserResponse(u))
	}
}

func getMeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		u, err := svc.GetByID(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func updateMeHandler(svc *Service) http.HandlerFunc {
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

		var in UpdateProfileInput
		if v, ok := raw["nickname"]; ok && !httpx.IsNull(v) {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				httpx.WriteError(w, r, apperr.Validation("nickname must be a string"))
				return
			}
			in.Nickname = &s
		}
		if v, ok := raw["avatar"]; ok {
			// avatar: null => limpiar
			s := ""
			if !httpx.IsNull(v) {
				if err := json.Unmarshal(v, &s); err != nil {
					httpx.WriteError(w, r, apperr.Validation("avatar must be a string or null"))
					return
				}
			}
			in.Avatar = &s
		}

		u, err := svc.UpdateProfile(r.Context(), claims.UserID, in)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:        u.ID,
		Nickname:  u.Nickname,
		Avatar:    u.Avatar,
		Phone:     u.Phone,
		IsActive:  u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
