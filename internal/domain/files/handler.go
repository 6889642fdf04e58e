package files

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"pawpals/internal/middleware"
	"pawpals/internal/platform/apperr"
	"pawpals/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/upload", uploadHandler(svc))
	r.Get("/files/*", getFileHandler(svc))
}

type uploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// uploadHandler godoc
// @Summary Subir imagen
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Imagen"
// @Success 201 {object} uploadResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /upload [post]
func uploadHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			httpx.WriteError(w, r, apperr.Unauthorized)
			return
		}

		// margen para los headers del multipart
		r.Body = http.MaxBytesReader(w, r.Body, svc.MaxBytes()+1<<20)
		file, header, err := r.FormFile("file")
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				httpx.WriteError(w, r, ErrTooLarge)
				return
			}
			httpx.WriteError(w, r, ErrEmptyFile)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, svc.MaxBytes()+1))
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		up, err := svc.Upload(r.Context(), claims.UserID, header.Filename, header.Header.Get("Content-Type"), data)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, uploadResponse{Key: up.Key, URL: up.URL})
	}
}

// getFileHandler sirve el blob tal cual, con su content type.
func getFileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		obj, err := svc.Get(r.Context(), chi.URLParam(r, "*"))
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", obj.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(obj.Data)
	}
}
