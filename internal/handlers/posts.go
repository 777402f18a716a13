package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vaughan-dsouza/storygram/internal/posts"
	"github.com/vaughan-dsouza/storygram/internal/utils"
)

const maxUploadBytes = 10 << 20 // 10 MiB

type PostHandler struct {
	Service *posts.Service
}

func NewPostHandler(svc *posts.Service) *PostHandler {
	return &PostHandler{Service: svc}
}

// viewerID returns the authenticated user's id, or "" for anonymous
// requests that came through OptionalAuth.
func viewerID(r *http.Request) string {
	uid, _ := r.Context().Value(utils.CtxUserIDKey).(string)
	return uid
}

// ---------------------- UPLOAD ----------------------

func (h *PostHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	url, err := h.Service.UploadImage(r.Context(), header.Filename, file)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]string{"image_url": url})
}

// ---------------------- CREATE ----------------------

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ImageURL string `json:"image_url"`
		Caption  string `json:"caption"`
		Tags     string `json:"tags"`
	}

	if err := utils.DecodeJSON(w, r, &body); err != nil {
		return
	}

	post, err := h.Service.CreatePost(r.Context(), viewerID(r), body.ImageURL, body.Caption, body.Tags)
	switch {
	case errors.Is(err, posts.ErrNotAuthenticated):
		utils.JSONError(w, http.StatusUnauthorized, "not authenticated")
		return
	case errors.Is(err, posts.ErrImageURLRequired):
		utils.JSONError(w, http.StatusBadRequest, "image_url required")
		return
	case err != nil:
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusCreated, post)
}

// ---------------------- FEED ----------------------

func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	feed, err := h.Service.Feed(r.Context(), viewerID(r))
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, feed)
}

// ---------------------- LIKE TOGGLE ----------------------

func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	storyID := chi.URLParam(r, "id")

	err := h.Service.ToggleLike(r.Context(), viewerID(r), storyID)
	switch {
	case errors.Is(err, posts.ErrNotAuthenticated):
		utils.JSONError(w, http.StatusUnauthorized, "not authenticated")
		return
	case errors.Is(err, posts.ErrPostNotFound):
		utils.JSONError(w, http.StatusNotFound, "post not found")
		return
	case err != nil:
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
