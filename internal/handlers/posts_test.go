package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/vaughan-dsouza/storygram/internal/middleware"
	"github.com/vaughan-dsouza/storygram/internal/posts"
)

// testRouter wires the post routes the way cmd/api does, with no DB
// behind the service: only paths that fail before touching storage are
// exercised here.
func testRouter() http.Handler {
	h := NewPostHandler(posts.NewService(nil, nil))

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth)
		r.Post("/images", h.UploadImage)
		r.Post("/posts", h.CreatePost)
		r.Post("/posts/{id}/like", h.ToggleLike)
	})
	return r
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "test-secret")
	r := testRouter()

	for _, path := range []string{"/images", "/posts", "/posts/abc/like"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("POST %s without token: status = %d, want 401", path, rec.Code)
		}
	}
}

func TestCreatePostWithoutSessionIs401(t *testing.T) {
	// Called directly, bypassing middleware: the service itself must
	// refuse anonymous creation, not just the router.
	h := NewPostHandler(posts.NewService(nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/posts",
		strings.NewReader(`{"image_url":"http://x/y.jpg","caption":"c","tags":""}`))
	rec := httptest.NewRecorder()
	h.CreatePost(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestToggleLikeWithoutSessionIs401(t *testing.T) {
	h := NewPostHandler(posts.NewService(nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/posts/abc/like", nil)
	rec := httptest.NewRecorder()
	h.ToggleLike(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestCreatePostInvalidJSON(t *testing.T) {
	h := NewPostHandler(posts.NewService(nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.CreatePost(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUploadImageRequiresMultipart(t *testing.T) {
	h := NewPostHandler(posts.NewService(nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/images", strings.NewReader("plain body"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.UploadImage(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
