package handlers

import (
	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/storygram/internal/posts"
)

type Handler struct {
	DB    *sqlx.DB
	Auth  *AuthHandler
	Posts *PostHandler
}

func NewHandler(db *sqlx.DB, svc *posts.Service) *Handler {
	return &Handler{
		DB:    db,
		Auth:  NewAuthHandler(db),
		Posts: NewPostHandler(svc),
	}
}
