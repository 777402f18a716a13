package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/vaughan-dsouza/storygram/internal/db"
	"github.com/vaughan-dsouza/storygram/internal/handlers"
	"github.com/vaughan-dsouza/storygram/internal/middleware"
	"github.com/vaughan-dsouza/storygram/internal/posts"
	"github.com/vaughan-dsouza/storygram/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	port := getenv("PORT", "4000")
	databaseURL := getenv("DATABASE_URL", "")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	dbConn, err := db.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer dbConn.Close()

	if err := db.Migrate(dbConn); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	store, err := storage.New(storage.Config{
		Endpoint:  getenv("S3_ENDPOINT", "http://localhost:9000"),
		AccessKey: getenv("S3_ACCESS_KEY", "minio"),
		SecretKey: getenv("S3_SECRET_KEY", "minio123"),
		UseSSL:    getenv("S3_USE_SSL", "") == "true",
		Bucket:    getenv("S3_BUCKET", "stories"),
	})
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.EnsureBucket(ctx); err != nil {
		log.Fatalf("storage bucket: %v", err)
	}
	cancel()

	svc := posts.NewService(dbConn, store)
	h := handlers.NewHandler(dbConn, svc)

	r := chi.NewRouter()

	// Public
	r.Post("/signup", h.Auth.SignUp)
	r.Post("/login", h.Auth.Login)
	r.Post("/refresh", h.Auth.Refresh)

	// Feed is readable without a session; a valid token adds the
	// viewer's own like state.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth)

		r.Get("/posts", h.Posts.Feed)
	})

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth)

		r.Get("/me", h.Auth.Me)
		r.Post("/logout", h.Auth.Logout)

		r.Post("/images", h.Posts.UploadImage)
		r.Post("/posts", h.Posts.CreatePost)
		r.Post("/posts/{id}/like", h.Posts.ToggleLike)
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
