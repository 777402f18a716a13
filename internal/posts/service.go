package posts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/vaughan-dsouza/storygram/internal/models"
)

// Objects are immutable once uploaded, so a fixed one-hour cache window
// is safe for any CDN or browser in front of the store.
const cacheControl = "max-age=3600"

// How many per-story like lookups run at once during a feed fetch.
const feedLookupLimit = 8

const pgForeignKeyViolation = "23503"

// ObjectStore is the slice of the object-storage client the post service
// needs. *storage.Storage satisfies it.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType, cacheControl string, data []byte) error
	PublicURL(key string) string
	BaseURL() string
}

// Service is the data-access layer for stories and likes. Operations that
// act on behalf of a user take the viewer's id explicitly; an empty id
// means no session.
type Service struct {
	db    *sqlx.DB
	store ObjectStore
	now   func() time.Time
}

func NewService(db *sqlx.DB, store ObjectStore) *Service {
	return &Service{db: db, store: store, now: time.Now}
}

// UploadImage buffers the image, stores it under a timestamped key and
// returns the object's public URL. The returned URL is always absolute.
// The object is not removed if a later step in the caller's flow fails.
func (s *Service) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("upload image: read: %w", err)
	}

	millis := s.now().UnixMilli()
	base := path.Base(strings.TrimSpace(filename))
	if base == "" || base == "." || base == "/" {
		base = fmt.Sprintf("%d", millis)
	}
	key := fmt.Sprintf("%d-%s", millis, base)

	if err := s.store.Put(ctx, key, contentTypeFor(base), cacheControl, data); err != nil {
		return "", fmt.Errorf("upload image: store: %w", err)
	}

	return absoluteURL(s.store.BaseURL(), s.store.PublicURL(key)), nil
}

// CreatePost persists a new story for userID. The raw tag string is
// normalized via SplitTags; id and created_at come back from the insert.
func (s *Service) CreatePost(ctx context.Context, userID, imageURL, caption, rawTags string) (*models.Post, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if imageURL == "" {
		return nil, ErrImageURLRequired
	}

	post := models.Post{
		UserID:   userID,
		Caption:  caption,
		Tags:     SplitTags(rawTags),
		ImageURL: imageURL,
	}

	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO stories (user_id, caption, tags, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, userID, caption, post.Tags, imageURL).Scan(&post.ID, &post.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &post, nil
}

// Feed returns all stories newest first, each annotated with its live like
// count and whether viewerID has liked it. An empty viewerID is an
// anonymous viewer: liked_by_user is false everywhere. The per-story
// lookups run concurrently; any failure aborts the whole fetch.
func (s *Service) Feed(ctx context.Context, viewerID string) ([]models.Post, error) {
	var feed []models.Post
	err := s.db.SelectContext(ctx, &feed, `
		SELECT id, user_id, caption, tags, image_url, created_at
		FROM stories
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(feedLookupLimit)

	for i := range feed {
		post := &feed[i]
		g.Go(func() error {
			err := s.db.GetContext(gctx, &post.Likes, `
				SELECT COUNT(*) FROM story_likes WHERE story_id=$1
			`, post.ID)
			if err != nil {
				return fmt.Errorf("count likes for story %s: %w", post.ID, err)
			}

			if viewerID == "" {
				return nil
			}
			err = s.db.GetContext(gctx, &post.LikedByUser, `
				SELECT EXISTS (
					SELECT 1 FROM story_likes WHERE story_id=$1 AND user_id=$2
				)
			`, post.ID, viewerID)
			if err != nil {
				return fmt.Errorf("check viewer like for story %s: %w", post.ID, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if feed == nil {
		feed = []models.Post{}
	}
	return feed, nil
}

// ToggleLike flips userID's like on a story: repeated calls alternate
// between liked and not liked. Unlike is attempted first; if no row was
// there, a like is inserted. The unique index on (story_id, user_id)
// makes the insert a no-op when a concurrent toggle won the race.
func (s *Service) ToggleLike(ctx context.Context, userID, storyID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM story_likes WHERE story_id=$1 AND user_id=$2
	`, storyID, userID)
	if err != nil {
		return fmt.Errorf("toggle like: unlike: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO story_likes (story_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (story_id, user_id) DO NOTHING
	`, storyID, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return ErrPostNotFound
		}
		return fmt.Errorf("toggle like: like: %w", err)
	}
	return nil
}

// contentTypeFor maps a filename extension to an image content type,
// falling back to JPEG when the extension is missing.
func contentTypeFor(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	switch ext {
	case "", "jpg", "jpeg":
		return "image/jpeg"
	case "svg":
		return "image/svg+xml"
	default:
		return "image/" + ext
	}
}

// absoluteURL guarantees callers never see a relative object URL: a raw
// URL without a scheme gets the store endpoint prefixed.
func absoluteURL(base, raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(raw, "/")
}
