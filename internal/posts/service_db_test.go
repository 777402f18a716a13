package posts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/storygram/internal/db"
	"github.com/vaughan-dsouza/storygram/internal/models"
)

// These tests need a throwaway Postgres. Set TEST_DATABASE_URL to run
// them; they are skipped otherwise.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	dbc, err := db.Connect(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := db.Migrate(dbc); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		dbc.MustExec(`DELETE FROM story_likes`)
		dbc.MustExec(`DELETE FROM stories`)
		dbc.MustExec(`DELETE FROM refresh_tokens`)
		dbc.MustExec(`DELETE FROM users`)
		dbc.Close()
	})
	return dbc
}

func createUser(t *testing.T, dbc *sqlx.DB) string {
	t.Helper()

	var id string
	email := fmt.Sprintf("u%d@test.local", time.Now().UnixNano())
	err := dbc.QueryRowx(`
		INSERT INTO users (email, password_hash) VALUES ($1, 'x') RETURNING id
	`, email).Scan(&id)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func createStory(t *testing.T, dbc *sqlx.DB, userID string, createdAt time.Time) string {
	t.Helper()

	var id string
	err := dbc.QueryRowx(`
		INSERT INTO stories (user_id, caption, tags, image_url, created_at)
		VALUES ($1, '', '[]', 'http://s/b/k.jpg', $2)
		RETURNING id
	`, userID, createdAt).Scan(&id)
	if err != nil {
		t.Fatalf("create story: %v", err)
	}
	return id
}

func TestFeedOrderingNewestFirst(t *testing.T) {
	dbc := testDB(t)
	s := NewService(dbc, nil)

	user := createUser(t, dbc)
	now := time.Now().UTC()
	t1 := createStory(t, dbc, user, now.Add(-2*time.Hour))
	t2 := createStory(t, dbc, user, now.Add(-time.Hour))
	t3 := createStory(t, dbc, user, now)

	feed, err := s.Feed(context.Background(), "")
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(feed) != 3 {
		t.Fatalf("len(feed) = %d, want 3", len(feed))
	}

	want := []string{t3, t2, t1}
	for i, p := range feed {
		if p.ID != want[i] {
			t.Errorf("feed[%d] = %s, want %s", i, p.ID, want[i])
		}
	}
}

func TestFeedLikeAggregation(t *testing.T) {
	dbc := testDB(t)
	s := NewService(dbc, nil)

	u1 := createUser(t, dbc)
	u2 := createUser(t, dbc)
	now := time.Now().UTC()
	liked := createStory(t, dbc, u1, now.Add(-time.Minute))
	unliked := createStory(t, dbc, u1, now)

	for _, uid := range []string{u1, u2} {
		if err := s.ToggleLike(context.Background(), uid, liked); err != nil {
			t.Fatalf("ToggleLike: %v", err)
		}
	}

	byID := func(feed []models.Post, id string) *models.Post {
		for i := range feed {
			if feed[i].ID == id {
				return &feed[i]
			}
		}
		t.Fatalf("story %s missing from feed", id)
		return nil
	}

	// As u1: liked story shows both likes and the viewer's own.
	feed, err := s.Feed(context.Background(), u1)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if p := byID(feed, liked); p.Likes != 2 || !p.LikedByUser {
		t.Errorf("liked story as u1: likes=%d liked_by_user=%v, want 2/true", p.Likes, p.LikedByUser)
	}
	if p := byID(feed, unliked); p.Likes != 0 || p.LikedByUser {
		t.Errorf("unliked story as u1: likes=%d liked_by_user=%v, want 0/false", p.Likes, p.LikedByUser)
	}

	// Anonymous viewer: counts survive, own-like state does not.
	feed, err = s.Feed(context.Background(), "")
	if err != nil {
		t.Fatalf("Feed anonymous: %v", err)
	}
	if p := byID(feed, liked); p.Likes != 2 || p.LikedByUser {
		t.Errorf("liked story anonymous: likes=%d liked_by_user=%v, want 2/false", p.Likes, p.LikedByUser)
	}
}

func TestToggleLikeAlternates(t *testing.T) {
	dbc := testDB(t)
	s := NewService(dbc, nil)

	user := createUser(t, dbc)
	story := createStory(t, dbc, user, time.Now().UTC())

	likedNow := func() bool {
		var liked bool
		err := dbc.Get(&liked, `
			SELECT EXISTS (
				SELECT 1 FROM story_likes WHERE story_id=$1 AND user_id=$2
			)
		`, story, user)
		if err != nil {
			t.Fatalf("exists: %v", err)
		}
		return liked
	}

	for n := 1; n <= 5; n++ {
		if err := s.ToggleLike(context.Background(), user, story); err != nil {
			t.Fatalf("toggle %d: %v", n, err)
		}
		if want := n%2 == 1; likedNow() != want {
			t.Errorf("after %d toggles liked=%v, want %v", n, likedNow(), want)
		}
	}
}

func TestToggleLikeUnknownStory(t *testing.T) {
	dbc := testDB(t)
	s := NewService(dbc, nil)

	user := createUser(t, dbc)
	err := s.ToggleLike(context.Background(), user, "00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, ErrPostNotFound) {
		t.Errorf("err = %v, want ErrPostNotFound", err)
	}
}

func TestCreatePostPersistsNormalizedTags(t *testing.T) {
	dbc := testDB(t)
	s := NewService(dbc, nil)

	user := createUser(t, dbc)
	post, err := s.CreatePost(context.Background(), user, "http://s/b/k.jpg", "sunset pics", " nyc, food ,,sunset ")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if post.ID == "" || post.CreatedAt.IsZero() {
		t.Error("id and created_at must be assigned on insert")
	}

	want := models.Tags{"nyc", "food", "sunset"}
	if len(post.Tags) != len(want) {
		t.Fatalf("tags = %v, want %v", post.Tags, want)
	}
	for i := range want {
		if post.Tags[i] != want[i] {
			t.Errorf("tags = %v, want %v", post.Tags, want)
			break
		}
	}

	// Round-trip through the feed: tags come back non-nil and intact.
	feed, err := s.Feed(context.Background(), "")
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(feed) != 1 || feed[0].Tags == nil {
		t.Fatalf("feed = %+v", feed)
	}

	// Empty tag input still yields an empty array, never null.
	post2, err := s.CreatePost(context.Background(), user, "http://s/b/k2.jpg", "", "")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if post2.Tags == nil || len(post2.Tags) != 0 {
		t.Errorf("empty tags = %#v, want empty non-nil", post2.Tags)
	}
}
