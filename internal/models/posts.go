package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Tags is stored as a JSONB column. A NULL column scans to an empty
// slice so callers never see nil tags.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		t = Tags{}
	}
	return json.Marshal(t)
}

func (t *Tags) Scan(src any) error {
	if src == nil {
		*t = Tags{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("tags: cannot scan %T", src)
	}

	if len(raw) == 0 {
		*t = Tags{}
		return nil
	}
	if err := json.Unmarshal(raw, t); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	if *t == nil {
		*t = Tags{}
	}
	return nil
}

type Post struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Caption   string    `db:"caption" json:"caption"`
	Tags      Tags      `db:"tags" json:"tags"`
	ImageURL  string    `db:"image_url" json:"image_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Derived at read time, never persisted on the story row.
	Likes       int  `db:"-" json:"likes"`
	LikedByUser bool `db:"-" json:"liked_by_user"`
}

// Like records that a user liked a story. Existence is the only state;
// at most one row exists per (story, user).
type Like struct {
	StoryID string `db:"story_id" json:"story_id"`
	UserID  string `db:"user_id" json:"user_id"`
}
